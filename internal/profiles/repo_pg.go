package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO profiles (id, email, display_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  display_name = EXCLUDED.display_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		nullableString(profile.DisplayName),
		nullableString(profile.PictureURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT id, email, display_name, picture_url, created_at, updated_at
FROM profiles
WHERE id = $1
LIMIT 1`
	var profile Profile
	var displayName sql.NullString
	var pictureURL sql.NullString
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&displayName,
		&pictureURL,
		&profile.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if displayName.Valid {
		profile.DisplayName = displayName.String
	}
	if pictureURL.Valid {
		profile.PictureURL = pictureURL.String
	}
	if updatedAt.Valid {
		profile.UpdatedAt = updatedAt.Time
	} else {
		profile.UpdatedAt = time.Now().UTC()
	}

	refs, err := r.credentialRefs(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	profile.CredentialIDs = refs
	return profile, nil
}

// AppendCredential adds a credential reference at the end of the profile's list.
// A duplicate reference is a no-op.
func (r *PGRepo) AppendCredential(ctx context.Context, userID, credentialID string) error {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	const query = `
INSERT INTO profile_credentials (profile_id, credential_id, position)
SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
FROM profile_credentials
WHERE profile_id = $1
ON CONFLICT (profile_id, credential_id) DO NOTHING`
	_, err = r.DB.ExecContext(ctx, query, userID, credentialID)
	return err
}

func (r *PGRepo) credentialRefs(ctx context.Context, userID string) ([]string, error) {
	const query = `
SELECT credential_id
FROM profile_credentials
WHERE profile_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		refs = append(refs, id)
	}
	return refs, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
