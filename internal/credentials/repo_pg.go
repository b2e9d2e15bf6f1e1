package credentials

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, cred Credential) error {
	const query = `
INSERT INTO credentials (id, type, institution, holder_name, cid, mime_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		cred.ID,
		cred.Type,
		nullableString(cred.Institution),
		cred.HolderName,
		cred.CID,
		nullableString(cred.MimeType),
		cred.SizeBytes,
		cred.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, credentialID string) (Credential, error) {
	const query = `
SELECT id, type, institution, holder_name, cid, mime_type, size_bytes, created_at
FROM credentials
WHERE id = $1
LIMIT 1`
	var cred Credential
	var institution sql.NullString
	var mimeType sql.NullString
	var sizeBytes sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, credentialID).Scan(
		&cred.ID,
		&cred.Type,
		&institution,
		&cred.HolderName,
		&cred.CID,
		&mimeType,
		&sizeBytes,
		&cred.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	if institution.Valid {
		cred.Institution = institution.String
	}
	if mimeType.Valid {
		cred.MimeType = mimeType.String
	}
	if sizeBytes.Valid {
		cred.SizeBytes = sizeBytes.Int64
	}
	return cred, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
