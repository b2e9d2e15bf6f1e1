package profiles

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

// Upsert creates or refreshes a profile's identity attributes. Credential refs
// on an existing profile are preserved; sign-in must never clobber them.
func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.profiles[profile.ID]
	now := time.Now().UTC()
	if !ok {
		profile.CreatedAt = now
	} else {
		profile.CreatedAt = existing.CreatedAt
		profile.CredentialIDs = existing.CredentialIDs
	}
	profile.UpdatedAt = now
	r.profiles[profile.ID] = profile
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	profile.CredentialIDs = append([]string(nil), profile.CredentialIDs...)
	return profile, nil
}

func (r *MemoryRepo) AppendCredential(ctx context.Context, userID, credentialID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range profile.CredentialIDs {
		if id == credentialID {
			return nil
		}
	}
	profile.CredentialIDs = append(profile.CredentialIDs, credentialID)
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = profile
	return nil
}
