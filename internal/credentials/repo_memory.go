package credentials

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{creds: make(map[string]Credential)}
}

func (r *MemoryRepo) Create(ctx context.Context, cred Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[cred.ID] = cred
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, credentialID string) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[credentialID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}
