package credentials

import "context"

// Repo defines persistence operations for credential records.
type Repo interface {
	Create(ctx context.Context, cred Credential) error
	GetByID(ctx context.Context, credentialID string) (Credential, error)
}
