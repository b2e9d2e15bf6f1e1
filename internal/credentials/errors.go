package credentials

import "errors"

var (
	ErrNotFound     = errors.New("credential not found")
	ErrInvalidInput = errors.New("invalid credential input")

	// ErrReconcile reports that a credential record was created but linking it
	// to the holder's profile failed; the reference must be repaired, not
	// silently dropped.
	ErrReconcile = errors.New("credential reference reconciliation required")
)
