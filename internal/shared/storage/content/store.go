package content

import (
	"context"
	"io"
	"regexp"
)

// Store defines the contract for a content-addressed blob store. Add returns the
// content address (cid) of the written bytes; identical content always yields the
// identical cid, so re-adding an existing blob is a no-op.
type Store interface {
	Add(ctx context.Context, r io.Reader) (cid string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, cid string) (io.ReadCloser, error)
}

var cidPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidCID reports whether s has the shape of a locally-minted content address.
// Callers outside the store treat cids as opaque; this check only guards the
// store's own key space against path or object-key injection.
func ValidCID(s string) bool {
	return cidPattern.MatchString(s)
}
