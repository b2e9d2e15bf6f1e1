package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"credentials-backend/internal/shared/storage/content"
)

// Store implements content.Store on the local filesystem. Blobs live under
// baseDir/objects/<cid[:2]>/<cid>, written via a temp file and rename.
type Store struct {
	baseDir string
}

// New creates a local content store rooted at baseDir.
func New(baseDir string) content.Store {
	return &Store{baseDir: baseDir}
}

// Add hashes the reader while spooling it to a temp file, then moves the blob to
// its content address. Re-adding existing content discards the temp copy.
func (s *Store) Add(ctx context.Context, r io.Reader) (string, int64, string, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, "incoming-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		tmp.Close()
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}
	mimeType := http.DetectContentType(sniff[:n])

	hasher := sha256.New()
	out := io.MultiWriter(tmp, hasher)

	size := int64(0)
	if n > 0 {
		if _, err := out.Write(sniff[:n]); err != nil {
			tmp.Close()
			return "", 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(out, r)
	if err != nil {
		tmp.Close()
		return "", 0, "", fmt.Errorf("write body: %w", err)
	}
	size += written

	if err := tmp.Close(); err != nil {
		return "", 0, "", fmt.Errorf("close temp: %w", err)
	}

	cid := hex.EncodeToString(hasher.Sum(nil))
	finalPath := s.blobPath(cid)

	if _, err := os.Stat(finalPath); err == nil {
		// Content already stored under this address.
		return cid, size, mimeType, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir shard: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", 0, "", fmt.Errorf("place blob: %w", err)
	}

	return cid, size, mimeType, nil
}

// Open opens a stored blob for reading.
func (s *Store) Open(ctx context.Context, cid string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !content.ValidCID(cid) {
		return nil, fmt.Errorf("invalid cid")
	}

	f, err := os.Open(s.blobPath(cid))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) blobPath(cid string) string {
	return filepath.Join(s.baseDir, "objects", cid[:2], cid)
}

var _ content.Store = (*Store)(nil)
