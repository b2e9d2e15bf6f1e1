package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"credentials-backend/internal/shared/metrics"
	"credentials-backend/internal/shared/storage/content"
	"credentials-backend/internal/shared/telemetry"
)

// ProfileDirectory is the slice of the profile store the upload workflow needs:
// linking a freshly created credential to its holder.
type ProfileDirectory interface {
	AppendCredential(ctx context.Context, userID, credentialID string) error
}

// Service contains business logic for credential records.
type Service struct {
	Repo     Repo
	Store    content.Store
	Profiles ProfileDirectory
}

// Draft holds the fields of a credential submission before validation.
type Draft struct {
	Type        string
	HolderName  string
	Institution string
	Document    io.Reader
}

// FieldIssue names a draft field that blocked submission.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError carries the full list of offending draft fields. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		fields = append(fields, issue.Field)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidInput, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Submit runs the upload workflow: validate the draft, persist the document to
// the content-addressed store, create the credential record, then link it to
// the holder's profile. A failure after the record exists returns ErrReconcile
// naming the orphaned id so the caller can surface it instead of losing the
// reference.
func (s *Service) Submit(ctx context.Context, holderID string, draft Draft) (Credential, error) {
	if s == nil || s.Repo == nil || s.Store == nil || s.Profiles == nil {
		return Credential{}, errors.New("credentials service not configured")
	}
	if strings.TrimSpace(holderID) == "" {
		return Credential{}, errors.New("holder id is required")
	}

	data, err := validateDraft(draft)
	if err != nil {
		return Credential{}, err
	}

	cid, size, mimeType, err := s.Store.Add(ctx, bytes.NewReader(data))
	if err != nil {
		return Credential{}, fmt.Errorf("store document: %w", err)
	}

	cred := Credential{
		ID:          uuid.NewString(),
		Type:        strings.TrimSpace(draft.Type),
		Institution: strings.TrimSpace(draft.Institution),
		HolderName:  strings.TrimSpace(draft.HolderName),
		CID:         cid,
		MimeType:    mimeType,
		SizeBytes:   size,
		CreatedAt:   time.Now().UTC(),
	}

	// The stored blob is immutable and content-addressed, so a failure from
	// here on leaves no dangling profile entry, only an unreferenced blob.
	if err := s.Repo.Create(ctx, cred); err != nil {
		return Credential{}, fmt.Errorf("create credential record: %w", err)
	}

	if err := s.Profiles.AppendCredential(ctx, holderID, cred.ID); err != nil {
		telemetry.Error("credential.link_failed", map[string]any{
			"credential_id": cred.ID,
			"holder_id":     holderID,
			"error":         err.Error(),
		})
		return Credential{}, fmt.Errorf("%w: credential %s exists but is not linked to profile %s: %v",
			ErrReconcile, cred.ID, holderID, err)
	}

	metrics.IncUploads()
	return cred, nil
}

// Get returns a single credential record by id.
func (s *Service) Get(ctx context.Context, credentialID string) (Credential, error) {
	if s == nil || s.Repo == nil {
		return Credential{}, errors.New("credentials service not configured")
	}
	if strings.TrimSpace(credentialID) == "" {
		return Credential{}, fmt.Errorf("%w: credential id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, credentialID)
}

// OpenDocument opens the stored source document of a credential.
func (s *Service) OpenDocument(ctx context.Context, credentialID string) (io.ReadCloser, string, error) {
	cred, err := s.Get(ctx, credentialID)
	if err != nil {
		return nil, "", err
	}
	body, err := s.Store.Open(ctx, cred.CID)
	if err != nil {
		return nil, "", fmt.Errorf("open document cid=%s: %w", cred.CID, err)
	}
	return body, cred.MimeType, nil
}

func validateDraft(draft Draft) ([]byte, error) {
	var issues []FieldIssue
	if strings.TrimSpace(draft.Type) == "" {
		issues = append(issues, FieldIssue{Field: "type", Issue: "required"})
	}
	if strings.TrimSpace(draft.HolderName) == "" {
		issues = append(issues, FieldIssue{Field: "holderName", Issue: "required"})
	}

	var data []byte
	if draft.Document == nil {
		issues = append(issues, FieldIssue{Field: "document", Issue: "required"})
	} else {
		var err error
		data, err = io.ReadAll(draft.Document)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		if len(data) == 0 {
			issues = append(issues, FieldIssue{Field: "document", Issue: "required"})
		} else if !isPDF(data) {
			issues = append(issues, FieldIssue{Field: "document", Issue: "not a readable PDF"})
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return data, nil
}

func isPDF(data []byte) (ok bool) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return reader.NumPage() > 0
}
