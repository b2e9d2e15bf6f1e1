package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"credentials-backend/internal/profiles"
	localstore "credentials-backend/internal/shared/storage/content/local"
)

// minimalPDF assembles a one-page PDF with a correct xref table.
func minimalPDF() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 4)
	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	xref := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xref)
	buf.WriteString("%%EOF\n")
	return buf.Bytes()
}

func newTestService(t *testing.T) (*Service, *profiles.MemoryRepo) {
	t.Helper()
	profileRepo := profiles.NewMemoryRepo()
	svc := &Service{
		Repo:     NewMemoryRepo(),
		Store:    localstore.New(t.TempDir()),
		Profiles: profiles.NewService(profileRepo),
	}
	return svc, profileRepo
}

func seedProfile(t *testing.T, repo *profiles.MemoryRepo, userID string) {
	t.Helper()
	err := repo.Upsert(context.Background(), profiles.Profile{
		ID:    userID,
		Email: userID + "@example.edu",
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func TestSubmitCreatesRecordAndLinksProfile(t *testing.T) {
	svc, profileRepo := newTestService(t)
	seedProfile(t, profileRepo, "u1")

	cred, err := svc.Submit(context.Background(), "u1", Draft{
		Type:        "degree",
		HolderName:  "Ada Lovelace",
		Institution: "Example University",
		Document:    bytes.NewReader(minimalPDF()),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if cred.ID == "" {
		t.Fatalf("expected credential id")
	}
	if cred.CID == "" {
		t.Fatalf("expected content address")
	}

	stored, err := svc.Get(context.Background(), cred.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Type != "degree" || stored.HolderName != "Ada Lovelace" {
		t.Fatalf("unexpected stored credential: %+v", stored)
	}

	profile, err := profileRepo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile GetByID: %v", err)
	}
	if len(profile.CredentialIDs) != 1 || profile.CredentialIDs[0] != cred.ID {
		t.Fatalf("expected profile to reference %s, got %v", cred.ID, profile.CredentialIDs)
	}
}

func TestSubmitSameDocumentYieldsSameCID(t *testing.T) {
	svc, profileRepo := newTestService(t)
	seedProfile(t, profileRepo, "u1")

	doc := minimalPDF()
	first, err := svc.Submit(context.Background(), "u1", Draft{
		Type: "degree", HolderName: "Ada", Document: bytes.NewReader(doc),
	})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), "u1", Draft{
		Type: "certificate", HolderName: "Ada", Document: bytes.NewReader(doc),
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first.CID != second.CID {
		t.Fatalf("expected identical content address, got %s and %s", first.CID, second.CID)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct record ids")
	}
}

func TestSubmitValidationListsAllOffendingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "u1", Draft{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validation.Issues) != 3 {
		t.Fatalf("expected 3 field issues, got %v", validation.Issues)
	}
	fields := map[string]bool{}
	for _, issue := range validation.Issues {
		fields[issue.Field] = true
	}
	for _, field := range []string{"type", "holderName", "document"} {
		if !fields[field] {
			t.Fatalf("expected issue for field %s, got %v", field, validation.Issues)
		}
	}
}

func TestSubmitRejectsNonPDFDocument(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "u1", Draft{
		Type:       "degree",
		HolderName: "Ada",
		Document:   bytes.NewReader([]byte("plain text, not a pdf")),
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Issues) != 1 || validation.Issues[0].Field != "document" {
		t.Fatalf("expected single document issue, got %v", validation.Issues)
	}
}

type failingDirectory struct{}

func (failingDirectory) AppendCredential(ctx context.Context, userID, credentialID string) error {
	return errors.New("profile store unreachable")
}

func TestSubmitLinkFailureSurfacesReconcileError(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Profiles = failingDirectory{}

	_, err := svc.Submit(context.Background(), "u1", Draft{
		Type:       "degree",
		HolderName: "Ada",
		Document:   bytes.NewReader(minimalPDF()),
	})
	if !errors.Is(err, ErrReconcile) {
		t.Fatalf("expected ErrReconcile, got %v", err)
	}
}
