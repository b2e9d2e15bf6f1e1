package dashboard

import (
	"context"
	"errors"
	"testing"

	"credentials-backend/internal/credentials"
	"credentials-backend/internal/profiles"
)

func seedProfile(t *testing.T, repo profiles.Repo, userID string, credentialIDs ...string) {
	t.Helper()
	err := repo.Upsert(context.Background(), profiles.Profile{
		ID:    userID,
		Email: userID + "@example.com",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	for _, id := range credentialIDs {
		if err := repo.AppendCredential(context.Background(), userID, id); err != nil {
			t.Fatalf("AppendCredential(%s): %v", id, err)
		}
	}
}

func TestViewDropsDanglingCredentialRefs(t *testing.T) {
	profileRepo := profiles.NewMemoryRepo()
	credRepo := credentials.NewMemoryRepo()

	seedProfile(t, profileRepo, "user-1", "cred-1", "cred-2")
	err := credRepo.Create(context.Background(), credentials.Credential{ID: "cred-1", Type: "degree", HolderName: "Ada"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc := NewService(profiles.NewService(profileRepo), &credentials.Aggregator{Repo: credRepo})
	view, err := svc.View(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.Credentials) != 1 || view.Credentials[0].ID != "cred-1" {
		t.Fatalf("expected only cred-1, got %+v", view.Credentials)
	}
	if view.FailedLookups != 0 {
		t.Fatalf("missing record must not count as a failure, got %d", view.FailedLookups)
	}
	if view.MissingLookups != 1 {
		t.Fatalf("expected 1 missing lookup, got %d", view.MissingLookups)
	}
	if view.NewUser {
		t.Fatal("existing profile flagged as new user")
	}
}

func TestViewEmptyCredentialList(t *testing.T) {
	profileRepo := profiles.NewMemoryRepo()
	seedProfile(t, profileRepo, "user-1")

	svc := NewService(profiles.NewService(profileRepo), &credentials.Aggregator{Repo: credentials.NewMemoryRepo()})
	view, err := svc.View(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.Credentials) != 0 {
		t.Fatalf("expected empty credential list, got %+v", view.Credentials)
	}
}

func TestViewMissingProfileIsEmptyState(t *testing.T) {
	svc := NewService(profiles.NewService(profiles.NewMemoryRepo()), &credentials.Aggregator{Repo: credentials.NewMemoryRepo()})
	view, err := svc.View(context.Background(), "user-unknown")
	if err != nil {
		t.Fatalf("missing profile must not error, got %v", err)
	}
	if !view.NewUser {
		t.Fatal("expected NewUser view")
	}
	if len(view.Credentials) != 0 {
		t.Fatalf("expected no credentials, got %+v", view.Credentials)
	}
	if view.Profile.ID != "user-unknown" {
		t.Fatalf("expected identity echoed back, got %q", view.Profile.ID)
	}
}

type faultyProfileRepo struct{}

func (faultyProfileRepo) Upsert(context.Context, profiles.Profile) error { return nil }
func (faultyProfileRepo) GetByID(context.Context, string) (profiles.Profile, error) {
	return profiles.Profile{}, errors.New("connection refused")
}
func (faultyProfileRepo) AppendCredential(context.Context, string, string) error { return nil }

func TestViewTransientFaultPropagates(t *testing.T) {
	svc := NewService(profiles.NewService(faultyProfileRepo{}), &credentials.Aggregator{Repo: credentials.NewMemoryRepo()})
	_, err := svc.View(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected transient store fault to propagate")
	}
	if errors.Is(err, profiles.ErrNotFound) {
		t.Fatal("transient fault misclassified as not found")
	}
}
