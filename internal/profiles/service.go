package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Resolve fetches the full profile for an authenticated user id. ErrNotFound is
// permanent (new-user empty state); any other failure is a transient store
// fault the caller may retry.
func (s *Service) Resolve(ctx context.Context, userID string) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Profile{}, errors.New("user id is required")
	}
	profile, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("resolve profile: %w", err)
	}
	return profile, nil
}

// UpsertFromAuth persists the identity-provider attributes at sign-in so the
// resolver has a record to read on the next dashboard view.
func (s *Service) UpsertFromAuth(ctx context.Context, profile Profile) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if strings.TrimSpace(profile.ID) == "" || strings.TrimSpace(profile.Email) == "" {
		return errors.New("profile id and email are required")
	}
	return s.Repo.Upsert(ctx, profile)
}

// AppendCredential links a newly created credential to its holder's profile.
func (s *Service) AppendCredential(ctx context.Context, userID, credentialID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(credentialID) == "" {
		return errors.New("user id and credential id are required")
	}
	return s.Repo.AppendCredential(ctx, userID, credentialID)
}
