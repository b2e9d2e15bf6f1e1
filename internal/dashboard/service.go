package dashboard

import (
	"context"
	"errors"
	"fmt"

	"credentials-backend/internal/credentials"
	"credentials-backend/internal/profiles"
)

// Service composes the profile resolver and the credential aggregator into the
// dashboard view flow: resolve the profile, fan out one lookup per referenced
// credential, filter the failures.
type Service struct {
	Profiles   *profiles.Service
	Aggregator *credentials.Aggregator
}

func NewService(profileSvc *profiles.Service, aggregator *credentials.Aggregator) *Service {
	return &Service{Profiles: profileSvc, Aggregator: aggregator}
}

// View is the aggregate dashboard state. FailedLookups carries the cumulative
// store-fault count for a single optional notification; missing records are
// dropped silently. NewUser marks a resolved-but-absent profile, which renders
// as an explicit empty state rather than an error.
type View struct {
	Profile        profiles.Profile
	Credentials    []credentials.Credential
	MissingLookups int
	FailedLookups  int
	NewUser        bool
}

// View builds the dashboard for an authenticated user id. A permanently absent
// profile yields an empty view, not an error; only transient store faults and
// context cancellation propagate.
func (s *Service) View(ctx context.Context, userID string) (View, error) {
	if s == nil || s.Profiles == nil || s.Aggregator == nil {
		return View{}, errors.New("dashboard service not configured")
	}

	profile, err := s.Profiles.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return View{
				Profile:     profiles.Profile{ID: userID},
				Credentials: []credentials.Credential{},
				NewUser:     true,
			}, nil
		}
		return View{}, fmt.Errorf("dashboard view: %w", err)
	}

	result, err := s.Aggregator.Resolve(ctx, profile.CredentialIDs)
	if err != nil {
		return View{}, fmt.Errorf("dashboard view: %w", err)
	}

	return View{
		Profile:        profile,
		Credentials:    result.Credentials,
		MissingLookups: result.Missing,
		FailedLookups:  result.Failed,
	}, nil
}
