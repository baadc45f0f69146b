// Package directory lists host users for an admin to pick an impersonation
// or code authorization target from.
package directory

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
)

// AdminVerifier gates every listing on host administrator status
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// UserLister fetches the full host user collection
type UserLister interface {
	ListUsers(ctx context.Context, creds hostapi.Credentials) ([]hostapi.User, error)
}

// UserSummary is the read-only view of a host user
type UserSummary struct {
	Id              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	IsAdministrator bool      `json:"isAdministrator"`
	IsDisabled      bool      `json:"isDisabled"`
}

// Service reads and filters the host user directory
type Service struct {
	verifier AdminVerifier
	host     UserLister
}

// NewService creates a directory service
func NewService(verifier AdminVerifier, host UserLister) *Service {
	return &Service{
		verifier: verifier,
		host:     host,
	}
}

// ListUsers returns users whose name contains search, ignoring case, sorted
// by name. An empty search returns everyone. The result is all-or-nothing:
// any host failure yields ErrCodeUpstreamUnavailable and no users.
func (s *Service) ListUsers(ctx context.Context, creds hostapi.Credentials, search string) ([]UserSummary, error) {
	if _, err := s.verifier.Verify(ctx, creds); err != nil {
		return nil, err
	}

	users, err := s.host.ListUsers(ctx, creds)
	if err != nil {
		slog.Error("Failed to list host users", "error", err)
		if errors.IsCode(err, errors.ErrCodeUpstreamUnavailable) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamUnavailable, "failed to list host users")
	}

	return Filter(users, search), nil
}

// Filter applies the case-insensitive name match and stable name ordering
func Filter(users []hostapi.User, search string) []UserSummary {
	query := foldKey(strings.TrimSpace(search))

	result := make([]UserSummary, 0, len(users))
	for _, u := range users {
		if query != "" && !strings.Contains(foldKey(u.Name), query) {
			continue
		}
		result = append(result, UserSummary{
			Id:              u.Id,
			Name:            u.Name,
			IsAdministrator: u.Policy.IsAdministrator,
			IsDisabled:      u.Policy.IsDisabled,
		})
	}

	slices.SortStableFunc(result, func(a, b UserSummary) int {
		return strings.Compare(foldKey(a.Name), foldKey(b.Name))
	})
	return result
}

// foldKey maps every rune to the smallest member of its simple case folding
// orbit, so "ſ", "s" and "S" compare equal. For ASCII this is upper case.
func foldKey(s string) string {
	return strings.Map(func(r rune) rune {
		lowest := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if f < lowest {
				lowest = f
			}
		}
		return lowest
	}, s)
}
