// Package quickconnect relays an admin's approval of a quick connect code
// that another client generated, binding it to a chosen user.
package quickconnect

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/metrics"
)

// CodeLength is the number of characters in a quick connect code
const CodeLength = 6

// AdminVerifier gates every relay on host administrator status
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// Authorizer approves a quick connect code on the host
type Authorizer interface {
	AuthorizeQuickConnect(ctx context.Context, creds hostapi.Credentials, code string, userID uuid.UUID) error
}

// Service relays code authorizations
type Service struct {
	verifier AdminVerifier
	host     Authorizer
	metrics  *metrics.Metrics
}

// Option is a function that configures a Service
type Option func(*Service)

// WithMetrics records relay outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a relay service
func NewService(verifier AdminVerifier, host Authorizer, opts ...Option) *Service {
	s := &Service{
		verifier: verifier,
		host:     host,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeCode trims whitespace and checks the code length. Case is left
// untouched; the host decides whether codes are case sensitive.
func NormalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) != CodeLength {
		return "", errors.Newf(errors.ErrCodeInvalidCode, "Code must be %d characters", CodeLength)
	}
	return code, nil
}

// AuthorizeCode approves code for rawUserID with exactly one host call. The
// admin check runs first; a malformed code or user id then fails before
// anything is sent.
func (s *Service) AuthorizeCode(ctx context.Context, creds hostapi.Credentials, code, rawUserID string) error {
	if _, err := s.verifier.Verify(ctx, creds); err != nil {
		return err
	}

	code, err := NormalizeCode(code)
	if err != nil {
		s.metrics.ObserveCodeAuthorization(metrics.OutcomeDenied)
		return err
	}

	userID, err := hostapi.ParseUserID(rawUserID)
	if err != nil {
		s.metrics.ObserveCodeAuthorization(metrics.OutcomeDenied)
		return err
	}

	if err := s.host.AuthorizeQuickConnect(ctx, creds, code, userID); err != nil {
		s.metrics.ObserveCodeAuthorization(metrics.OutcomeFailure)
		slog.Error("Failed to authorize Quick Connect code", "userId", userID, "error", err)
		message := "failed to authorize quick connect code"
		if hostMessage := errors.GetMessage(err); hostMessage != "" {
			message += ": " + hostMessage
		}
		return errors.Wrap(err, errors.ErrCodeUpstreamRejected, message)
	}

	s.metrics.ObserveCodeAuthorization(metrics.OutcomeSuccess)
	slog.Info("Quick Connect code authorized by admin", "userId", userID)
	return nil
}
