// Package admin confirms that the caller of a privileged operation is an
// enabled administrator of the host.
//
// The check is repeated on every call and never cached, so an admin demoted
// mid-session loses access on their next request.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/metrics"
)

// CurrentUserGetter resolves credentials to the host user they belong to
type CurrentUserGetter interface {
	CurrentUser(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// Verifier gates privileged operations on host administrator status
type Verifier struct {
	host    CurrentUserGetter
	metrics *metrics.Metrics
}

// Option is a function that configures a Verifier
type Option func(*Verifier)

// WithMetrics records verification outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// NewVerifier creates a verifier backed by the host's current-user endpoint
func NewVerifier(host CurrentUserGetter, opts ...Option) *Verifier {
	v := &Verifier{host: host}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify returns the calling admin. It fails with ErrCodeUnauthorized when
// credentials are missing or rejected by the host, and with ErrCodeForbidden
// when they belong to a non-administrator or disabled account.
func (v *Verifier) Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error) {
	if creds.Empty() {
		v.metrics.ObserveAdminCheck(metrics.OutcomeDenied)
		return hostapi.User{}, errors.Unauthorized("admin credentials required")
	}

	user, err := v.host.CurrentUser(ctx, creds)
	if err != nil {
		switch hostapi.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			v.metrics.ObserveAdminCheck(metrics.OutcomeDenied)
			return hostapi.User{}, errors.Wrap(err, errors.ErrCodeUnauthorized, "admin credentials rejected by host")
		}
		v.metrics.ObserveAdminCheck(metrics.OutcomeFailure)
		slog.Error("Failed to resolve current user", "error", err)
		return hostapi.User{}, err
	}

	if !user.Policy.IsAdministrator || user.Policy.IsDisabled {
		v.metrics.ObserveAdminCheck(metrics.OutcomeDenied)
		slog.Warn("Non-admin attempted to access user switcher",
			"userId", user.Id,
			"isAdministrator", user.Policy.IsAdministrator,
			"isDisabled", user.Policy.IsDisabled)
		return hostapi.User{}, errors.Forbidden("admin required")
	}

	v.metrics.ObserveAdminCheck(metrics.OutcomeSuccess)
	return user, nil
}
