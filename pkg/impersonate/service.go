// Package impersonate mints a web client session for a target user by
// driving the host's quick connect handshake on an admin's behalf.
//
// The handshake is three host calls in strict order:
//
//	INIT -> initiate -> PAIRED -> authorize -> AUTHORIZED -> redeem -> GRANTED -> compose -> DONE
//
// The first failure ends the invocation. Nothing is retried and nothing is
// compensated: a pairing session left behind by a failed authorize or redeem
// expires on the host by itself.
package impersonate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/metrics"
)

// Handshake steps, also used as metric and log labels
const (
	StepInitiate  = "initiate"
	StepAuthorize = "authorize"
	StepRedeem    = "redeem"
	StepCompose   = "compose"
)

// Query parameters of the impersonation URL
const (
	APIKeyParam        = "api_key"
	ImpersonationParam = "imp"
)

// AdminVerifier gates every handshake on host administrator status
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// QuickConnectHost is the part of the host API the handshake drives
type QuickConnectHost interface {
	InitiateQuickConnect(ctx context.Context, creds hostapi.Credentials, req hostapi.InitiateRequest) (hostapi.QuickConnectResult, error)
	AuthorizeQuickConnect(ctx context.Context, creds hostapi.Credentials, code string, userID uuid.UUID) error
	AuthenticateWithQuickConnect(ctx context.Context, creds hostapi.Credentials, secret string) (hostapi.AuthenticationResult, error)
}

// DeviceIdentity describes the synthetic client that starts each pairing.
// A fresh device id is generated per handshake.
type DeviceIdentity struct {
	AppName    string
	AppVersion string
	DeviceName string
}

// DefaultDeviceIdentity returns the identity the admin console presents to the host
func DefaultDeviceIdentity() DeviceIdentity {
	return DeviceIdentity{
		AppName:    "UserSwitcher",
		AppVersion: "0.1.0",
		DeviceName: "AdminConsole",
	}
}

// Service runs impersonation handshakes. It holds no per-handshake state, so
// one Service serves concurrent handshakes.
type Service struct {
	verifier   AdminVerifier
	host       QuickConnectHost
	webBaseURL *url.URL
	device     DeviceIdentity
	metrics    *metrics.Metrics
}

// Option is a function that configures a Service
type Option func(*Service)

// WithDeviceIdentity overrides the synthetic device identity
func WithDeviceIdentity(device DeviceIdentity) Option {
	return func(s *Service) {
		s.device = device
	}
}

// WithMetrics records step outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates an impersonation service. webBaseURL is the public base
// of the host web client the resulting URL points at.
func NewService(verifier AdminVerifier, host QuickConnectHost, webBaseURL string, opts ...Option) (*Service, error) {
	u, err := url.Parse(strings.TrimRight(webBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid web base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid web base URL: %q", webBaseURL)
	}

	s := &Service{
		verifier:   verifier,
		host:       host,
		webBaseURL: u,
		device:     DefaultDeviceIdentity(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Impersonate returns a web client URL that opens an authenticated session as
// rawUserID. The admin check runs before the id is parsed. Every host call
// carries the admin's creds. On failure no credential material is returned
// and the error never mentions the pairing secret.
func (s *Service) Impersonate(ctx context.Context, creds hostapi.Credentials, rawUserID string) (string, error) {
	adminUser, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		return "", err
	}

	userID, err := hostapi.ParseUserID(rawUserID)
	if err != nil {
		return "", err
	}

	session, err := s.host.InitiateQuickConnect(ctx, creds, hostapi.InitiateRequest{
		AppName:    s.device.AppName,
		AppVersion: s.device.AppVersion,
		DeviceName: s.device.DeviceName,
		DeviceId:   newDeviceID(),
	})
	if err != nil {
		return "", s.fail(StepInitiate, userID, stepError(err, "quick connect initiation failed"))
	}
	if session.Secret == "" || session.Code == "" {
		return "", s.fail(StepInitiate, userID, errors.ProtocolViolation("quick connect initiation did not return Secret/Code"))
	}
	s.metrics.ObserveHandshakeStep(StepInitiate, metrics.OutcomeSuccess)

	if err := s.host.AuthorizeQuickConnect(ctx, creds, session.Code, userID); err != nil {
		return "", s.fail(StepAuthorize, userID, stepError(err, "quick connect authorization failed"))
	}
	s.metrics.ObserveHandshakeStep(StepAuthorize, metrics.OutcomeSuccess)

	grant, err := s.host.AuthenticateWithQuickConnect(ctx, creds, session.Secret)
	if err != nil {
		return "", s.fail(StepRedeem, userID, stepError(err, "quick connect authentication failed"))
	}
	if grant.AccessToken == "" {
		return "", s.fail(StepRedeem, userID, errors.ProtocolViolation("quick connect authentication did not return AccessToken"))
	}
	s.metrics.ObserveHandshakeStep(StepRedeem, metrics.OutcomeSuccess)

	impersonationURL := s.composeURL(grant.AccessToken)
	s.metrics.ObserveHandshakeStep(StepCompose, metrics.OutcomeSuccess)

	slog.Info("Impersonation URL generated", "userId", userID, "adminId", adminUser.Id)
	return impersonationURL, nil
}

// composeURL embeds the access token and the impersonation marker in a link
// to the web client.
func (s *Service) composeURL(accessToken string) string {
	u := s.webBaseURL.JoinPath("web", "index.html")
	u.RawQuery = APIKeyParam + "=" + escapeDataString(accessToken) + "&" + ImpersonationParam + "=1"
	return u.String()
}

// escapeDataString percent-encodes everything but unreserved characters.
// A space becomes %20, not the form encoding +.
func escapeDataString(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (s *Service) fail(step string, userID uuid.UUID, err *errors.Error) error {
	s.metrics.ObserveHandshakeStep(step, metrics.OutcomeFailure)
	slog.Error("Failed to impersonate user", "step", step, "userId", userID, "code", err.Code, "error", err)
	return err
}

// stepError keeps the host error's code and prefixes its message with the step
func stepError(err error, message string) *errors.Error {
	if hostMessage := errors.GetMessage(err); hostMessage != "" {
		return errors.Wrapf(err, errors.GetCode(err), "%s: %s", message, hostMessage)
	}
	return errors.Wrap(err, errors.GetCode(err), message)
}

// newDeviceID returns a random 32 hex digit device id
func newDeviceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
