package settings

import (
	"context"
	"log/slog"

	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
)

// AdminVerifier gates settings access on host administrator status
type AdminVerifier interface {
	Verify(ctx context.Context, creds hostapi.Credentials) (hostapi.User, error)
}

// Service reads and writes settings for admins
type Service struct {
	verifier   AdminVerifier
	repository Repository
}

// NewService creates a settings service
func NewService(verifier AdminVerifier, repository Repository) *Service {
	return &Service{
		verifier:   verifier,
		repository: repository,
	}
}

// Get returns the current settings
func (s *Service) Get(ctx context.Context, creds hostapi.Credentials) (Settings, error) {
	if _, err := s.verifier.Verify(ctx, creds); err != nil {
		return Settings{}, err
	}

	current, err := s.repository.Load(ctx)
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		return Settings{}, errors.InternalWrap(err, "failed to load settings")
	}
	return current, nil
}

// Update validates and stores next, returning what was saved
func (s *Service) Update(ctx context.Context, creds hostapi.Credentials, next Settings) (Settings, error) {
	adminUser, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		return Settings{}, err
	}

	if err := next.Validate(); err != nil {
		return Settings{}, errors.New(errors.ErrCodeInvalidInput, err.Error())
	}

	if err := s.repository.Save(ctx, next); err != nil {
		slog.Error("Failed to save settings", "error", err)
		return Settings{}, errors.InternalWrap(err, "failed to save settings")
	}

	slog.Info("Settings updated",
		"adminId", adminUser.Id,
		"impersonationMinutes", next.ImpersonationMinutes,
		"watermarkImpersonation", next.WatermarkImpersonation)
	return next, nil
}
