// Package settings persists the user switcher's admin-editable configuration.
//
// ImpersonationMinutes and WatermarkImpersonation are stored and served but
// nothing reads them when minting an impersonation URL yet.
package settings

import (
	"context"
	"fmt"
)

const (
	DefaultImpersonationMinutes   = 15
	DefaultWatermarkImpersonation = true
)

// Settings is the persisted configuration
type Settings struct {
	ImpersonationMinutes   int  `json:"impersonationMinutes"`
	WatermarkImpersonation bool `json:"watermarkImpersonation"`
}

// Defaults returns the configuration used before anything is saved
func Defaults() Settings {
	return Settings{
		ImpersonationMinutes:   DefaultImpersonationMinutes,
		WatermarkImpersonation: DefaultWatermarkImpersonation,
	}
}

// Validate checks the settings before they are saved
func (s Settings) Validate() error {
	if s.ImpersonationMinutes <= 0 {
		return fmt.Errorf("impersonationMinutes must be positive, got %d", s.ImpersonationMinutes)
	}
	return nil
}

// Repository stores a single Settings document. Load returns Defaults when
// nothing has been saved.
type Repository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
