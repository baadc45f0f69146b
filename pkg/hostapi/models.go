package hostapi

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/errors"
)

// ParseUserID parses a host user id as sent by callers
func ParseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errors.InvalidInput("userId", "must be a UUID")
	}
	return id, nil
}

// Policy is the subset of the host's user policy this service reads
type Policy struct {
	IsAdministrator bool `json:"IsAdministrator"`
	IsDisabled      bool `json:"IsDisabled"`
}

// User is a host user record
type User struct {
	Id     uuid.UUID `json:"Id"`
	Name   string    `json:"Name"`
	Policy Policy    `json:"Policy"`
}

// InitiateRequest identifies the synthetic device starting a quick connect session
type InitiateRequest struct {
	AppName    string `json:"AppName"`
	AppVersion string `json:"AppVersion"`
	DeviceName string `json:"DeviceName"`
	DeviceId   string `json:"DeviceId"`
}

// QuickConnectResult is the pairing session returned by QuickConnect/Initiate.
// Secret must never leave this process.
type QuickConnectResult struct {
	Secret string `json:"Secret"`
	Code   string `json:"Code"`
}

type authorizeRequest struct {
	Code   string    `json:"Code"`
	UserId uuid.UUID `json:"UserId"`
}

type authenticateRequest struct {
	Secret string `json:"Secret"`
}

// AuthenticationResult is the redeemed quick connect session
type AuthenticationResult struct {
	AccessToken string `json:"AccessToken"`
}
