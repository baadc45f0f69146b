package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ValidationError is one invalid environment key
type ValidationError struct {
	Field   string // environment key, e.g. HOST_BASE_URL
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// ValidationErrors lists every invalid key found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, err := range e {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Validator checks one group of keys
type Validator func() ValidationErrors

// Validate runs every validator and reports all failures together
func Validate(validators ...Validator) error {
	var all ValidationErrors
	for _, validator := range validators {
		all = append(all, validator()...)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RequireNonEmpty fails for empty or blank values
func RequireNonEmpty(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// RequirePositiveDuration fails for zero or negative durations such as HOST_TIMEOUT=0s
func RequirePositiveDuration(field string, value time.Duration) *ValidationError {
	if value <= 0 {
		return invalid(field, "must be a positive duration like 30s, got %v", value)
	}
	return nil
}

// RequireValidURL accepts absolute http or https base URLs. The host API and
// the web client are both addressed this way; a query or fragment would be
// lost when paths are joined onto the base.
func RequireValidURL(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}

	u, err := url.Parse(value)
	if err != nil {
		return invalid(field, "is not a URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(field, "must start with http:// or https://, got %q", value)
	}
	if u.Host == "" {
		return invalid(field, "must name a host, got %q", value)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return invalid(field, "must be a base URL without query or fragment, got %q", value)
	}
	return nil
}

// RequireValidPort fails for port 0
func RequireValidPort(field string, value uint16) *ValidationError {
	if value == 0 {
		return invalid(field, "must be a port between 1 and 65535")
	}
	return nil
}

// RequireOneOf fails unless value is one of allowed
func RequireOneOf(field, value string, allowed []string) *ValidationError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return invalid(field, "must be one of %s, got %q", strings.Join(allowed, "|"), value)
}

// WhenSet skips check for optional keys left empty
func WhenSet(value string, check func() *ValidationError) *ValidationError {
	if value == "" {
		return nil
	}
	return check()
}

// CollectErrors drops the nil results of individual checks
func CollectErrors(checks ...*ValidationError) ValidationErrors {
	var result ValidationErrors
	for _, err := range checks {
		if err != nil {
			result = append(result, *err)
		}
	}
	return result
}
