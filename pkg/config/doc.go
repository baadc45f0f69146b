// Package config loads and validates the user switcher configuration.
//
// Values come from the environment via cleanenv; a .env file, when present,
// is applied to the environment first by the caller.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    slog.Error("Invalid configuration", "error", err)
//	    os.Exit(1)
//	}
//
// Validation collects every problem at once so a misconfigured deployment
// reports all bad keys in one run:
//
//	configuration validation failed:
//	  - HOST_BASE_URL is required
//	  - SETTINGS_PERSISTENCE must be one of file|postgres|memory, got "redis"
package config
