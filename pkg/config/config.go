package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
)

const (
	PersistenceFile     = "file"
	PersistencePostgres = "postgres"
	PersistenceMemory   = "memory"
)

// Config is the full runtime configuration
type Config struct {
	// Host media server API, e.g. http://jellyfin:8096
	HostBaseURL string        `env:"HOST_BASE_URL" env-default:""`
	HostTimeout time.Duration `env:"HOST_TIMEOUT" env-default:"30s"`
	// Base URL of the web client that impersonation URLs point at.
	// Defaults to HostBaseURL.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:""`
	RoutePrefix   string `env:"ROUTE_PREFIX" env-default:"/Plugin/UserSwitcher"`

	QuickConnectAppName    string `env:"QC_APP_NAME" env-default:"UserSwitcher"`
	QuickConnectAppVersion string `env:"QC_APP_VERSION" env-default:"0.1.0"`
	QuickConnectDeviceName string `env:"QC_DEVICE_NAME" env-default:"AdminConsole"`

	SettingsPersistence string `env:"SETTINGS_PERSISTENCE" env-default:"file"`
	SettingsDataDir     string `env:"SETTINGS_DATA_DIR" env-default:"./data"`
	SettingsDatabase    DatabaseConfig

	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`

	AppConfig app.AppConfig
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.HostBaseURL = strings.TrimSpace(c.HostBaseURL)
	if strings.TrimSpace(c.PublicBaseURL) == "" {
		c.PublicBaseURL = c.HostBaseURL
	}
	c.RoutePrefix = "/" + strings.Trim(c.RoutePrefix, "/")
}

// Validate reports every invalid key
func (c Config) Validate() error {
	return Validate(
		func() ValidationErrors {
			return CollectErrors(
				RequireValidURL("HOST_BASE_URL", c.HostBaseURL),
				WhenSet(c.PublicBaseURL, func() *ValidationError {
					return RequireValidURL("PUBLIC_BASE_URL", c.PublicBaseURL)
				}),
				RequirePositiveDuration("HOST_TIMEOUT", c.HostTimeout),
				RequireNonEmpty("QC_APP_NAME", c.QuickConnectAppName),
				RequireNonEmpty("QC_APP_VERSION", c.QuickConnectAppVersion),
				RequireNonEmpty("QC_DEVICE_NAME", c.QuickConnectDeviceName),
				RequireOneOf("SETTINGS_PERSISTENCE", c.SettingsPersistence,
					[]string{PersistenceFile, PersistencePostgres, PersistenceMemory}),
			)
		},
		func() ValidationErrors {
			switch c.SettingsPersistence {
			case PersistenceFile:
				return CollectErrors(RequireNonEmpty("SETTINGS_DATA_DIR", c.SettingsDataDir))
			case PersistencePostgres:
				return c.SettingsDatabase.validate()
			}
			return nil
		},
	)
}
