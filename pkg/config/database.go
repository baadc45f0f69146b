package config

import (
	"fmt"
	"net/url"
)

// DatabaseConfig holds the PostgreSQL connection used when settings are
// persisted in postgres
type DatabaseConfig struct {
	Host     string `env:"SETTINGS_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SETTINGS_PG_PORT" env-default:"5432"`
	Database string `env:"SETTINGS_PG_DATABASE" env-default:"userswitcher"`
	User     string `env:"SETTINGS_PG_USER" env-default:"userswitcher"`
	Password string `env:"SETTINGS_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"SETTINGS_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		url.UserPassword(d.User, d.Password).String(), d.Host, d.Port, d.Database, d.Schema)
}

func (d DatabaseConfig) validate() ValidationErrors {
	return CollectErrors(
		RequireNonEmpty("SETTINGS_PG_HOST", d.Host),
		RequireValidPort("SETTINGS_PG_PORT", d.Port),
		RequireNonEmpty("SETTINGS_PG_DATABASE", d.Database),
		RequireNonEmpty("SETTINGS_PG_USER", d.User),
	)
}
