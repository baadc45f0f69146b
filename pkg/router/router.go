package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	directoryapi "github.com/tendant/user-switcher/pkg/directory/api"
	impersonateapi "github.com/tendant/user-switcher/pkg/impersonate/api"
	quickconnectapi "github.com/tendant/user-switcher/pkg/quickconnect/api"
	settingsapi "github.com/tendant/user-switcher/pkg/settings/api"
)

const (
	PathUsers         = "/Users"
	PathAuthorizeCode = "/AuthorizeCode"
	PathImpersonate   = "/Impersonate"
	PathConfiguration = "/Configuration"
	PathMetrics       = "/metrics"
)

// Config holds the handles mounted by SetupRoutes
type Config struct {
	// Prefix every user switcher route is mounted under, e.g. /Plugin/UserSwitcher
	Prefix string

	DirectoryHandle    directoryapi.Handle
	ImpersonateHandle  impersonateapi.Handle
	QuickConnectHandle quickconnectapi.Handle
	SettingsHandle     settingsapi.Handle

	// Optional: served at /metrics outside the prefix when set
	MetricsHandler http.Handler
}

// SetupRoutes mounts all user switcher routes on the provided router.
// Authentication is delegated to the host on every request, so no auth
// middleware is installed here.
func SetupRoutes(router chi.Router, cfg Config) {
	if cfg.MetricsHandler != nil {
		router.Handle(PathMetrics, cfg.MetricsHandler)
	}

	router.Route(cfg.Prefix, func(r chi.Router) {
		r.Mount(PathUsers, directoryapi.Handler(cfg.DirectoryHandle))
		r.Mount(PathAuthorizeCode, quickconnectapi.Handler(cfg.QuickConnectHandle))
		r.Mount(PathImpersonate, impersonateapi.Handler(cfg.ImpersonateHandle))
		r.Mount(PathConfiguration, settingsapi.Handler(cfg.SettingsHandle))
	})
}
