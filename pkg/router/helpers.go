package router

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/user-switcher/pkg/admin"
	pkgconfig "github.com/tendant/user-switcher/pkg/config"
	"github.com/tendant/user-switcher/pkg/directory"
	directoryapi "github.com/tendant/user-switcher/pkg/directory/api"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/impersonate"
	impersonateapi "github.com/tendant/user-switcher/pkg/impersonate/api"
	"github.com/tendant/user-switcher/pkg/metrics"
	"github.com/tendant/user-switcher/pkg/quickconnect"
	quickconnectapi "github.com/tendant/user-switcher/pkg/quickconnect/api"
	"github.com/tendant/user-switcher/pkg/settings"
	settingsapi "github.com/tendant/user-switcher/pkg/settings/api"
)

// Options contains what NewConfig needs besides the loaded configuration
type Options struct {
	// Required
	Settings settings.Repository

	// Optional - a client with Config.HostTimeout is created when nil
	HTTPClient *http.Client
	// Optional - metrics are only collected when both are set and
	// Config.MetricsEnabled is true
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewConfig builds every service and handle from cfg
//
// Example:
//
//	routes, err := router.NewConfig(cfg, router.Options{
//	    Settings:   repo,
//	    Registerer: prometheus.DefaultRegisterer,
//	    Gatherer:   prometheus.DefaultGatherer,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.SetupRoutes(r, routes)
func NewConfig(cfg pkgconfig.Config, opts Options) (Config, error) {
	if opts.Settings == nil {
		return Config{}, fmt.Errorf("settings repository is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HostTimeout}
	}

	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled && opts.Registerer != nil && opts.Gatherer != nil {
		m = metrics.New(opts.Registerer)
		metricsHandler = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	}

	host, err := hostapi.NewClient(cfg.HostBaseURL,
		hostapi.WithHTTPClient(httpClient),
		hostapi.WithMetrics(m),
	)
	if err != nil {
		return Config{}, err
	}

	verifier := admin.NewVerifier(host, admin.WithMetrics(m))

	impersonateService, err := impersonate.NewService(verifier, host, cfg.PublicBaseURL,
		impersonate.WithDeviceIdentity(impersonate.DeviceIdentity{
			AppName:    cfg.QuickConnectAppName,
			AppVersion: cfg.QuickConnectAppVersion,
			DeviceName: cfg.QuickConnectDeviceName,
		}),
		impersonate.WithMetrics(m),
	)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Prefix:             cfg.RoutePrefix,
		DirectoryHandle:    directoryapi.NewHandle(directory.NewService(verifier, host)),
		ImpersonateHandle:  impersonateapi.NewHandle(impersonateService, verifier),
		QuickConnectHandle: quickconnectapi.NewHandle(quickconnect.NewService(verifier, host, quickconnect.WithMetrics(m)), verifier),
		SettingsHandle:     settingsapi.NewHandle(settings.NewService(verifier, opts.Settings), verifier),
		MetricsHandler:     metricsHandler,
	}, nil
}
