package hostapi

import (
	"log/slog"
	"net/http"
	"strings"
)

// Header names the host accepts for caller authentication
const (
	HeaderAuthorization     = "Authorization"
	HeaderEmbyAuthorization = "X-Emby-Authorization"
)

// Credentials is the admin's own credential material, forwarded verbatim on
// every host request. It is built per inbound request and never stored.
type Credentials struct {
	Authorization     string
	EmbyAuthorization string
}

// Empty reports whether no credential header was supplied
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.Authorization) == "" && strings.TrimSpace(c.EmbyAuthorization) == ""
}

// LogValue keeps credential material out of logs
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("authorization", c.Authorization != ""),
		slog.Bool("emby_authorization", c.EmbyAuthorization != ""),
	)
}

func (c Credentials) apply(h http.Header) {
	if c.Authorization != "" {
		h.Set(HeaderAuthorization, c.Authorization)
	}
	if c.EmbyAuthorization != "" {
		h.Set(HeaderEmbyAuthorization, c.EmbyAuthorization)
	}
}
