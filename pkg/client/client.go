package client

import (
	"net/http"

	"github.com/tendant/user-switcher/pkg/hostapi"
)

// CredentialsFromRequest copies the caller's host credential headers. The
// result is passed explicitly into every privileged operation and discarded
// with the request.
func CredentialsFromRequest(r *http.Request) hostapi.Credentials {
	return hostapi.Credentials{
		Authorization:     r.Header.Get(hostapi.HeaderAuthorization),
		EmbyAuthorization: r.Header.Get(hostapi.HeaderEmbyAuthorization),
	}
}
