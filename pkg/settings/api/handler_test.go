package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/user-switcher/pkg/admin"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/hostapi/hostapitest"
	"github.com/tendant/user-switcher/pkg/settings"
)

func setupHandler(t *testing.T) (http.Handler, *hostapitest.Server) {
	srv := hostapitest.NewServer()
	t.Cleanup(srv.Close)

	host, err := hostapi.NewClient(srv.URL)
	require.NoError(t, err)

	verifier := admin.NewVerifier(host)
	svc := settings.NewService(verifier, settings.NewInMemRepository())
	return Handler(NewHandle(svc, verifier)), srv
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(hostapi.HeaderAuthorization, hostapitest.AdminCredentials().Authorization)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSettingsHandler_RoundTrip(t *testing.T) {
	h, _ := setupHandler(t)

	rec := serve(h, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"impersonationMinutes":15,"watermarkImpersonation":true}`, rec.Body.String())

	rec = serve(h, http.MethodPost, `{"impersonationMinutes":30,"watermarkImpersonation":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "")
	assert.JSONEq(t, `{"impersonationMinutes":30,"watermarkImpersonation":false}`, rec.Body.String())
}

func TestSettingsHandler_MissingFieldsKeepDefaults(t *testing.T) {
	h, _ := setupHandler(t)

	rec := serve(h, http.MethodPost, `{"impersonationMinutes":20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"impersonationMinutes":20,"watermarkImpersonation":true}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "")
	assert.JSONEq(t, `{"impersonationMinutes":20,"watermarkImpersonation":true}`, rec.Body.String())

	rec = serve(h, http.MethodPost, `{"watermarkImpersonation":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"impersonationMinutes":15,"watermarkImpersonation":false}`, rec.Body.String())
}

func TestSettingsHandler_MalformedWithoutCredentials(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettingsHandler_Invalid(t *testing.T) {
	h, _ := setupHandler(t)

	rec := serve(h, http.MethodPost, `{"impersonationMinutes":0,"watermarkImpersonation":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, `[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestSettingsHandler_NonAdmin(t *testing.T) {
	h, srv := setupHandler(t)
	srv.Me.Policy = hostapi.Policy{IsAdministrator: false}

	rec := serve(h, http.MethodGet, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
