package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/user-switcher/pkg/admin"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/hostapi/hostapitest"
	"github.com/tendant/user-switcher/pkg/quickconnect"
)

func setupHandler(t *testing.T) (http.Handler, *hostapitest.Server) {
	srv := hostapitest.NewServer()
	t.Cleanup(srv.Close)

	host, err := hostapi.NewClient(srv.URL)
	require.NoError(t, err)

	verifier := admin.NewVerifier(host)
	svc := quickconnect.NewService(verifier, host)
	return Handler(NewHandle(svc, verifier)), srv
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(hostapi.HeaderAuthorization, hostapitest.AdminCredentials().Authorization)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeCode_OK(t *testing.T) {
	h, srv := setupHandler(t)
	userID := srv.Me.Id.String()

	rec := post(h, `{"code":" QC1234 ","userId":"`+userID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "QC1234", calls[1].Body["Code"])
	assert.Equal(t, userID, calls[1].Body["UserId"])
}

func TestAuthorizeCode_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{name: "malformed json", body: `{"code":`, code: errors.ErrCodeInvalidInput},
		{name: "bad user id", body: `{"code":"QC1234","userId":"nope"}`, code: errors.ErrCodeInvalidInput},
		{name: "short code", body: `{"code":"QC1","userId":"00000000-0000-0000-0000-000000000001"}`, code: errors.ErrCodeInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupHandler(t)

			rec := post(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestAuthorizeCode_NoCredentials(t *testing.T) {
	bodies := []string{
		`{"code":"QC1234","userId":"00000000-0000-0000-0000-000000000001"}`,
		`{"code":"QC1234","userId":"nope"}`,
		`{"code":"QC1","userId":"nope"}`,
		`{"code":`,
	}

	for _, body := range bodies {
		h, srv := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Empty(t, srv.Calls(), body)
	}
}

func TestAuthorizeCode_NonAdminBadInput(t *testing.T) {
	for _, body := range []string{`{"code":"QC1234","userId":"nope"}`, `not json`} {
		h, srv := setupHandler(t)
		srv.Me.Policy = hostapi.Policy{}

		rec := post(h, body)
		assert.Equal(t, http.StatusForbidden, rec.Code, body)
	}
}

func TestAuthorizeCode_HostRejects(t *testing.T) {
	h, srv := setupHandler(t)
	srv.Respond(hostapi.PathQuickConnectAuthz, http.StatusNotFound, nil)

	rec := post(h, `{"code":"QC1234","userId":"00000000-0000-0000-0000-000000000001"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.ErrCodeUpstreamRejected))
}
