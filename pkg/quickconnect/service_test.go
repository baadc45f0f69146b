package quickconnect

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/user-switcher/pkg/admin"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/hostapi/hostapitest"
	"github.com/tendant/user-switcher/pkg/metrics"
)

func setupRelay(t *testing.T) (*Service, *hostapitest.Server, *metrics.Metrics) {
	srv := hostapitest.NewServer()
	t.Cleanup(srv.Close)

	host, err := hostapi.NewClient(srv.URL)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	return NewService(admin.NewVerifier(host), host, WithMetrics(m)), srv, m
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{code: "AB12C3", want: "AB12C3"},
		{code: "  ab12c3\n", want: "ab12c3"},
		{code: "AB12C", wantErr: true},
		{code: "AB12C34", wantErr: true},
		{code: "      ", wantErr: true},
		{code: "", wantErr: true},
		{code: "AB 2C3", want: "AB 2C3"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := NormalizeCode(tt.code)
			if tt.wantErr {
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_AuthorizeCode(t *testing.T) {
	svc, srv, m := setupRelay(t)
	userID := uuid.New()

	err := svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), " AB12C3 ", userID.String())
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, hostapi.PathCurrentUser, calls[0].Path)
	assert.Equal(t, hostapi.PathQuickConnectAuthz, calls[1].Path)
	assert.Equal(t, "AB12C3", calls[1].Body["Code"])
	assert.Equal(t, userID.String(), calls[1].Body["UserId"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeAuthorizations.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestService_AuthorizeCode_PreservesCase(t *testing.T) {
	svc, srv, _ := setupRelay(t)

	require.NoError(t, svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), "ab12c3", uuid.NewString()))
	calls := srv.Calls()
	assert.Equal(t, "ab12c3", calls[len(calls)-1].Body["Code"])
}

func TestService_AuthorizeCode_InvalidCode(t *testing.T) {
	svc, srv, _ := setupRelay(t)

	err := svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), "ABC", uuid.NewString())
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCode))
	assert.Equal(t, []string{hostapi.PathCurrentUser}, srv.Paths(), "no authorize call")
}

func TestService_AuthorizeCode_InvalidUserID(t *testing.T) {
	svc, srv, m := setupRelay(t)

	err := svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), "AB12C3", "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput), "got %v", err)
	assert.Equal(t, []string{hostapi.PathCurrentUser}, srv.Paths(), "no authorize call")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeAuthorizations.WithLabelValues(metrics.OutcomeDenied)))

	err = svc.AuthorizeCode(context.Background(), hostapi.Credentials{}, "AB12C3", "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized), "got %v", err)
}

func TestService_AuthorizeCode_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		svc, srv, m := setupRelay(t)
		srv.Respond(hostapi.PathQuickConnectAuthz, status, nil)

		err := svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), "AB12C3", uuid.NewString())
		assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamRejected), "status %d: got %v", status, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeAuthorizations.WithLabelValues(metrics.OutcomeFailure)))
	}
}

func TestService_AuthorizeCode_RequiresAdmin(t *testing.T) {
	svc, srv, _ := setupRelay(t)
	srv.Me.Policy.IsAdministrator = false

	// Admin check runs before the local code check
	err := svc.AuthorizeCode(context.Background(), hostapitest.AdminCredentials(), "ABC", uuid.NewString())
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
	assert.Equal(t, []string{hostapi.PathCurrentUser}, srv.Paths())
}
