package hostapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/hostapi"
	"github.com/tendant/user-switcher/pkg/hostapi/hostapitest"
)

func newClient(t *testing.T) (*hostapi.Client, *hostapitest.Server) {
	srv := hostapitest.NewServer()
	t.Cleanup(srv.Close)

	client, err := hostapi.NewClient(srv.URL)
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := hostapi.NewClient("not a url")
	assert.Error(t, err)

	_, err = hostapi.NewClient("")
	assert.Error(t, err)
}

func TestClient_ForwardsCredentials(t *testing.T) {
	client, srv := newClient(t)
	creds := hostapi.Credentials{
		Authorization:     "MediaBrowser Token=\"abc\"",
		EmbyAuthorization: "MediaBrowser Token=\"def\"",
	}

	_, err := client.CurrentUser(context.Background(), creds)
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, hostapi.PathCurrentUser, calls[0].Path)
	assert.Equal(t, creds.Authorization, calls[0].Authorization)
	assert.Equal(t, creds.EmbyAuthorization, calls[0].EmbyAuthorization)
}

func TestClient_BaseURLWithPathPrefix(t *testing.T) {
	srv := hostapitest.NewServer()
	t.Cleanup(srv.Close)

	// The fake host serves at the root, so a prefixed base must not reach it.
	client, err := hostapi.NewClient(srv.URL + "/jellyfin")
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background(), hostapitest.AdminCredentials())
	require.Error(t, err)
	assert.Equal(t, []string{"jellyfin/Users/Me"}, srv.Paths())
}

func TestClient_ListUsers(t *testing.T) {
	client, srv := newClient(t)
	id := uuid.New()
	srv.Users = []hostapi.User{{Id: id, Name: "Anna", Policy: hostapi.Policy{IsDisabled: true}}}

	users, err := client.ListUsers(context.Background(), hostapitest.AdminCredentials())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].Id)
	assert.Equal(t, "Anna", users[0].Name)
	assert.True(t, users[0].Policy.IsDisabled)
	assert.False(t, users[0].Policy.IsAdministrator)
}

func TestClient_ListUsers_NullBody(t *testing.T) {
	client, srv := newClient(t)
	srv.Handle(hostapi.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})

	_, err := client.ListUsers(context.Background(), hostapitest.AdminCredentials())
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamUnavailable))
}

func TestClient_MalformedBody(t *testing.T) {
	client, srv := newClient(t)
	srv.Handle(hostapi.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Id": 1`))
	})

	_, err := client.ListUsers(context.Background(), hostapitest.AdminCredentials())
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamUnavailable))
}

func TestClient_RejectedStatus(t *testing.T) {
	client, srv := newClient(t)
	srv.Handle(hostapi.PathQuickConnectAuthz, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"secret":"should not leak"}`))
	})

	err := client.AuthorizeQuickConnect(context.Background(), hostapitest.AdminCredentials(), "ABC123", uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamRejected))
	assert.Equal(t, http.StatusNotFound, hostapi.StatusCode(err))
	assert.NotContains(t, err.Error(), "should not leak")
}

func TestClient_TransportFailure(t *testing.T) {
	srv := hostapitest.NewServer()
	client, err := hostapi.NewClient(srv.URL, hostapi.WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	srv.Close()

	_, err = client.CurrentUser(context.Background(), hostapitest.AdminCredentials())
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamUnavailable))
	assert.Equal(t, 0, hostapi.StatusCode(err))
}

func TestClient_QuickConnectPayloads(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	creds := hostapitest.AdminCredentials()
	userID := uuid.New()

	session, err := client.InitiateQuickConnect(ctx, creds, hostapi.InitiateRequest{
		AppName:    "UserSwitcher",
		AppVersion: "0.1.0",
		DeviceName: "AdminConsole",
		DeviceId:   "device-1",
	})
	require.NoError(t, err)
	assert.Equal(t, hostapitest.DefaultSecret, session.Secret)
	assert.Equal(t, hostapitest.DefaultCode, session.Code)

	require.NoError(t, client.AuthorizeQuickConnect(ctx, creds, session.Code, userID))

	auth, err := client.AuthenticateWithQuickConnect(ctx, creds, session.Secret)
	require.NoError(t, err)
	assert.Equal(t, hostapitest.DefaultAccessToken, auth.AccessToken)

	calls := srv.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "device-1", calls[0].Body["DeviceId"])
	assert.Equal(t, "UserSwitcher", calls[0].Body["AppName"])
	assert.Equal(t, hostapitest.DefaultCode, calls[1].Body["Code"])
	assert.Equal(t, userID.String(), calls[1].Body["UserId"])
	assert.Equal(t, hostapitest.DefaultSecret, calls[2].Body["Secret"])
}

func TestCredentials_Empty(t *testing.T) {
	assert.True(t, hostapi.Credentials{}.Empty())
	assert.True(t, hostapi.Credentials{Authorization: "  "}.Empty())
	assert.False(t, hostapi.Credentials{EmbyAuthorization: "x"}.Empty())
}
