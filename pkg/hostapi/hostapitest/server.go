// Package hostapitest provides a fake host media server for tests. It records
// every request so callers can assert which host endpoints were hit, in what
// order, and with which credentials.
package hostapitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/hostapi"
)

const (
	DefaultSecret      = "pairing-secret"
	DefaultCode        = "QC1234"
	DefaultAccessToken = "access-token"
)

// Call is one recorded host request
type Call struct {
	Method            string
	Path              string
	Authorization     string
	EmbyAuthorization string
	Body              map[string]interface{}
}

// Server is a fake host. Zero-value responses are replaced by defaults that
// complete a successful impersonation handshake for an administrator.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	overrides map[string]http.HandlerFunc

	// Me is returned from Users/Me
	Me hostapi.User
	// Users is returned from Users
	Users []hostapi.User
}

// NewServer starts a fake host. Close it with t.Cleanup(srv.Close).
func NewServer() *Server {
	s := &Server{
		overrides: make(map[string]http.HandlerFunc),
		Me: hostapi.User{
			Id:     uuid.New(),
			Name:   "admin",
			Policy: hostapi.Policy{IsAdministrator: true},
		},
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(requireCredentials)
	r.Get("/"+hostapi.PathCurrentUser, s.route(hostapi.PathCurrentUser, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, s.Me)
	}))
	r.Get("/"+hostapi.PathUsers, s.route(hostapi.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		users := s.Users
		if users == nil {
			users = []hostapi.User{}
		}
		render.JSON(w, r, users)
	}))
	r.Post("/"+hostapi.PathQuickConnectInitiate, s.route(hostapi.PathQuickConnectInitiate, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, hostapi.QuickConnectResult{Secret: DefaultSecret, Code: DefaultCode})
	}))
	r.Post("/"+hostapi.PathQuickConnectAuthz, s.route(hostapi.PathQuickConnectAuthz, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r.Post("/"+hostapi.PathQuickConnectRedeem, s.route(hostapi.PathQuickConnectRedeem, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, hostapi.AuthenticationResult{AccessToken: DefaultAccessToken})
	}))

	s.Server = httptest.NewServer(r)
	return s
}

// Handle replaces the handler for a host path such as hostapi.PathUsers
func (s *Server) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = h
}

// Respond makes path reply with status and, when body is non-nil, a JSON body
func (s *Server) Respond(path string, status int, body interface{}) {
	s.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		if body == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// Calls returns a copy of the recorded requests
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Paths returns the recorded request paths in order, without the leading slash
func (s *Server) Paths() []string {
	calls := s.Calls()
	paths := make([]string, 0, len(calls))
	for _, c := range calls {
		paths = append(paths, c.Path)
	}
	return paths
}

func (s *Server) route(path string, fallback http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		h, ok := s.overrides[path]
		s.mu.Unlock()
		if ok {
			h(w, r)
			return
		}
		fallback(w, r)
	}
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{
			Method:            r.Method,
			Path:              strings.TrimPrefix(r.URL.Path, "/"),
			Authorization:     r.Header.Get(hostapi.HeaderAuthorization),
			EmbyAuthorization: r.Header.Get(hostapi.HeaderEmbyAuthorization),
		}
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				_ = json.Unmarshal(data, &call.Body)
			}
			r.Body = io.NopCloser(strings.NewReader(string(data)))
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func requireCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(hostapi.HeaderAuthorization) == "" && r.Header.Get(hostapi.HeaderEmbyAuthorization) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminCredentials is a credential set the fake host accepts
func AdminCredentials() hostapi.Credentials {
	return hostapi.Credentials{
		Authorization: `MediaBrowser Client="test", Device="test", DeviceId="test", Version="1", Token="admin-token"`,
	}
}
