package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/api/metrics"
	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
	"github.com/perfilapp/perfil/internal/infrastructure/http/handlers"
	"github.com/perfilapp/perfil/internal/infrastructure/identity"
)

var testTokens = identity.NewTokenIssuer("router-secret", time.Hour, nil)

type fakeAuth struct {
	signInErr error
}

func (f *fakeAuth) SignIn(context.Context, string, string) error { return f.signInErr }

func (f *fakeAuth) SignUp(context.Context, ports.RegistrationInput) (*domain.Identity, error) {
	return nil, errors.New("not used")
}

func (f *fakeAuth) SignOut(context.Context, ports.ConfirmFunc) (bool, error) { return true, nil }

func (f *fakeAuth) Status(ports.AuthOperation) domain.OperationStatus { return domain.OperationStatus{} }

type fakeProfiles struct{}

func (fakeProfiles) Home(context.Context) (*ports.HomeView, error) {
	return &ports.HomeView{Identity: domain.Identity{ID: "u1", DisplayName: "Alice"}}, nil
}

func (fakeProfiles) LoadForm(context.Context) (*domain.ProfileForm, error) {
	return &domain.ProfileForm{}, nil
}

func (fakeProfiles) UpdateProfile(context.Context, ports.ProfileUpdateInput) (*ports.ProfileUpdateResult, error) {
	return nil, errors.New("not used")
}

func (fakeProfiles) Status() domain.OperationStatus { return domain.OperationStatus{} }

type fakeEditor struct{}

func (fakeEditor) Load(context.Context) (domain.ProfileForm, error) { return domain.ProfileForm{}, nil }

func (fakeEditor) State() (domain.ProfileForm, bool) { return domain.ProfileForm{}, false }

func (fakeEditor) BeginEdit() {}

func (fakeEditor) Cancel(context.Context) (domain.ProfileForm, error) {
	return domain.ProfileForm{}, nil
}

func (fakeEditor) Save(context.Context, domain.ProfileForm) (*ports.ProfileUpdateResult, error) {
	return nil, errors.New("not used")
}

func (fakeEditor) Reset() {}

type fakeSessions struct {
	state domain.SessionState
}

func (f *fakeSessions) Snapshot() domain.SessionState { return f.state }

func (f *fakeSessions) Await(context.Context, domain.ViewState) (domain.SessionState, error) {
	return f.state, nil
}

type fakeTokens struct{}

func (fakeTokens) Token() (string, time.Time) { return "", time.Time{} }

func newTestRouter(t *testing.T, state domain.SessionState, auth *fakeAuth) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Auth:     auth,
		Profiles: fakeProfiles{},
		Editor:   fakeEditor{},
		Sessions: &fakeSessions{state: state},
		Tokens:   fakeTokens{},
		Checks:   map[string]handlers.Check{"noop": func(context.Context) error { return nil }},
		Verifier: testTokens,
		Metrics:  metrics.NewCollector(reg),
		Gatherer: reg,
		Log:      zerolog.Nop(),
	})
	return e, reg
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	tok, _, err := testTokens.Issue(domain.Identity{ID: subject}, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func serve(h http.Handler, method, target, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var signedIn = domain.SessionState{Identity: &domain.Identity{ID: "u1", Email: "alice@example.com"}, Ready: true}

func TestRouter_Guards(t *testing.T) {
	tests := []struct {
		name   string
		state  domain.SessionState
		method string
		path   string
		body   string
		auth   bool
		want   int
	}{
		{"liveness", domain.SessionState{}, http.MethodGet, "/health", "", false, http.StatusOK},
		{"readiness", domain.SessionState{}, http.MethodGet, "/health/ready", "", false, http.StatusOK},
		{"session while loading", domain.SessionState{}, http.MethodGet, "/v1/session", "", false, http.StatusOK},
		{"home while loading", domain.SessionState{}, http.MethodGet, "/v1/home", "", true, http.StatusServiceUnavailable},
		{"login while loading", domain.SessionState{}, http.MethodPost, "/v1/auth/login", `{}`, false, http.StatusServiceUnavailable},
		{"home signed out", domain.SessionState{Ready: true}, http.MethodGet, "/v1/home", "", false, http.StatusUnauthorized},
		{"login signed in", signedIn, http.MethodPost, "/v1/auth/login", `{}`, false, http.StatusForbidden},
		{"home without token", signedIn, http.MethodGet, "/v1/home", "", false, http.StatusUnauthorized},
		{"home with token", signedIn, http.MethodGet, "/v1/home", "", true, http.StatusOK},
		{"profile with token", signedIn, http.MethodGet, "/v1/profile", "", true, http.StatusOK},
		{"logout not confirmed", signedIn, http.MethodPost, "/v1/auth/logout", `{}`, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t, tt.state, &fakeAuth{})
			auth := ""
			if tt.auth {
				auth = bearer(t, "u1")
			}

			rec := serve(h, tt.method, tt.path, tt.body, auth)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_TokenForAnotherIdentity(t *testing.T) {
	h, _ := newTestRouter(t, signedIn, &fakeAuth{})

	rec := serve(h, http.MethodGet, "/v1/home", "", bearer(t, "someone-else"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_LoginFailureIsMappedAndCounted(t *testing.T) {
	h, reg := newTestRouter(t, domain.SessionState{Ready: true}, &fakeAuth{signInErr: domain.ErrTooManyAttempts})

	rec := serve(h, http.MethodPost, "/v1/auth/login", `{"email":"alice@example.com","password":"x"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawFailure, sawDuration bool
	for _, mf := range families {
		switch mf.GetName() {
		case "perfil_auth_operations_total":
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, lp := range m.GetLabel() {
					labels[lp.GetName()] = lp.GetValue()
				}
				if labels["operation"] == "sign_in" && labels["result"] == "failure" && m.GetCounter().GetValue() == 1 {
					sawFailure = true
				}
			}
		case "perfil_http_request_duration_seconds":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "status" && lp.GetValue() == "429" {
						sawDuration = true
					}
				}
			}
		}
	}
	if !sawFailure {
		t.Fatal("expected sign_in failure to be counted")
	}
	if !sawDuration {
		t.Fatal("expected request duration recorded with status 429")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, domain.SessionState{}, &fakeAuth{})
	_ = serve(h, http.MethodGet, "/v1/session", "", "")

	rec := serve(h, http.MethodGet, "/metrics", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "perfil_http_request_duration_seconds") {
		t.Fatal("expected request histogram in exposition")
	}
}
