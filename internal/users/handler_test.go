package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/users"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/routes"
)

type mockSystem struct {
	registerFn func(ctx context.Context, cmd users.RegisterCommand) (users.User, error)
	loginFn    func(ctx context.Context, cmd users.LoginCommand) (users.Session, error)
	findFn     func(ctx context.Context, id uuid.UUID) (users.User, error)
	updateFn   func(ctx context.Context, id uuid.UUID, cmd users.ProfileCommand) (users.User, error)
}

func (m *mockSystem) Handler() *users.Handler { return nil }

func (m *mockSystem) Register(ctx context.Context, cmd users.RegisterCommand) (users.User, error) {
	return m.registerFn(ctx, cmd)
}

func (m *mockSystem) Login(ctx context.Context, cmd users.LoginCommand) (users.Session, error) {
	return m.loginFn(ctx, cmd)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (users.User, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) UpdateProfile(ctx context.Context, id uuid.UUID, cmd users.ProfileCommand) (users.User, error) {
	return m.updateFn(ctx, id, cmd)
}

func setupMux(sys users.System) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	routes.Register(mux, users.NewHandler(sys, logger, 1024).Routes())
	return mux
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func as(r *http.Request, role string, id uuid.UUID) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: id, Role: role}))
}

func TestHandlerRegister(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"invalid", users.ErrWeakPassword, http.StatusBadRequest},
		{"duplicate", users.ErrDuplicate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(&mockSystem{
				registerFn: func(_ context.Context, cmd users.RegisterCommand) (users.User, error) {
					return users.User{ID: uuid.New(), Email: cmd.Email, PasswordHash: "secret-hash"}, tt.err
				},
			})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, jsonRequest("POST", "/auth/register", `{"email":"a@b.co","password":"x"}`))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if bytes.Contains(rec.Body.Bytes(), []byte("secret-hash")) {
				t.Error("password hash leaked into response")
			}
		})
	}
}

func TestHandlerLogin(t *testing.T) {
	mux := setupMux(&mockSystem{
		loginFn: func(_ context.Context, cmd users.LoginCommand) (users.Session, error) {
			if cmd.Password != "Secret123" {
				return users.Session{}, auth.ErrInvalidCredentials
			}
			return users.Session{Token: "tok", TokenType: "bearer"}, nil
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/auth/login", `{"email":"a@b.co","password":"Secret123"}`))
	var session users.Session
	json.NewDecoder(rec.Body).Decode(&session)
	if rec.Code != http.StatusOK || session.Token != "tok" {
		t.Errorf("status = %d, session = %+v", rec.Code, session)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/auth/login", `{"email":"a@b.co","password":"nope"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials status = %d, want 401", rec.Code)
	}
}

func TestHandlerProfile(t *testing.T) {
	id := uuid.New()
	mux := setupMux(&mockSystem{
		findFn: func(_ context.Context, got uuid.UUID) (users.User, error) {
			if got != id {
				return users.User{}, users.ErrNotFound
			}
			return users.User{ID: id, Role: auth.RoleClinician}, nil
		},
		updateFn: func(_ context.Context, got uuid.UUID, cmd users.ProfileCommand) (users.User, error) {
			if cmd.LicenseNumber == "" {
				return users.User{}, users.ErrInvalidLicense
			}
			return users.User{ID: got, FirstName: cmd.FirstName}, nil
		},
	})

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"me anonymous", httptest.NewRequest("GET", "/auth/me", nil), http.StatusUnauthorized},
		{"me", as(httptest.NewRequest("GET", "/auth/me", nil), auth.RolePatient, id), http.StatusOK},
		{"profile patient", as(httptest.NewRequest("GET", "/clinicians/profile", nil), auth.RolePatient, id), http.StatusForbidden},
		{"profile", as(httptest.NewRequest("GET", "/clinicians/profile", nil), auth.RoleClinician, id), http.StatusOK},
		{"profile unknown", as(httptest.NewRequest("GET", "/clinicians/profile", nil), auth.RoleClinician, uuid.New()), http.StatusNotFound},
		{"update invalid", as(jsonRequest("PUT", "/clinicians/profile", `{"first_name":"G"}`), auth.RoleClinician, id), http.StatusBadRequest},
		{"update", as(jsonRequest("PUT", "/clinicians/profile", `{"first_name":"G","license_number":"MED-1234567"}`), auth.RoleClinician, id), http.StatusOK},
		{"update not json", as(httptest.NewRequest("PUT", "/clinicians/profile", nil), auth.RoleClinician, id), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerSpecializations(t *testing.T) {
	mux := setupMux(&mockSystem{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/clinicians/specializations", nil))

	var specs []map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&specs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || len(specs) != 24 {
		t.Errorf("status = %d, count = %d, want 200 and 24", rec.Code, len(specs))
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{users.ErrNotFound, http.StatusNotFound},
		{users.ErrDuplicate, http.StatusConflict},
		{users.ErrInvalidEmail, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := users.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
