package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"karabook/internal/auth/service"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

type mockAuthService struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (*model.User, error)
	RegisterFunc     func(ctx context.Context, user *model.User, password string) error
	IssueTokenFunc   func(user *model.User) (string, error)
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	return m.AuthenticateFunc(ctx, email, password)
}

func (m *mockAuthService) Register(ctx context.Context, user *model.User, password string) error {
	return m.RegisterFunc(ctx, user, password)
}

func (m *mockAuthService) IssueToken(user *model.User) (string, error) {
	return m.IssueTokenFunc(user)
}

var _ service.AuthService = (*mockAuthService)(nil)

func newTestRouter(svc service.AuthService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewAuthHandler(svc, log).RegisterRoutes(router)
	return router
}

func sampleUser() *model.User {
	return &model.User{
		ID:    "64f1b2c3d4e5f6a7b8c9d0e2",
		Name:  "Mei Sato",
		Email: "mei@example.com",
		Role:  model.RoleUser,
	}
}

func TestLoginHandler(t *testing.T) {
	t.Run("success returns token and user", func(t *testing.T) {
		var gotEmail, gotPassword string
		router := newTestRouter(&mockAuthService{
			AuthenticateFunc: func(ctx context.Context, email, password string) (*model.User, error) {
				gotEmail, gotPassword = email, password
				return sampleUser(), nil
			},
			IssueTokenFunc: func(user *model.User) (string, error) {
				return "signed.jwt.token", nil
			},
		})

		body := `{"email":"mei@example.com","password":"s3cret-pass"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotEmail != "mei@example.com" || gotPassword != "s3cret-pass" {
			t.Errorf("credentials did not reach the service: %q / %q", gotEmail, gotPassword)
		}

		var resp struct {
			Data struct {
				Token string     `json:"token"`
				User  model.User `json:"user"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Data.Token != "signed.jwt.token" {
			t.Errorf("expected token in response, got %q", resp.Data.Token)
		}
		if resp.Data.User.Email != "mei@example.com" {
			t.Errorf("expected user in response, got %+v", resp.Data.User)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		router := newTestRouter(&mockAuthService{
			AuthenticateFunc: func(ctx context.Context, email, password string) (*model.User, error) {
				return nil, apperrors.Unauthorized("invalid email or password")
			},
		})

		body := `{"email":"mei@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var resp struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Code != apperrors.CodeUnauthorized {
			t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, resp.Code)
		}
	})
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created with forced user role", func(t *testing.T) {
		var gotRole string
		router := newTestRouter(&mockAuthService{
			RegisterFunc: func(ctx context.Context, user *model.User, password string) error {
				gotRole = user.Role
				user.ID = "64f1b2c3d4e5f6a7b8c9d0e2"
				return nil
			},
		})

		// A role in the payload is ignored; registration always creates a user.
		body := `{"name":"Mei Sato","email":"mei@example.com","password":"s3cret-pass","role":"admin"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRole != model.RoleUser {
			t.Errorf("expected role %q, got %q", model.RoleUser, gotRole)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		router := newTestRouter(&mockAuthService{
			RegisterFunc: func(ctx context.Context, user *model.User, password string) error {
				return apperrors.Conflict("email already registered")
			},
		})

		body := `{"name":"Mei Sato","email":"mei@example.com","password":"s3cret-pass"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})
}
