package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/identito/auth-service/internal/core/domain"
)

type stubAuth struct {
	userByToken map[string]*domain.User
}

func (s *stubAuth) Register(context.Context, string, string) (*domain.User, error) { return nil, nil }
func (s *stubAuth) ValidLogin(context.Context, string, string) bool                { return false }
func (s *stubAuth) CreateSession(context.Context, string) (string, error)          { return "", nil }
func (s *stubAuth) DestroySession(context.Context, string) error                   { return nil }
func (s *stubAuth) RequestPasswordReset(context.Context, string) (string, error)   { return "", nil }
func (s *stubAuth) CompletePasswordReset(context.Context, string, string) error    { return nil }

func (s *stubAuth) GetUserBySession(_ context.Context, token string) (*domain.User, error) {
	return s.userByToken[token], nil
}

func runSession(t *testing.T, cookie *http.Cookie, auth *stubAuth) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error {
		user, _ := c.Get(ContextUserKey).(*domain.User)
		if user == nil {
			t.Fatalf("middleware must inject the user")
		}
		return c.NoContent(http.StatusOK)
	}
	err := Session(auth, "session_id")(next)(c)
	return rec, err
}

func TestSession_ValidCookie(t *testing.T) {
	auth := &stubAuth{userByToken: map[string]*domain.User{
		"tok-1": {ID: "1", Email: "a@x.com", SessionToken: "tok-1"},
	}}

	rec, err := runSession(t, &http.Cookie{Name: "session_id", Value: "tok-1"}, auth)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSession_MissingCookie(t *testing.T) {
	_, err := runSession(t, nil, &stubAuth{userByToken: map[string]*domain.User{}})

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestSession_UnknownToken(t *testing.T) {
	_, err := runSession(t, &http.Cookie{Name: "session_id", Value: "stale"}, &stubAuth{userByToken: map[string]*domain.User{}})

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}
