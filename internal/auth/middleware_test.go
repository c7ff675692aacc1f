package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

type stubUserRepo struct {
	byEmail map[string]*domain.User
}

func (s *stubUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }

func (s *stubUserRepo) Update(_ context.Context, _ int64, _ domain.UserUpdate) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) GetByID(_ context.Context, _ int64) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) List(_ context.Context) ([]domain.User, error) { return nil, nil }

func newGateApp(t *testing.T, repo *stubUserRepo, tm *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
		},
	})

	mw := NewAuthMiddleware(tm, repo)
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }
	app.Get("/me", mw.Handle, ok)
	app.Get("/admin", mw.Handle, RequireAdmin(), ok)
	return app
}

func gateRequest(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestAuthMiddleware_Gate(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)
	repo := &stubUserRepo{byEmail: map[string]*domain.User{
		"alice@x.com":    {ID: 1, Name: "Alice", Email: "alice@x.com", Role: domain.RoleCustomer, IsActive: true},
		"root@x.com":     {ID: 2, Name: "Root", Email: "root@x.com", Role: domain.RoleAdmin, IsActive: true},
		"inactive@x.com": {ID: 3, Name: "Gone", Email: "inactive@x.com", Role: domain.RoleCustomer, IsActive: false},
	}}
	app := newGateApp(t, repo, tm)

	issue := func(email string, role domain.Role) string {
		token, _, err := tm.Issue(email, role)
		require.NoError(t, err)
		return "Bearer " + token
	}

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", path: "/me", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer scheme", path: "/me", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", authHeader: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "valid token unknown user", path: "/me", authHeader: issue("ghost@x.com", domain.RoleCustomer), wantStatus: http.StatusUnauthorized},
		{name: "inactive account", path: "/me", authHeader: issue("inactive@x.com", domain.RoleCustomer), wantStatus: http.StatusForbidden},
		{name: "active customer", path: "/me", authHeader: issue("alice@x.com", domain.RoleCustomer), wantStatus: http.StatusOK},
		{name: "customer on admin route", path: "/admin", authHeader: issue("alice@x.com", domain.RoleCustomer), wantStatus: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", authHeader: issue("root@x.com", domain.RoleAdmin), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, gateRequest(t, app, tt.path, tt.authHeader))
		})
	}
}

// The gate trusts the stored role, not the token snapshot: a token issued
// before a promotion opens admin routes, and one issued before a demotion
// stops working immediately.
func TestAuthMiddleware_LiveRoleOverridesTokenSnapshot(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)
	repo := &stubUserRepo{byEmail: map[string]*domain.User{
		"bob@x.com": {ID: 4, Name: "Bob", Email: "bob@x.com", Role: domain.RoleCustomer, IsActive: true},
	}}
	app := newGateApp(t, repo, tm)

	token, _, err := tm.Issue("bob@x.com", domain.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, gateRequest(t, app, "/admin", "Bearer "+token))

	repo.byEmail["bob@x.com"].Role = domain.RoleAdmin
	assert.Equal(t, http.StatusOK, gateRequest(t, app, "/admin", "Bearer "+token))

	// The claims inside the old token still carry the stale snapshot.
	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestAuthMiddleware_ExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)
	repo := &stubUserRepo{byEmail: map[string]*domain.User{
		"alice@x.com": {ID: 1, Email: "alice@x.com", Role: domain.RoleCustomer, IsActive: true},
	}}
	app := newGateApp(t, repo, tm)

	expired := signToken(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	assert.Equal(t, http.StatusUnauthorized, gateRequest(t, app, "/me", "Bearer "+expired))
}
