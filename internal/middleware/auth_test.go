package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grupoalpa/eventos-ops/internal/auth"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.Service) {
	t.Helper()
	authService, err := auth.NewService()
	require.NoError(t, err)
	return NewAuthMiddleware(authService), authService
}

func tokenFor(t *testing.T, authService *auth.Service, role models.Role) string {
	t.Helper()
	token, err := authService.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "operador",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	middleware, _ := newTestMiddleware(t)
	handler := middleware.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	middleware, _ := newTestMiddleware(t)
	handler := middleware.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	middleware, authService := newTestMiddleware(t)

	var claims *models.Claims
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleViewer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "operador", claims.Username)
	assert.Equal(t, models.RoleViewer, claims.Role)
}

func TestAuthenticate_SkipsLoginAndHealth(t *testing.T) {
	middleware, _ := newTestMiddleware(t)
	handler := middleware.Authenticate(okHandler())

	for _, path := range []string{"/api/auth/login", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestRequireMutator(t *testing.T) {
	middleware, authService := newTestMiddleware(t)
	handler := middleware.Authenticate(middleware.RequireMutator(okHandler()))

	tests := []struct {
		role     models.Role
		expected int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleCoordinator, http.StatusOK},
		{models.RoleViewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/assignations", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, tt.role))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRequireMutator_NoContext(t *testing.T) {
	middleware, _ := newTestMiddleware(t)
	handler := middleware.RequireMutator(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/assignations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
