package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mess_finder/internal/middleware"
	"mess_finder/internal/model"
	"mess_finder/internal/repository"
	"mess_finder/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type stubDenylist struct {
	revoked map[string]bool
	err     error
}

func (s *stubDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (s *stubDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func buildRouter(denylist repository.TokenDenylist, extra gin.HandlerFunc, allowedRoles ...string) *gin.Engine {
	jwtUtil := utils.NewJWTUtil(testSecret, time.Hour)
	router := gin.New()
	handlers := []gin.HandlerFunc{middleware.JWTAuthMiddleware(jwtUtil, denylist, allowedRoles...)}
	if extra != nil {
		handlers = append(handlers, extra)
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, err := middleware.PrincipalFrom(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "role": p.Role})
	})
	router.GET("/protected", handlers...)
	return router
}

func tokenFor(t *testing.T, id int, role string, issuedAt time.Time) string {
	t.Helper()
	tok, err := utils.NewJWTUtil(testSecret, time.Hour).GenerateTokenAt(id, role, issuedAt)
	require.NoError(t, err)
	return tok
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestJWTAuthMiddleware_Outcomes(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		header     string
		roles      []string
		wantStatus int
		wantError  string
	}{
		{"absent", "", []string{model.RoleOwner}, http.StatusUnauthorized, "Authorization token required"},
		{"malformed header", "Token abc", []string{model.RoleOwner}, http.StatusUnauthorized, "Invalid authorization header format"},
		{"invalid", "Bearer not.a.token", []string{model.RoleOwner}, http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + tokenFor(t, 3, model.RoleOwner, now.Add(-2*time.Hour)), []string{model.RoleOwner}, http.StatusUnauthorized, "Token expired"},
		{"wrong role", "Bearer " + tokenFor(t, 3, model.RoleAdmin, now), []string{model.RoleOwner}, http.StatusForbidden, "You do not have permission to access this resource"},
		{"authorized", "Bearer " + tokenFor(t, 3, model.RoleOwner, now), []string{model.RoleOwner}, http.StatusOK, ""},
		{"any role", "bearer " + tokenFor(t, 3, model.RoleAdmin, now), nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(buildRouter(nil, nil, tt.roles...), tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorOf(t, w))
			}
		})
	}
}

func TestJWTAuthMiddleware_SetsPrincipal(t *testing.T) {
	w := doRequest(buildRouter(nil, nil), "Bearer "+tokenFor(t, 42, model.RoleOwner, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"role":"owner"}`, w.Body.String())
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	jwtUtil := utils.NewJWTUtil(testSecret, time.Hour)
	tok := tokenFor(t, 3, model.RoleOwner, time.Now())
	claims, err := jwtUtil.ValidateToken(tok)
	require.NoError(t, err)

	router := buildRouter(&stubDenylist{revoked: map[string]bool{claims.ID: true}}, nil)
	w := doRequest(router, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", errorOf(t, w))

	router = buildRouter(&stubDenylist{err: errors.New("redis down")}, nil)
	w = doRequest(router, "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoleMiddleware(t *testing.T) {
	ownerTok := "Bearer " + tokenFor(t, 3, model.RoleOwner, time.Now())
	adminTok := "Bearer " + tokenFor(t, 1, model.RoleAdmin, time.Now())

	assert.Equal(t, http.StatusOK, doRequest(buildRouter(nil, middleware.OwnerMiddleware()), ownerTok).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(buildRouter(nil, middleware.OwnerMiddleware()), adminTok).Code)
	assert.Equal(t, http.StatusOK, doRequest(buildRouter(nil, middleware.AdminMiddleware()), adminTok).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(buildRouter(nil, middleware.AdminMiddleware()), ownerTok).Code)
}

func TestRoleMiddleware_WithoutAuth(t *testing.T) {
	router := gin.New()
	router.GET("/protected", middleware.AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", middleware.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", middleware.BearerToken("BEARER   abc"))
	assert.Equal(t, "", middleware.BearerToken("Basic abc"))
	assert.Equal(t, "", middleware.BearerToken("Bearer"))
	assert.Equal(t, "", middleware.BearerToken(""))
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(middleware.CORSMiddleware("http://localhost:3000"))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
