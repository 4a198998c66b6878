package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamforge/backend/internal/auth"
)

func TestJWTPopulatesIdentityContext(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	token, err := jwtService.Generate(userID, "dev@example.com", true)
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWT(jwtService))
	r.GET("/whoami", func(c *gin.Context) {
		// Read through the auth package constants: the keys the middleware
		// writes and the keys handlers read must be the same declarations.
		c.JSON(http.StatusOK, gin.H{
			"user_id":        c.MustGet(auth.ContextUserID).(uuid.UUID),
			"email":          c.MustGet(auth.ContextUserEmail).(string),
			"is_super_admin": c.GetBool(auth.ContextSuperAdmin),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "dev@example.com")
	assert.Contains(t, w.Body.String(), `"is_super_admin":true`)
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	r := gin.New()
	r.Use(JWT(jwtService))
	r.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc123",
		"bogus token":  "Bearer not-a-jwt",
		"wrong secret": "Bearer " + mustToken(t, auth.NewJWTService("other-secret", 1)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireSuperAdminGatesOnFlag(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	regular, err := jwtService.Generate(uuid.New(), "member@example.com", false)
	require.NoError(t, err)
	operator, err := jwtService.Generate(uuid.New(), "ops@example.com", true)
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWT(jwtService))
	r.GET("/admin", RequireSuperAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for token, want := range map[string]int{
		regular:  http.StatusForbidden,
		operator: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func mustToken(t *testing.T, svc *auth.JWTService) string {
	t.Helper()
	token, err := svc.Generate(uuid.New(), "someone@example.com", false)
	require.NoError(t, err)
	return token
}
