package auth

import (
	"alumni-net/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(issuer *TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(issuer))
	router.GET("/me", func(c *gin.Context) {
		id, ok := UserIDFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, string(id))
	})
	router.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := newProtectedRouter(issuer)
	token, err := issuer.GenerateToken("alice", []string{"user"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		value    string
		wantCode int
	}{
		{"custom header", TokenHeader, token, http.StatusOK},
		{"bearer header", "Authorization", "Bearer " + token, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"tampered token", TokenHeader, token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			req.Equal(tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				req.Equal("alice", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := newProtectedRouter(issuer)

	for roles, wantCode := range map[string]int{"user": http.StatusForbidden, "admin": http.StatusNoContent} {
		token, err := issuer.GenerateToken("someone", []string{"user", roles})
		req.NoError(err)

		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		r.Header.Set(TokenHeader, token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		req.Equal(wantCode, w.Code, roles)
	}
}
