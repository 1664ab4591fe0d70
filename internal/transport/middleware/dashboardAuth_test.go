package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akulinichev/reminderhub/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicHeader(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func gateConfig() *config.DashboardConfig {
	return &config.DashboardConfig{
		Enabled:                 true,
		Path:                    "/dashboard",
		Name:                    "ReminderHub",
		Username:                "admin",
		Password:                "correctpass",
		EnableBasicAuth:         true,
		AllowAuthenticatedUsers: true,
	}
}

func TestDecideDashboardAccess(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*config.DashboardConfig)
		hasPrincipal bool
		header       string
		want         Decision
	}{
		{
			name:         "principal allowed regardless of basic auth settings",
			mutate:       func(c *config.DashboardConfig) { c.EnableBasicAuth = false },
			hasPrincipal: true,
			want:         Allow,
		},
		{
			name:         "principal denied when config does not allow authenticated users",
			mutate:       func(c *config.DashboardConfig) { c.AllowAuthenticatedUsers = false; c.EnableBasicAuth = false },
			hasPrincipal: true,
			want:         Deny,
		},
		{
			name:   "basic auth disabled locks out anonymous requests",
			mutate: func(c *config.DashboardConfig) { c.EnableBasicAuth = false },
			want:   Deny,
		},
		{
			name: "missing header gets a challenge",
			want: DenyWithChallenge,
		},
		{
			name:   "bearer header instead of basic gets a challenge",
			header: "Bearer some-token",
			want:   DenyWithChallenge,
		},
		{
			name:   "undecodable base64 is a final deny",
			header: "Basic %%%not-base64%%%",
			want:   Deny,
		},
		{
			name:   "decoded value without colon is a final deny",
			header: basicHeader("admincorrectpass"),
			want:   Deny,
		},
		{
			name:   "decoded value with two colons is a final deny",
			header: basicHeader("admin:correct:pass"),
			want:   Deny,
		},
		{
			name:   "wrong password denied",
			header: basicHeader("admin:wrongpass"),
			want:   Deny,
		},
		{
			name:   "wrong username denied",
			header: basicHeader("root:correctpass"),
			want:   Deny,
		},
		{
			name:   "credentials are case-sensitive",
			header: basicHeader("Admin:correctpass"),
			want:   Deny,
		},
		{
			name:   "exact credentials allowed",
			header: basicHeader("admin:correctpass"),
			want:   Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := gateConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			assert.Equal(t, tt.want, DecideDashboardAccess(cfg, tt.hasPrincipal, tt.header))
		})
	}
}

func newGateRouter(cfg *config.DashboardConfig, withPrincipal bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if withPrincipal {
		router.Use(func(c *gin.Context) {
			c.Set(PrincipalKey, "alice")
			c.Next()
		})
	}
	group := router.Group(cfg.Path)
	group.Use(DashboardAuth(cfg))
	group.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestDashboardAuthMiddleware(t *testing.T) {
	t.Run("missing header responds 401 with challenge", func(t *testing.T) {
		router := newGateRouter(gateConfig(), false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
	})

	t.Run("wrong credentials respond 401 without challenge", func(t *testing.T) {
		router := newGateRouter(gateConfig(), false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		req.Header.Set("Authorization", basicHeader("admin:wrongpass"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("correct credentials pass through", func(t *testing.T) {
		router := newGateRouter(gateConfig(), false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		req.Header.Set("Authorization", basicHeader("admin:correctpass"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("principal passes without basic header", func(t *testing.T) {
		router := newGateRouter(gateConfig(), true)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("basic auth disabled responds 403 without challenge", func(t *testing.T) {
		cfg := gateConfig()
		cfg.EnableBasicAuth = false
		router := newGateRouter(cfg, false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		req.Header.Set("Authorization", basicHeader("admin:correctpass"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("realm carries the dashboard name", func(t *testing.T) {
		cfg := gateConfig()
		cfg.Name = "OpsPanel"
		router := newGateRouter(cfg, false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/jobs", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("WWW-Authenticate"), "OpsPanel")
	})
}
