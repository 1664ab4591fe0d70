package middleware

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/akulinichev/reminderhub/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Decision is the tri-state outcome of the dashboard gate.
type Decision int

const (
	Deny Decision = iota
	DenyWithChallenge
	Allow
)

const basicPrefix = "Basic "

// DecideDashboardAccess evaluates the ordered checks of the dashboard gate:
//
//  1. an authenticated principal is allowed through when configuration says
//     authenticated users get the dashboard;
//  2. with Basic auth disabled everything else is locked out;
//  3. otherwise the Basic header is required — absent means challenge the
//     browser, undecodable or malformed means a final deny, and decoded
//     credentials must match the configured pair exactly.
//
// The gate always resolves to a Decision; a panic while decoding counts as
// a deny rather than surfacing to the caller.
func DecideDashboardAccess(cfg *config.DashboardConfig, hasPrincipal bool, authHeader string) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Dashboard gate panic treated as deny: %v", r)
			decision = Deny
		}
	}()

	if hasPrincipal && cfg.AllowAuthenticatedUsers {
		return Allow
	}

	if !cfg.EnableBasicAuth {
		return Deny
	}

	if !strings.HasPrefix(authHeader, basicPrefix) {
		return DenyWithChallenge
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, basicPrefix))
	if err != nil {
		return Deny
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 {
		return Deny
	}

	if parts[0] == cfg.Username && parts[1] == cfg.Password {
		return Allow
	}
	return Deny
}

// DashboardAuth guards the dashboard routes. Evaluated per request; holds
// no session state of its own.
func DashboardAuth(cfg *config.DashboardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, hasPrincipal := c.Get(PrincipalKey)

		switch DecideDashboardAccess(cfg, hasPrincipal, c.GetHeader("Authorization")) {
		case Allow:
			c.Next()
		case DenyWithChallenge:
			c.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", cfg.Name))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		default:
			status := http.StatusUnauthorized
			if !cfg.EnableBasicAuth {
				// Hard lockout: the dashboard is principal-only.
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "access denied"})
		}
	}
}
