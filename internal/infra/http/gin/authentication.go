package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"tourway/internal/app/services/auth"
	domainauth "tourway/internal/domain/auth"
	domainuser "tourway/internal/domain/user"
)

const principalContextKey = "tourway.principal"

type principal struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p principal) IsAdmin() bool {
	return p.Role == string(domainuser.RoleAdmin)
}

type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

// Handle resolves a bearer token into a request principal. Requests without
// a valid token continue anonymously; the route handlers decide what needs
// authentication.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && !errors.Is(err, auth.ErrSessionExpired) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	usr := resolved.User
	setPrincipal(c, principal{
		ID:        string(usr.ID),
		Email:     usr.Email,
		Name:      usr.Name,
		Role:      string(usr.Role),
		Token:     token,
		CreatedAt: usr.CreatedAt,
		UpdatedAt: usr.UpdatedAt,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireUser(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	p, ok := requireUser(c)
	if !ok {
		return principal{}, false
	}
	if !p.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
