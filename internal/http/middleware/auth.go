package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

const (
	ctxKeyUser   = "user"
	ctxKeyUserID = "userID"
)

// Authenticator resolves an access token to an active account.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header. The
// resolved user is stored for CurrentUser; the decimal id is also stored
// under "userID" for key functions that work on strings.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "not authenticated")
			return
		}
		u, err := a.Authenticate(c.Request.Context(), raw)
		switch {
		case errors.Is(err, services.ErrInactiveUser):
			abortJSON(c, http.StatusForbidden, "forbidden", "inactive user")
			return
		case err != nil:
			unauthorized(c, "could not validate credentials")
			return
		}
		c.Set(ctxKeyUser, u)
		c.Set(ctxKeyUserID, strconv.FormatUint(uint64(u.ID), 10))
		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated user
// holds one of roles. It must run after Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "not authenticated")
			return
		}
		if _, ok := allowed[u.Role]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "not enough permissions")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

// CurrentUserID is CurrentUser's id, or 0 when unauthenticated.
func CurrentUserID(c *gin.Context) uint {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}
	return 0
}

func bearerToken(h string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	abortJSON(c, http.StatusUnauthorized, "unauthorized", msg)
}
