package core

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth admits requests carrying a valid token for an existing account
// and stores the resolved Identity on the context. Every rejection gets the
// same 401 body so callers cannot tell which step failed.
func RequireAuth(resolver IdentityResolver, carrier *SessionCarrier, metrics *Metrics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := carrier.Extract(c.Request)

		id, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				metrics.RecordAuth("guard", outcomeRejected)
				logger.Debug("request rejected by guard", "error", err.Error(), "request_id", requestID(c))
			} else {
				metrics.RecordAuth("guard", outcomeError)
				LogError(logger, "identity resolution failed", err, "request_id", requestID(c))
			}
			respondError(c, http.StatusUnauthorized, errCodeUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		metrics.RecordAuth("guard", outcomeSuccess)
		c.Set(identityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by RequireAuth.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
