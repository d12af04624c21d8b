package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
)

const (
	ctxClaimsKey    = "claims"
	ctxRequestIDKey = "request_id"
)

// RequestIDMiddleware keeps a well-formed incoming X-Request-ID or mints a
// new one, and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

// LoggingMiddleware writes one line per request.
func LoggingMiddleware(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(ctxRequestIDKey),
		)
	}
}

// AuthorizeMiddleware admits a request only when the bearer token in the
// Authorization header passes the gate. Token problems and unknown
// accounts are 401, banned accounts 403, store failures 500.
func AuthorizeMiddleware(g Authorizer, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		out, claims := g.Authorize(c.Request.Context(), token)
		switch out.Kind {
		case strategy.Authenticated:
			c.Set(ctxClaimsKey, claims)
			c.Next()
		case strategy.Rejected:
			if out.Reason == strategy.ReasonBanned {
				respondError(c, http.StatusForbidden, codeForbidden, "account is banned")
			} else {
				respondError(c, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
			}
			c.Abort()
		default:
			if common.IsTokenError(out.Err) {
				respondError(c, http.StatusUnauthorized, codeUnauthorized, tokenMessage(out.Err))
			} else {
				log.Error(c.Request.Context(), "authorize", "error", out.Err, "request_id", c.GetString(ctxRequestIDKey))
				respondError(c, http.StatusInternalServerError, codeInternal, "internal error")
			}
			c.Abort()
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, common.ErrTokenMalformed):
		return "malformed token"
	default:
		return "invalid token"
	}
}

// claimsFrom returns the claims stored by AuthorizeMiddleware.
func claimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
