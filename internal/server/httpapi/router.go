// Package httpapi exposes registration, login and the protected resources
// over HTTP with gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// StaticDir, when set, is served under /static.
	StaticDir string
}

// NewRouter constructs the gin engine with routes wired.
func NewRouter(accounts Accounts, g Authorizer, log logging.Logger, opts RouterOptions) *gin.Engine {
	if log == nil {
		log = logging.Nop{}
	}
	log = log.With("module", "http")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{accounts: accounts}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	api := r.Group("/api")
	api.Use(AuthorizeMiddleware(g, log))
	{
		api.GET("/pizza", h.pizza)
		api.GET("/me", h.me)
	}

	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	return r
}
