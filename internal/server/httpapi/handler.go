package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
)

// Accounts is the account flow the handlers call into.
type Accounts interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Authorizer decides whether a bearer token admits a request.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (strategy.Outcome, *auth.Claims)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type handlers struct {
	accounts Accounts
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid json")
		return
	}

	token, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		case errors.Is(err, common.ErrAlreadyExists):
			respondError(c, http.StatusConflict, codeConflict, "email already registered")
		default:
			respondError(c, http.StatusInternalServerError, codeInternal, "internal error")
		}
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "email and password are required")
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "invalid email or password")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *handlers) pizza(c *gin.Context) {
	claims, _ := claimsFrom(c)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Enjoy your Pizza Time %s!", claims.Email)})
}

func (h *handlers) me(c *gin.Context) {
	claims, _ := claimsFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"userid": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
	})
}
