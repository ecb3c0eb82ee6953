package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/users"
)

// AuthHandler serves login and (when enabled) self-registration.
type AuthHandler struct {
	users  *users.Service
	logger *zap.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *users.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: svc, logger: logger}
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var in users.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	res, err := h.users.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Register creates an account. Only routed when ALLOW_REGISTRATION is on;
// otherwise accounts are created by rrhh through the users endpoints.
func (h *AuthHandler) Register(c *gin.Context) {
	var in users.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
