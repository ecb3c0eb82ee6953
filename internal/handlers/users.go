package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/users"
)

// UserHandler serves account and role administration.
type UserHandler struct {
	users  *users.Service
	logger *zap.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc *users.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: svc, logger: logger}
}

// List returns every account.
func (h *UserHandler) List(c *gin.Context) {
	out, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one account.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create adds an account.
func (h *UserHandler) Create(c *gin.Context) {
	var in users.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("users.Create", err.Error()))
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Update changes an account's profile.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in users.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("users.Update", err.Error()))
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type activeInput struct {
	Active bool `json:"active"`
}

// SetActive enables or disables an account.
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in activeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("users.SetActive", err.Error()))
		return
	}
	user, err := h.users.SetActive(c.Request.Context(), id, in.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListRoles returns every role.
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.users.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// CreateRole adds a role.
func (h *UserHandler) CreateRole(c *gin.Context) {
	var in users.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("users.CreateRole", err.Error()))
		return
	}
	role, err := h.users.CreateRole(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// UpdateRole replaces a role's description and capabilities.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in users.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("users.UpdateRole", err.Error()))
		return
	}
	role, err := h.users.UpdateRole(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// DeleteRole removes a role, revoking it from every holder.
func (h *UserHandler) DeleteRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteRole(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role deleted"})
}

// AssignRole grants a role to a user.
func (h *UserHandler) AssignRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseID(c, "roleId")
	if !ok {
		return
	}
	user, err := h.users.AssignRole(c.Request.Context(), userID, roleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RemoveRole revokes a role from a user.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseID(c, "roleId")
	if !ok {
		return
	}
	user, err := h.users.RemoveRole(c.Request.Context(), userID, roleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
