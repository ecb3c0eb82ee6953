package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
)

// ClientHandler serves the customer registry.
type ClientHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewClientHandler creates a client handler.
func NewClientHandler(db *gorm.DB, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{db: db, logger: logger}
}

type clientInput struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	State      string `json:"state"`
	Frequent   bool   `json:"frequent"`
}

// List returns all clients. ?frequent=true filters to repeat customers.
func (h *ClientHandler) List(c *gin.Context) {
	q := h.db.Order("last_name asc, first_name asc")
	if c.Query("frequent") == "true" {
		q = q.Where("frequent = ?", true)
	}
	var clients []models.Client
	if err := q.Find(&clients).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("clients.List", err))
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get returns one client.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, h.logger, apperrors.NotFound("clients.Get", "client"))
			return
		}
		respondError(c, h.logger, apperrors.Storage("clients.Get", err))
		return
	}
	c.JSON(http.StatusOK, client)
}

// Create registers a client.
func (h *ClientHandler) Create(c *gin.Context) {
	var in clientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("clients.Create", err.Error()))
		return
	}
	client := models.Client{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Phone:      in.Phone,
		Street:     in.Street,
		District:   in.District,
		PostalCode: in.PostalCode,
		City:       in.City,
		State:      in.State,
		Frequent:   in.Frequent,
	}
	if err := h.db.Create(&client).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("clients.Create", err))
		return
	}
	c.JSON(http.StatusCreated, client)
}

// Update replaces a client's contact details.
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in clientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("clients.Update", err.Error()))
		return
	}
	res := h.db.Model(&models.Client{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"phone":       in.Phone,
		"street":      in.Street,
		"district":    in.District,
		"postal_code": in.PostalCode,
		"city":        in.City,
		"state":       in.State,
		"frequent":    in.Frequent,
	})
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("clients.Update", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("clients.Update", "client"))
		return
	}
	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("clients.Update", err))
		return
	}
	c.JSON(http.StatusOK, client)
}

// Delete removes a client.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Client{}, id)
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("clients.Delete", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("clients.Delete", "client"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}
