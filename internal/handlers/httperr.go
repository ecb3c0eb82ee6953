package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
)

// respondError translates the error taxonomy into an HTTP response. Storage
// failures never leak internals: the client gets a correlation id that the
// log line also carries.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	switch kind {
	case apperrors.KindValidation, apperrors.KindInsufficientStock:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(kind)})
	case apperrors.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "kind": string(kind)})
	case apperrors.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": string(kind)})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": string(kind)})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": string(kind)})
	default:
		id := uuid.NewString()
		logger.Error("internal error",
			zap.String("correlation_id", id),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "internal error",
			"kind":           string(apperrors.KindStorage),
			"correlation_id": id,
		})
	}
}

// parseID reads a positive integer path parameter, responding 400 itself
// when it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid " + name,
			"kind":  string(apperrors.KindValidation),
		})
		return 0, false
	}
	return uint(id), true
}
