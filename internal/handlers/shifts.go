package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/shifts"
)

// ShiftHandler serves shift scheduling and attendance records.
type ShiftHandler struct {
	shifts *shifts.Service
	logger *zap.Logger
}

// NewShiftHandler creates a shift handler.
func NewShiftHandler(svc *shifts.Service, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{shifts: svc, logger: logger}
}

// CreateShift schedules a shift.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var in shifts.ShiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("shifts.CreateShift", err.Error()))
		return
	}
	shift, err := h.shifts.CreateShift(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// ListShifts returns shifts. ?user_id=N filters to one employee.
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("shifts.ListShifts", "invalid user_id"))
			return
		}
		out, err := h.shifts.ListShiftsByUser(ctx, uint(id))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out, err := h.shifts.ListShifts(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateShift replaces a shift's schedule.
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in shifts.ShiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("shifts.UpdateShift", err.Error()))
		return
	}
	shift, err := h.shifts.UpdateShift(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// DeleteShift removes a scheduled shift.
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.shifts.DeleteShift(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shift deleted"})
}

// RecordAttendance stores a clock-in record.
func (h *ShiftHandler) RecordAttendance(c *gin.Context) {
	var in shifts.AttendanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("shifts.RecordAttendance", err.Error()))
		return
	}
	att, err := h.shifts.RecordAttendance(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, att)
}

// ListAttendance returns attendance records. ?user_id=N filters to one
// employee.
func (h *ShiftHandler) ListAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("shifts.ListAttendance", "invalid user_id"))
			return
		}
		out, err := h.shifts.ListAttendanceByUser(ctx, uint(id))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out, err := h.shifts.ListAttendance(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateAttendance corrects an attendance record.
func (h *ShiftHandler) UpdateAttendance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in shifts.AttendanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("shifts.UpdateAttendance", err.Error()))
		return
	}
	att, err := h.shifts.UpdateAttendance(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, att)
}
