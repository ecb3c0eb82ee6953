package shifts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
)

// Service manages scheduled shifts and actual attendance records. Shifts are
// what the roster plans; attendances are the clock-ins that happened.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a shifts service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

var shiftStatuses = map[string]bool{
	models.ShiftActive:    true,
	models.ShiftCompleted: true,
	models.ShiftAbsent:    true,
}

var attendanceStatuses = map[string]bool{
	models.AttPresent:   true,
	models.AttAbsent:    true,
	models.AttLate:      true,
	models.AttLeftEarly: true,
}

// ShiftInput is the shift creation/update payload.
type ShiftInput struct {
	UserID  uint   `json:"user_id"`
	Date    string `json:"date"`
	TimeIn  string `json:"time_in"`
	TimeOut string `json:"time_out"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

func (s *Service) validateShift(op string, in ShiftInput) error {
	if in.UserID == 0 {
		return apperrors.Validation(op, "user_id is required")
	}
	if in.Date == "" {
		return apperrors.Validation(op, "date is required")
	}
	if in.Status != "" && !shiftStatuses[in.Status] {
		return apperrors.Validation(op, fmt.Sprintf("unknown shift status %q", in.Status))
	}
	var user models.User
	if err := s.db.First(&user, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(op, fmt.Sprintf("user %d", in.UserID))
		}
		return apperrors.Storage(op, err)
	}
	return nil
}

// CreateShift schedules a shift. Status defaults to activo.
func (s *Service) CreateShift(ctx context.Context, in ShiftInput) (*models.Shift, error) {
	const op = "shifts.CreateShift"
	if err := s.validateShift(op, in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.ShiftActive
	}
	shift := models.Shift{
		UserID:  in.UserID,
		Date:    in.Date,
		TimeIn:  in.TimeIn,
		TimeOut: in.TimeOut,
		Status:  in.Status,
		Notes:   in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&shift).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	s.logger.Info("shift scheduled",
		zap.Uint("shift_id", shift.ID),
		zap.Uint("user_id", shift.UserID),
		zap.String("date", shift.Date))
	return &shift, nil
}

// GetShift returns one shift.
func (s *Service) GetShift(ctx context.Context, id uint) (*models.Shift, error) {
	const op = "shifts.GetShift"
	var shift models.Shift
	if err := s.db.WithContext(ctx).First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("shift %d", id))
		}
		return nil, apperrors.Storage(op, err)
	}
	return &shift, nil
}

// ListShifts returns all shifts, most recent date first.
func (s *Service) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var shifts []models.Shift
	err := s.db.WithContext(ctx).Order("date desc, time_in asc").Find(&shifts).Error
	if err != nil {
		return nil, apperrors.Storage("shifts.ListShifts", err)
	}
	return shifts, nil
}

// ListShiftsByUser returns one employee's shifts, most recent date first.
func (s *Service) ListShiftsByUser(ctx context.Context, userID uint) ([]models.Shift, error) {
	var shifts []models.Shift
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date desc, time_in asc").Find(&shifts).Error
	if err != nil {
		return nil, apperrors.Storage("shifts.ListShiftsByUser", err)
	}
	return shifts, nil
}

// UpdateShift replaces a shift's schedule fields.
func (s *Service) UpdateShift(ctx context.Context, id uint, in ShiftInput) (*models.Shift, error) {
	const op = "shifts.UpdateShift"
	if err := s.validateShift(op, in); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Shift{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_id":  in.UserID,
			"date":     in.Date,
			"time_in":  in.TimeIn,
			"time_out": in.TimeOut,
			"status":   in.Status,
			"notes":    in.Notes,
		})
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("shift %d", id))
	}
	return s.GetShift(ctx, id)
}

// DeleteShift removes a scheduled shift.
func (s *Service) DeleteShift(ctx context.Context, id uint) error {
	const op = "shifts.DeleteShift"
	res := s.db.WithContext(ctx).Delete(&models.Shift{}, id)
	if res.Error != nil {
		return apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(op, fmt.Sprintf("shift %d", id))
	}
	return nil
}

// AttendanceInput is the attendance creation/update payload.
type AttendanceInput struct {
	UserID  uint   `json:"user_id"`
	Date    string `json:"date"`
	TimeIn  string `json:"time_in"`
	TimeOut string `json:"time_out"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// RecordAttendance stores a clock-in record for an employee.
func (s *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (*models.Attendance, error) {
	const op = "shifts.RecordAttendance"
	if in.UserID == 0 {
		return nil, apperrors.Validation(op, "user_id is required")
	}
	if in.Date == "" {
		return nil, apperrors.Validation(op, "date is required")
	}
	if in.Status == "" {
		in.Status = models.AttPresent
	}
	if !attendanceStatuses[in.Status] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown attendance status %q", in.Status))
	}
	att := models.Attendance{
		UserID:  in.UserID,
		Date:    in.Date,
		TimeIn:  in.TimeIn,
		TimeOut: in.TimeOut,
		Status:  in.Status,
		Notes:   in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&att).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &att, nil
}

// ListAttendance returns all attendance records, most recent date first.
func (s *Service) ListAttendance(ctx context.Context) ([]models.Attendance, error) {
	var atts []models.Attendance
	err := s.db.WithContext(ctx).Order("date desc, time_in asc").Find(&atts).Error
	if err != nil {
		return nil, apperrors.Storage("shifts.ListAttendance", err)
	}
	return atts, nil
}

// ListAttendanceByUser returns one employee's attendance records.
func (s *Service) ListAttendanceByUser(ctx context.Context, userID uint) ([]models.Attendance, error) {
	var atts []models.Attendance
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date desc, time_in asc").Find(&atts).Error
	if err != nil {
		return nil, apperrors.Storage("shifts.ListAttendanceByUser", err)
	}
	return atts, nil
}

// UpdateAttendance corrects an attendance record, typically adding the
// clock-out time.
func (s *Service) UpdateAttendance(ctx context.Context, id uint, in AttendanceInput) (*models.Attendance, error) {
	const op = "shifts.UpdateAttendance"
	if in.Status != "" && !attendanceStatuses[in.Status] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown attendance status %q", in.Status))
	}
	updates := map[string]interface{}{
		"time_in":  in.TimeIn,
		"time_out": in.TimeOut,
		"notes":    in.Notes,
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}
	res := s.db.WithContext(ctx).Model(&models.Attendance{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("attendance %d", id))
	}
	var att models.Attendance
	if err := s.db.WithContext(ctx).First(&att, id).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &att, nil
}
