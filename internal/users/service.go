package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/auth"
	"tienda-backoffice/internal/models"
)

// Service manages accounts, roles and authentication.
type Service struct {
	db     *gorm.DB
	issuer *auth.TokenIssuer
	logger *zap.Logger
}

// NewService creates a users service.
func NewService(db *gorm.DB, issuer *auth.TokenIssuer, logger *zap.Logger) *Service {
	return &Service{db: db, issuer: issuer, logger: logger}
}

// LoginInput is the login payload.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the signed token and the authenticated user.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials and issues a bearer token carrying the user's
// role names. Inactive accounts and bad passwords both come back as
// unauthorized; the caller cannot tell which.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	const op = "users.Login"
	if in.Username == "" || in.Password == "" {
		return nil, apperrors.Validation(op, "username and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").
		Where("username = ?", in.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Storage(op, err)
	}
	if !user.Active {
		s.logger.Warn("login on inactive account", zap.String("username", in.Username))
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.logger.Warn("failed login", zap.String("username", in.Username))
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		// a corrupt permissions column is a data problem we refuse to
		// paper over
		if _, err := auth.ParsePermissions(role.Permissions); err != nil {
			return nil, apperrors.Storage(op, fmt.Errorf("role %q: %w", role.Name, err))
		}
		roleNames = append(roleNames, role.Name)
	}

	token, err := s.issuer.Generate(user.ID, user.Username, roleNames)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	user.LastLogin = &now

	s.logger.Info("login",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Strings("roles", roleNames))
	return &LoginResult{Token: token, User: &user}, nil
}

// UserInput is the user creation/update payload.
type UserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in UserInput) (*models.User, error) {
	const op = "users.Register"
	if in.Username == "" {
		return nil, apperrors.Validation(op, "username is required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.Validation(op, "password must be at least 8 characters")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", in.Username).Count(&count).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	if count > 0 {
		return nil, apperrors.Conflict(op, fmt.Sprintf("username %q is taken", in.Username))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return &user, nil
}

// GetByID returns a user with their roles.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	const op = "users.GetByID"
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("user %d", id))
		}
		return nil, apperrors.Storage(op, err)
	}
	return &user, nil
}

// List returns every account with its roles.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Roles").Order("username asc").Find(&users).Error
	if err != nil {
		return nil, apperrors.Storage("users.List", err)
	}
	return users, nil
}

// Update changes a user's profile fields. Password is only touched when a
// new one is supplied.
func (s *Service) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	const op = "users.Update"
	updates := map[string]interface{}{
		"email":      in.Email,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"phone":      in.Phone,
	}
	if in.Password != "" {
		if len(in.Password) < 8 {
			return nil, apperrors.Validation(op, "password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Storage(op, err)
		}
		updates["password_hash"] = string(hash)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("user %d", id))
	}
	return s.GetByID(ctx, id)
}

// SetActive enables or disables an account. Disabled accounts cannot log in;
// existing tokens expire on their own.
func (s *Service) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	const op = "users.SetActive"
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("user %d", id))
	}
	s.logger.Info("account active flag changed",
		zap.Uint("user_id", id), zap.Bool("active", active))
	return s.GetByID(ctx, id)
}

// RoleInput is the role creation/update payload.
type RoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// CreateRole stores a role with its JSON-encoded capability list.
func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*models.Role, error) {
	const op = "users.CreateRole"
	if in.Name == "" {
		return nil, apperrors.Validation(op, "role name is required")
	}
	encoded, err := auth.EncodePermissions(in.Permissions)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	role := models.Role{Name: in.Name, Description: in.Description, Permissions: encoded}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &role, nil
}

// ListRoles returns every role.
func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Order("name asc").Find(&roles).Error
	if err != nil {
		return nil, apperrors.Storage("users.ListRoles", err)
	}
	return roles, nil
}

// UpdateRole replaces a role's description and capability list.
func (s *Service) UpdateRole(ctx context.Context, id uint, in RoleInput) (*models.Role, error) {
	const op = "users.UpdateRole"
	encoded, err := auth.EncodePermissions(in.Permissions)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	updates := map[string]interface{}{
		"description": in.Description,
		"permissions": encoded,
	}
	if in.Name != "" {
		updates["name"] = in.Name
	}
	res := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("role %d", id))
	}
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &role, nil
}

// DeleteRole removes a role and revokes it from every user holding it.
func (s *Service) DeleteRole(ctx context.Context, id uint) error {
	const op = "users.DeleteRole"
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Role{}, id)
		if res.Error != nil {
			return apperrors.Storage(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound(op, fmt.Sprintf("role %d", id))
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return apperrors.Storage(op, err)
		}
		s.logger.Info("role deleted", zap.Uint("role_id", id))
		return nil
	})
}

// AssignRole grants a role to a user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID uint) (*models.User, error) {
	const op = "users.AssignRole"
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("role %d", roleID))
		}
		return nil, apperrors.Storage(op, err)
	}
	err = s.db.WithContext(ctx).Model(user).Association("Roles").Append(&role)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	s.logger.Info("role assigned",
		zap.Uint("user_id", userID), zap.String("role", role.Name))
	return s.GetByID(ctx, userID)
}

// RemoveRole revokes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID uint) (*models.User, error) {
	const op = "users.RemoveRole"
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("role %d", roleID))
		}
		return nil, apperrors.Storage(op, err)
	}
	err = s.db.WithContext(ctx).Model(user).Association("Roles").Delete(&role)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return s.GetByID(ctx, userID)
}
