package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/auth"
	"tienda-backoffice/internal/database"
	"tienda-backoffice/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	issuer := auth.NewTokenIssuer("test-secret")
	return NewService(db, issuer, zaptest.NewLogger(t)), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, UserInput{
		Username: "carla",
		Password: "contrasena1",
		Email:    "carla@tienda.mx",
	})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEqual(t, "contrasena1", user.PasswordHash, "password must never be stored in the clear")

	res, err := svc.Login(ctx, LoginInput{Username: "carla", Password: "contrasena1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	require.NotNil(t, res.User.LastLogin)

	claims, err := auth.NewTokenIssuer("test-secret").Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "carla", claims.Username)
}

func TestLoginRejections(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, UserInput{Username: "diego", Password: "contrasena1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "diego", Password: "equivocada"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = svc.Login(ctx, LoginInput{Username: "nadie", Password: "contrasena1"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// deactivated accounts get the same answer as a bad password
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "diego").
		Update("active", false).Error)
	_, err = svc.Login(ctx, LoginInput{Username: "diego", Password: "contrasena1"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = svc.Login(ctx, LoginInput{Username: "diego"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestLoginFailsOnCorruptRolePermissions(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, UserInput{Username: "sofia", Password: "contrasena1"})
	require.NoError(t, err)

	role := models.Role{Name: "vendedor", Permissions: `{"broken"`}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Model(user).Association("Roles").Append(&role))

	_, err = svc.Login(ctx, LoginInput{Username: "sofia", Password: "contrasena1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStorage, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "vendedor")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, UserInput{Password: "contrasena1"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Register(ctx, UserInput{Username: "ana", Password: "corta"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Register(ctx, UserInput{Username: "ana", Password: "contrasena1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, UserInput{Username: "ana", Password: "contrasena2"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRoleAssignment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, UserInput{Username: "mario", Password: "contrasena1"})
	require.NoError(t, err)

	role, err := svc.CreateRole(ctx, RoleInput{
		Name:        "vendedor",
		Description: "mostrador",
		Permissions: auth.PermissionsForRole("vendedor"),
	})
	require.NoError(t, err)

	perms, err := auth.ParsePermissions(role.Permissions)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{auth.CapSales, auth.CapClients, auth.CapProducts}, perms)

	withRole, err := svc.AssignRole(ctx, user.ID, role.ID)
	require.NoError(t, err)
	require.Len(t, withRole.Roles, 1)
	assert.Equal(t, "vendedor", withRole.Roles[0].Name)

	res, err := svc.Login(ctx, LoginInput{Username: "mario", Password: "contrasena1"})
	require.NoError(t, err)
	claims, err := auth.NewTokenIssuer("test-secret").Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendedor"}, claims.Roles)

	without, err := svc.RemoveRole(ctx, user.ID, role.ID)
	require.NoError(t, err)
	assert.Empty(t, without.Roles)

	_, err = svc.AssignRole(ctx, user.ID, 9999)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteRoleRevokesFromHolders(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, UserInput{Username: "irene", Password: "contrasena1"})
	require.NoError(t, err)
	role, err := svc.CreateRole(ctx, RoleInput{Name: "rrhh"})
	require.NoError(t, err)
	_, err = svc.AssignRole(ctx, user.ID, role.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Roles, "deleting a role must revoke it from holders")

	err = svc.DeleteRole(ctx, role.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSetActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, UserInput{Username: "rosa", Password: "contrasena1"})
	require.NoError(t, err)

	disabled, err := svc.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.Active)

	_, err = svc.SetActive(ctx, 9999, false)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
