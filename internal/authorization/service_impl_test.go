package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	userdomain "github.com/smallbiznis/mymart/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&userdomain.User{}))
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]userdomain.User{
		{ID: 1, Email: "admin@mymart.local", Role: userdomain.RoleAdmin, CreatedAt: now},
		{ID: 2, Email: "demo@mymart.local", Role: userdomain.RoleShopper, CreatedAt: now},
	}).Error)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer}), db
}

func TestAuthorizeCatalogWrites(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, 1, ObjectCatalog, ActionCategoryCreate))
	assert.NoError(t, svc.Authorize(ctx, 1, ObjectCatalog, ActionProductCreate))
	assert.NoError(t, svc.Authorize(ctx, 1, ObjectOrder, ActionOrderEmailSend))

	assert.ErrorIs(t, svc.Authorize(ctx, 2, ObjectCatalog, ActionCategoryCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, 2, ObjectOrder, ActionOrderEmailSend), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, 99, ObjectCatalog, ActionCategoryCreate), ErrForbidden)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, 0, ObjectCatalog, ActionCategoryCreate), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Authorize(ctx, 1, " ", ActionCategoryCreate), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, 1, ObjectCatalog, ""), ErrInvalidAction)
}

func TestAuthorizeFollowsRoleChanges(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, 1, ObjectCatalog, ActionCategoryCreate))
	require.NoError(t, db.Model(&userdomain.User{}).Where("id = ?", 1).Update("role", userdomain.RoleShopper).Error)
	assert.ErrorIs(t, svc.Authorize(ctx, 1, ObjectCatalog, ActionCategoryCreate), ErrForbidden)

	var links int64
	require.NoError(t, db.Table("casbin_rule").Where("ptype = ? AND v0 = ?", "g", "user:1").Count(&links).Error)
	assert.Equal(t, int64(1), links)
}

func TestNewEnforcerSeedsPoliciesOnce(t *testing.T) {
	_, db := setupService(t)

	_, err := NewEnforcer(db)
	require.NoError(t, err)

	var policies int64
	require.NoError(t, db.Table("casbin_rule").Where("ptype = ?", "p").Count(&policies).Error)
	assert.Equal(t, int64(3), policies)
}
