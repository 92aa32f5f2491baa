package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/config"
	"github.com/campus-hub/campus-events-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

// A deactivated account must persist as deactivated. A gorm default tag on a
// plain bool column would drop the false from the INSERT and resurrect the
// account as active.
func TestCreateInactiveUserStaysInactive(t *testing.T) {
	db := newTestDB(t)

	user := models.User{
		Name:   "Former Student",
		Email:  "former@campus.example",
		Role:   models.RoleUser,
		Active: false,
	}
	require.NoError(t, db.Create(&user).Error)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.False(t, got.Active)
}

func TestCreateInactiveLocationStaysInactive(t *testing.T) {
	db := newTestDB(t)

	location := models.Location{Name: "Condemned Annex", Capacity: 50, Active: false}
	require.NoError(t, db.Create(&location).Error)

	var got models.Location
	require.NoError(t, db.First(&got, location.ID).Error)
	assert.False(t, got.Active)
}

func TestSeedSuperadmin(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{
		BootstrapAdminEmail:    "root@campus.example",
		BootstrapAdminPassword: "bootstrap-secret",
	}

	require.NoError(t, seedSuperadmin(db, cfg))

	var admin models.User
	require.NoError(t, db.Where("email = ?", cfg.BootstrapAdminEmail).First(&admin).Error)
	assert.Equal(t, models.RoleSuperadmin, admin.Role)
	assert.True(t, admin.Active)
	assert.NotEmpty(t, admin.PasswordHash)

	// Idempotent: a second start with a superadmin present seeds nothing.
	require.NoError(t, seedSuperadmin(db, cfg))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
