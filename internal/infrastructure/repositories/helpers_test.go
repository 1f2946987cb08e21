package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func seedUser(t *testing.T, repo domain.UserRepository, email, mobile string, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashed_password",
		Role:         role,
		IsActive:     true,
	}
	if mobile != "" {
		user.Mobile = &mobile
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func utcNow() time.Time { return time.Now().UTC() }
