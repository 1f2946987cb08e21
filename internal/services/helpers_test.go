package services

import (
	"context"
	"testing"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/infrastructure/auth"
	"github.com/Brijesh59/kite/internal/infrastructure/repositories"
	"github.com/Brijesh59/kite/internal/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Secret@123"

// testEnv wires the auth service to in-memory stores and real token/password services
type testEnv struct {
	svc       *AuthServiceImpl
	admin     *AdminServiceImpl
	db        *gorm.DB
	mr        *miniredis.Miniredis
	users     domain.UserRepository
	otps      domain.OTPRepository
	sessions  domain.SessionRepository
	passwords domain.PasswordService
	tokens    *auth.JWTServiceImpl
	notifier  *mocks.MockNotifier
	audit     *mocks.MockAuditLogger
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(repositories.Models()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		db:        db,
		mr:        mr,
		users:     repositories.NewUserRepository(db),
		otps:      repositories.NewOTPRepository(db),
		sessions:  repositories.NewSessionRepository(client, nil),
		passwords: auth.NewPasswordService(bcrypt.MinCost),
		tokens:    auth.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour),
		notifier:  mocks.NewMockNotifier(),
		audit:     mocks.NewMockAuditLogger(),
	}
	env.svc = NewAuthService(AuthDeps{
		Users:       env.users,
		OTPs:        env.otps,
		ResetTokens: repositories.NewResetTokenRepository(db),
		Sessions:    env.sessions,
		Passwords:   env.passwords,
		Tokens:      env.tokens,
		Notifier:    env.notifier,
		Audit:       env.audit,
	})
	env.admin = NewAdminService(env.users, env.sessions, env.passwords, env.audit, nil)
	return env
}

// seedUser stores a user whose password is testPassword
func (e *testEnv) seedUser(t *testing.T, email, mobile string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := e.passwords.Hash(testPassword)
	require.NoError(t, err)

	user := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if mobile != "" {
		user.Mobile = &mobile
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

// seedOTP stores a valid code for user on channel
func (e *testEnv) seedOTP(t *testing.T, userID string, channel domain.OTPChannel, code string) {
	t.Helper()
	require.NoError(t, e.otps.Create(context.Background(), &domain.OneTimePassword{
		UserID:    userID,
		Channel:   channel,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(OTPTTL),
	}))
}

// waitForNotification polls the notifier until kind shows up
func (e *testEnv) waitForNotification(t *testing.T, kind string) mocks.Notification {
	t.Helper()
	var got mocks.Notification
	require.Eventually(t, func() bool {
		n, ok := e.notifier.Last(kind)
		got = n
		return ok
	}, 2*time.Second, 10*time.Millisecond, "no %s notification", kind)
	return got
}
