package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/infrastructure/repositories"
	"github.com/Brijesh59/kite/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceImpl_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, domain.RegisterInput{
		Name:     " Alice ",
		Email:    "Alice@Example.com",
		Mobile:   "5551234567",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, testPassword, res.User.PasswordHash)
	assert.True(t, env.passwords.Verify(res.User.PasswordHash, testPassword))

	claims, err := env.tokens.VerifyAccessToken(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)

	session, err := env.sessions.FindByToken(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, session.UserID)

	welcome := env.waitForNotification(t, "welcome")
	assert.Equal(t, "alice@example.com", welcome.Destination)

	assert.Len(t, env.audit.Events(domain.UserRegistrationEvent), 1)
}

func TestAuthServiceImpl_RegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)

	tests := []struct {
		name string
		in   domain.RegisterInput
	}{
		{"same email", domain.RegisterInput{Name: "A", Email: "alice@example.com", Password: testPassword}},
		{"email differs only in case", domain.RegisterInput{Name: "A", Email: "ALICE@example.com", Password: testPassword}},
		{"same mobile", domain.RegisterInput{Name: "A", Email: "other@example.com", Mobile: "5551234567", Password: testPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrAlreadyExists)
			assert.Nil(t, res)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&repositories.DBUser{}).Where("email = ?", "alice@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, env.db.Model(&repositories.DBUser{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, env.mr.Keys(), "failed registrations must not open sessions")

	events := env.audit.Events(domain.UserRegistrationEvent)
	require.Len(t, events, 3)
	assert.False(t, events[0].Success)
}

func TestAuthServiceImpl_RegisterSurvivesNotifierFailure(t *testing.T) {
	tests := []struct {
		name string
		send func(ctx context.Context, user *domain.User) error
	}{
		{"error", func(context.Context, *domain.User) error { return errors.New("smtp down") }},
		{"panic", func(context.Context, *domain.User) error { panic("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.notifier.SendWelcomeEmailFunc = tt.send

			res, err := env.svc.Register(context.Background(), domain.RegisterInput{
				Name: "Alice", Email: "alice@example.com", Password: testPassword,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, res.Tokens.AccessToken)
			env.waitForNotification(t, "welcome")
		})
	}
}

func TestAuthServiceImpl_LoginWithPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)
	env.seedUser(t, "admin@example.com", "", domain.RoleAdmin)
	inactive := env.seedUser(t, "gone@example.com", "", domain.RoleUser)
	inactive.IsActive = false
	require.NoError(t, env.users.Update(ctx, inactive))

	tests := []struct {
		name    string
		in      domain.LoginInput
		wantErr error
	}{
		{"by email", domain.LoginInput{Email: "alice@example.com", Password: testPassword}, nil},
		{"email any case", domain.LoginInput{Email: "ALICE@example.com", Password: testPassword}, nil},
		{"by mobile", domain.LoginInput{Mobile: "5551234567", Password: testPassword}, nil},
		{"wrong password", domain.LoginInput{Email: "alice@example.com", Password: "Wrong@123"}, domain.ErrInvalidCredentials},
		{"unknown user", domain.LoginInput{Email: "nobody@example.com", Password: testPassword}, domain.ErrInvalidCredentials},
		{"unknown user without credential", domain.LoginInput{Email: "nobody@example.com"}, domain.ErrInvalidCredentials},
		{"inactive user", domain.LoginInput{Email: "gone@example.com", Password: testPassword}, domain.ErrInvalidCredentials},
		{"no credential", domain.LoginInput{Email: "alice@example.com"}, domain.ErrMissingCredential},
		{"admin audience as user", domain.LoginInput{Email: "alice@example.com", Password: testPassword, Audience: domain.AudienceAdmin}, domain.ErrInsufficientPrivilege},
		{"admin audience wrong password", domain.LoginInput{Email: "alice@example.com", Password: "Wrong@123", Audience: domain.AudienceAdmin}, domain.ErrInvalidCredentials},
		{"admin audience as admin", domain.LoginInput{Email: "admin@example.com", Password: testPassword, Audience: domain.AudienceAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(env.mr.Keys())
			res, err := env.svc.Login(ctx, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				assert.Len(t, env.mr.Keys(), before, "a rejected login must not store a session")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Tokens.AccessToken)
			_, err = env.sessions.FindByToken(ctx, res.Tokens.RefreshToken)
			assert.NoError(t, err)
		})
	}
}

func TestAuthServiceImpl_LoginNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)

	_, err := env.svc.Login(context.Background(), domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	n := env.waitForNotification(t, "login")
	assert.Equal(t, "alice@example.com", n.Destination)
	assert.Equal(t, "5551234567", n.Payload)
}

func TestAuthServiceImpl_LoginWithOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)

	env.seedOTP(t, user.ID, domain.OTPChannelMobile, "123456")

	_, err := env.svc.Login(ctx, domain.LoginInput{Mobile: "5551234567", OTP: "000000"})
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)

	// email-channel login cannot use a mobile code
	_, err = env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)

	res, err := env.svc.Login(ctx, domain.LoginInput{Mobile: "5551234567", OTP: "123456"})
	require.NoError(t, err)
	assert.True(t, res.User.IsMobileVerified)

	stored, err := env.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsMobileVerified)
	assert.False(t, stored.IsEmailVerified)

	_, err = env.svc.Login(ctx, domain.LoginInput{Mobile: "5551234567", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)
}

func TestAuthServiceImpl_SendAndVerifyOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)

	_, err := env.svc.SendOTP(ctx, domain.OTPTarget{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := env.svc.SendOTP(ctx, domain.OTPTarget{Email: "Alice@example.com"})
	require.NoError(t, err)
	assert.True(t, ok)

	sent := env.waitForNotification(t, "otp:EMAIL")
	assert.Equal(t, "alice@example.com", sent.Destination)
	assert.Regexp(t, `^[0-9]{6}$`, sent.Payload)

	_, err = env.svc.VerifyOTP(ctx, domain.OTPTarget{Email: "nobody@example.com"}, sent.Payload)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err := env.svc.VerifyOTP(ctx, domain.OTPTarget{Email: "alice@example.com"}, sent.Payload)
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.True(t, res.User.IsEmailVerified)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, "alice@example.com", env.waitForNotification(t, "login").Destination)

	_, err = env.svc.VerifyOTP(ctx, domain.OTPTarget{Email: "alice@example.com"}, sent.Payload)
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)
}

func TestAuthServiceImpl_SendOTPToMobile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)

	_, err := env.svc.SendOTP(context.Background(), domain.OTPTarget{Mobile: "5551234567"})
	require.NoError(t, err)

	sent := env.waitForNotification(t, "otp:MOBILE")
	assert.Equal(t, "5551234567", sent.Destination)
}

func TestAuthServiceImpl_EarlierOTPStaysValid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice@example.com", "", domain.RoleUser)
	target := domain.OTPTarget{Email: "alice@example.com"}

	_, err := env.svc.SendOTP(ctx, target)
	require.NoError(t, err)
	first := env.waitForNotification(t, "otp:EMAIL")

	_, err = env.svc.SendOTP(ctx, target)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(env.notifier.Sent()) == 2 }, 2*time.Second, 10*time.Millisecond)

	_, err = env.svc.VerifyOTP(ctx, target, first.Payload)
	assert.NoError(t, err)
}

func TestAuthServiceImpl_ConcurrentOTPVerification(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)
	env.seedOTP(t, user.ID, domain.OTPChannelEmail, "777777")

	var wins, losses int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.VerifyOTP(context.Background(), domain.OTPTarget{Email: "alice@example.com"}, "777777")
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, domain.ErrInvalidOtp):
				atomic.AddInt32(&losses, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(4), losses)
}

func TestAuthServiceImpl_ForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	ok, err := env.svc.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.ForgotPassword(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	reset := env.waitForNotification(t, "reset")
	assert.Equal(t, "alice@example.com", reset.Destination)
	token := reset.Payload
	require.Len(t, env.notifier.Sent(), 1)

	res, err := env.svc.ResetPassword(ctx, token, "NewSecret@456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: "NewSecret@456"})
	assert.NoError(t, err)

	_, err = env.svc.ResetPassword(ctx, token, "Another@789")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestAuthServiceImpl_ResetPasswordRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	// a correctly signed reset token that was never stored
	unstored, _, err := env.tokens.IssueResetToken(user.ID)
	require.NoError(t, err)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"unstored", unstored},
		{"access token", login.Tokens.AccessToken},
		{"refresh token", login.Tokens.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.ResetPassword(ctx, tt.token, "NewSecret@456")
			assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
		})
	}
}

func TestAuthServiceImpl_ResetPasswordAfterUserDeleted(t *testing.T) {
	tests := []struct {
		name   string
		remove func(t *testing.T, env *testEnv, user *domain.User)
	}{
		{"deleted with its tokens", func(t *testing.T, env *testEnv, user *domain.User) {
			require.NoError(t, env.users.Delete(context.Background(), user.ID))
		}},
		{"user row gone, token row left", func(t *testing.T, env *testEnv, user *domain.User) {
			require.NoError(t, env.db.Where("id = ?", user.ID).Delete(&repositories.DBUser{}).Error)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

			_, err := env.svc.ForgotPassword(ctx, "alice@example.com")
			require.NoError(t, err)
			reset := env.waitForNotification(t, "reset")

			tt.remove(t, env, user)

			res, err := env.svc.ResetPassword(ctx, reset.Payload, "NewSecret@456")
			assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
			assert.Nil(t, res)
			assert.Empty(t, env.mr.Keys())
		})
	}
}

func TestAuthServiceImpl_ResetPasswordKeepsOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = env.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	reset := env.waitForNotification(t, "reset")

	_, err = env.svc.ResetPassword(ctx, reset.Payload, "NewSecret@456")
	require.NoError(t, err)

	_, err = env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthServiceImpl_RefreshTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	tokens, err := env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, tokens.RefreshToken)

	_, err = env.sessions.FindByToken(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	_, err = env.svc.RefreshTokens(ctx, tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthServiceImpl_RefreshTokensRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	// signed with the refresh secret but never stored
	orphan, _, err := env.tokens.IssueRefreshToken(domain.TokenClaims{UserID: user.ID, Email: user.Email, Role: user.Role})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "garbage"},
		{"access token", login.Tokens.AccessToken},
		{"no session", orphan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.RefreshTokens(ctx, tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
		})
	}

	t.Run("inactive owner", func(t *testing.T) {
		user.IsActive = false
		require.NoError(t, env.users.Update(ctx, user))

		_, err := env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})
}

func TestAuthServiceImpl_ConcurrentRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	const callers = 6
	var wins, losses int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, domain.ErrInvalidRefreshToken):
				atomic.AddInt32(&losses, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(callers-1), losses)
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := env.svc.Logout(ctx, login.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := env.svc.Logout(ctx, "never-issued")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.svc.RefreshTokens(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestAuthServiceImpl_GetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	active := env.seedUser(t, "alice@example.com", "", domain.RoleUser)
	inactive := env.seedUser(t, "bob@example.com", "", domain.RoleUser)
	inactive.IsActive = false
	require.NoError(t, env.users.Update(ctx, inactive))

	got, err := env.svc.GetCurrentUser(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = env.svc.GetCurrentUser(ctx, inactive.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.GetCurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthServiceImpl_InfrastructureErrors(t *testing.T) {
	dbErr := errors.New("connection refused")

	users := mocks.NewMockUserRepository()
	users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return nil, dbErr }
	users.ExistsByEmailOrMobileFunc = func(context.Context, string, string, string) (bool, error) { return false, dbErr }

	svc := NewAuthService(AuthDeps{
		Users:     users,
		Sessions:  mocks.NewMockSessionRepository(),
		Passwords: mocks.NewMockPasswordService(),
	})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterInput{Email: "a@example.com", Password: testPassword})
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.Login(ctx, domain.LoginInput{Email: "a@example.com", Password: testPassword})
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.ForgotPassword(ctx, "a@example.com")
	assert.ErrorIs(t, err, dbErr)
}

func TestAuthServiceImpl_SessionStoreFailureFailsIssue(t *testing.T) {
	hash := "hashed_" + testPassword
	users := mocks.NewMockUserRepository()
	users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) {
		return &domain.User{ID: "u1", Email: "a@example.com", PasswordHash: hash, Role: domain.RoleUser, IsActive: true}, nil
	}
	sessions := mocks.NewMockSessionRepository()
	sessions.CreateFunc = func(context.Context, *domain.Session) error { return errors.New("redis down") }

	env := newTestEnv(t)
	svc := NewAuthService(AuthDeps{
		Users:     users,
		Sessions:  sessions,
		Passwords: mocks.NewMockPasswordService(),
		Tokens:    env.tokens,
	})

	_, err := svc.Login(context.Background(), domain.LoginInput{Email: "a@example.com", Password: testPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create session")
}

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode(OTPLength)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
