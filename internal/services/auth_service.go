package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultNotifyTimeout bounds a single background notification
const DefaultNotifyTimeout = 30 * time.Second

// AuthDeps are the collaborators of the auth service
type AuthDeps struct {
	Users       domain.UserRepository
	OTPs        domain.OTPRepository
	ResetTokens domain.ResetTokenRepository
	Sessions    domain.SessionRepository
	Passwords   domain.PasswordService
	Tokens      domain.TokenService
	Notifier    domain.Notifier
	Audit       domain.AuditLogger
	Logger      *zap.Logger
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo       domain.UserRepository
	otpRepo        domain.OTPRepository
	resetTokenRepo domain.ResetTokenRepository
	sessionRepo    domain.SessionRepository
	passwordSvc    domain.PasswordService
	tokenSvc       domain.TokenService
	notifier       domain.Notifier
	audit          domain.AuditLogger
	log            *zap.Logger

	now           func() time.Time
	notifyTimeout time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(deps AuthDeps) *AuthServiceImpl {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{
		userRepo:       deps.Users,
		otpRepo:        deps.OTPs,
		resetTokenRepo: deps.ResetTokens,
		sessionRepo:    deps.Sessions,
		passwordSvc:    deps.Passwords,
		tokenSvc:       deps.Tokens,
		notifier:       deps.Notifier,
		audit:          deps.Audit,
		log:            log.Named("auth"),
		now:            func() time.Time { return time.Now().UTC() },
		notifyTimeout:  DefaultNotifyTimeout,
	}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, in domain.RegisterInput) (_ *domain.AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Register")
	defer func() { telemetry.EndSpan(span, err) }()

	email := normalizeEmail(in.Email)
	event := domain.NewAuditEvent(domain.UserRegistrationEvent, "").WithEmail(email)
	defer func() { s.record(ctx, event, err) }()

	exists, err := s.userRepo.ExistsByEmailOrMobile(ctx, email, in.Mobile, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyExists
	}

	hashedPassword, err := s.passwordSvc.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Mobile:       optional(in.Mobile),
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	event.UserID = user.ID

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	welcome := *user
	s.notify(ctx, "welcome email", func(ctx context.Context) error {
		return s.notifier.SendWelcomeEmail(ctx, &welcome)
	})

	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// Login implements domain.AuthService.
// Credentials are checked before the admin gate so that a wrong password never reveals the role.
func (s *AuthServiceImpl) Login(ctx context.Context, in domain.LoginInput) (_ *domain.AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login")
	span.SetAttributes(attribute.String("auth.audience", in.Audience.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.UserLoginEvent, "").
		WithEmail(normalizeEmail(in.Email)).
		WithMetadata("audience", in.Audience.String())
	defer func() { s.record(ctx, event, err) }()

	target := domain.OTPTarget{Email: in.Email, Mobile: in.Mobile}
	user, err := s.findByTarget(ctx, target)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	event.UserID = user.ID

	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	switch {
	case in.Password != "":
		event.WithMetadata("method", "password")
		if !s.passwordSvc.Verify(user.PasswordHash, in.Password) {
			return nil, domain.ErrInvalidCredentials
		}
	case in.OTP != "":
		event.WithMetadata("method", "otp")
		if err := s.consumeOTP(ctx, user, target.Channel(), in.OTP); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrMissingCredential
	}

	if in.Audience == domain.AudienceAdmin && user.Role != domain.RoleAdmin {
		return nil, domain.ErrInsufficientPrivilege
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	email, mobile := user.Email, copyString(user.Mobile)
	s.notify(ctx, "login notification", func(ctx context.Context) error {
		return s.notifier.SendLoginNotification(ctx, email, mobile)
	})

	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// SendOTP implements domain.AuthService. Earlier unused codes stay valid until they expire.
func (s *AuthServiceImpl) SendOTP(ctx context.Context, target domain.OTPTarget) (_ bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.SendOTP")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.OTPSentEvent, "").WithMetadata("channel", string(target.Channel()))
	defer func() { s.record(ctx, event, err) }()

	user, err := s.findByTarget(ctx, target)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	event.UserID = user.ID

	code, err := GenerateOTPCode(OTPLength)
	if err != nil {
		return false, err
	}

	otp := &domain.OneTimePassword{
		UserID:    user.ID,
		Channel:   target.Channel(),
		Code:      code,
		ExpiresAt: s.now().Add(OTPTTL),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return false, fmt.Errorf("failed to store otp: %w", err)
	}

	destination := user.Email
	if otp.Channel == domain.OTPChannelMobile {
		destination = target.Mobile
	}
	s.notify(ctx, "otp", func(ctx context.Context) error {
		return s.notifier.SendOTP(ctx, otp.Channel, destination, code)
	})

	return true, nil
}

// VerifyOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, target domain.OTPTarget, code string) (_ *domain.AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.VerifyOTP")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.OTPVerifiedEvent, "").WithMetadata("channel", string(target.Channel()))
	defer func() { s.record(ctx, event, err) }()

	user, err := s.findByTarget(ctx, target)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	event.UserID = user.ID

	if err := s.consumeOTP(ctx, user, target.Channel(), code); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	email, mobile := user.Email, copyString(user.Mobile)
	s.notify(ctx, "login notification", func(ctx context.Context) error {
		return s.notifier.SendLoginNotification(ctx, email, mobile)
	})

	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// ForgotPassword implements domain.AuthService. It reports true whether or not the email is known.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ForgotPassword")
	defer func() { telemetry.EndSpan(span, err) }()

	email = normalizeEmail(email)
	event := domain.NewAuditEvent(domain.PasswordResetRequestEvent, "").WithEmail(email)
	defer func() { s.record(ctx, event, err) }()

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			event.WithMetadata("known", false)
			return true, nil
		}
		return false, err
	}
	event.UserID = user.ID

	token, expiresAt, err := s.tokenSvc.IssueResetToken(user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to issue reset token: %w", err)
	}

	row := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		Type:      domain.TokenTypeResetPassword,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := s.resetTokenRepo.Create(ctx, row); err != nil {
		return false, fmt.Errorf("failed to store reset token: %w", err)
	}

	recipient := *user
	s.notify(ctx, "password reset email", func(ctx context.Context) error {
		return s.notifier.SendPasswordResetEmail(ctx, &recipient, token)
	})

	return true, nil
}

// ResetPassword implements domain.AuthService. Sessions other than the new one are left untouched.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) (_ *domain.AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ResetPassword")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.PasswordResetEvent, "")
	defer func() { s.record(ctx, event, err) }()

	userID, err := s.tokenSvc.VerifyResetToken(token)
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	event.UserID = userID

	// fail fast before paying for bcrypt
	row, err := s.resetTokenRepo.FindValid(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	if row.UserID != userID {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.resetTokenRepo.Redeem(ctx, token, hashedPassword, s.now()); err != nil {
		if errors.Is(err, domain.ErrResetTokenNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// RefreshTokens implements domain.AuthService.
// The presented session is deleted before new tokens are issued; a caller that
// did not perform the deletion lost a concurrent rotation and is rejected.
func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (_ *domain.AuthTokens, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.RefreshTokens")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.TokenRefreshEvent, "")
	defer func() { s.record(ctx, event, err) }()

	claims, err := s.tokenSvc.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	event.UserID = claims.UserID

	session, err := s.sessionRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidRefreshToken
	}

	removed, err := s.sessionRepo.Delete(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	if !removed {
		return nil, domain.ErrInvalidRefreshToken
	}

	return s.issueTokens(ctx, user)
}

// Logout implements domain.AuthService. Unknown tokens are not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) (_ bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Logout")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.UserLogoutEvent, "")
	defer func() { s.record(ctx, event, err) }()

	removed, err := s.sessionRepo.Delete(ctx, refreshToken)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	event.WithMetadata("removed", removed)
	return true, nil
}

// GetCurrentUser implements domain.AuthService
func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// issueTokens signs an access/refresh pair and stores the refresh token as a session
func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthTokens, error) {
	claims := domain.TokenClaims{UserID: user.ID, Email: user.Email, Role: user.Role}

	accessToken, _, err := s.tokenSvc.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, expiresAt, err := s.tokenSvc.IssueRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// consumeOTP claims one matching code and mirrors the verified flag on user
func (s *AuthServiceImpl) consumeOTP(ctx context.Context, user *domain.User, channel domain.OTPChannel, code string) error {
	if err := s.otpRepo.Consume(ctx, user.ID, channel, code, s.now()); err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return domain.ErrInvalidOtp
		}
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	if channel == domain.OTPChannelMobile {
		user.IsMobileVerified = true
	} else {
		user.IsEmailVerified = true
	}
	return nil
}

func (s *AuthServiceImpl) findByTarget(ctx context.Context, target domain.OTPTarget) (*domain.User, error) {
	switch {
	case target.Email != "":
		return s.userRepo.FindByEmail(ctx, normalizeEmail(target.Email))
	case target.Mobile != "":
		return s.userRepo.FindByMobile(ctx, target.Mobile)
	default:
		return nil, domain.ErrUserNotFound
	}
}

// notify runs send in the background with a context detached from the request.
// Failures and panics are logged, never returned.
func (s *AuthServiceImpl) notify(ctx context.Context, kind string, send func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("notification panicked", zap.String("kind", kind), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(bg, s.notifyTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.log.Warn("notification failed", zap.String("kind", kind), zap.Error(err))
		}
	}()
}

func (s *AuthServiceImpl) record(ctx context.Context, event *domain.AuditEvent, err error) {
	if s.audit == nil {
		return
	}
	if err != nil {
		event.WithError(err)
	}
	s.audit.LogEvent(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
