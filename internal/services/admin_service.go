package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/telemetry"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// AdminServiceImpl implements domain.AdminService
type AdminServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	audit       domain.AuditLogger
	log         *zap.Logger
}

// NewAdminService creates a new admin user-management service
func NewAdminService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	audit domain.AuditLogger,
	log *zap.Logger,
) *AdminServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		audit:       audit,
		log:         log.Named("admin"),
	}
}

// ListUsers implements domain.AdminService
func (s *AdminServiceImpl) ListUsers(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &domain.UserPage{
		Users:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

// GetUser implements domain.AdminService
func (s *AdminServiceImpl) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser implements domain.AdminService
func (s *AdminServiceImpl) CreateUser(ctx context.Context, in domain.CreateUserInput) (_ *domain.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.CreateUser")
	defer func() { telemetry.EndSpan(span, err) }()

	email := normalizeEmail(in.Email)
	event := domain.NewAuditEvent(domain.UserCreatedEvent, "").WithEmail(email)
	defer func() { s.record(ctx, event, err) }()

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

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
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	event.UserID = user.ID
	event.WithMetadata("role", string(role))

	return user, nil
}

// UpdateUser implements domain.AdminService. Deactivating a user revokes their sessions.
func (s *AdminServiceImpl) UpdateUser(ctx context.Context, id string, in domain.UpdateUserInput) (_ *domain.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.UpdateUser")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.UserUpdatedEvent, id)
	defer func() { s.record(ctx, event, err) }()

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := user.IsActive

	var email, mobile string
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
	}
	if in.Mobile != nil {
		mobile = *in.Mobile
	}
	if email != "" || mobile != "" {
		exists, err := s.userRepo.ExistsByEmailOrMobile(ctx, email, mobile, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists {
			return nil, domain.ErrAlreadyExists
		}
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if email != "" {
		user.Email = email
	}
	if in.Mobile != nil {
		user.Mobile = optional(mobile)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if wasActive && !user.IsActive {
		s.revokeSessions(ctx, user.ID)
	}
	return user, nil
}

// DeactivateUser implements domain.AdminService
func (s *AdminServiceImpl) DeactivateUser(ctx context.Context, id string) (_ *domain.User, err error) {
	event := domain.NewAuditEvent(domain.UserDeactivatedEvent, id)
	defer func() { s.record(ctx, event, err) }()

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.revokeSessions(ctx, user.ID)
	return user, nil
}

// DeleteUser implements domain.AdminService. The last ADMIN cannot be deleted.
func (s *AdminServiceImpl) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.DeleteUser")
	defer func() { telemetry.EndSpan(span, err) }()

	event := domain.NewAuditEvent(domain.UserDeletedEvent, id)
	defer func() { s.record(ctx, event, err) }()

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.revokeSessions(ctx, id)
	return nil
}

// revokeSessions is best-effort: the account change already happened
func (s *AdminServiceImpl) revokeSessions(ctx context.Context, userID string) {
	n, err := s.sessionRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to revoke sessions", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.log.Info("sessions revoked", zap.String("user_id", userID), zap.Int("count", n))
}

func (s *AdminServiceImpl) record(ctx context.Context, event *domain.AuditEvent, err error) {
	if s.audit == nil {
		return
	}
	if err != nil {
		event.WithError(err)
	}
	s.audit.LogEvent(ctx, event)
}

var _ domain.AdminService = (*AdminServiceImpl)(nil)
