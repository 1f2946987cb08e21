package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likeEscaper makes search input match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID               string    `gorm:"primaryKey;size:36"`
	Name             string    `gorm:"size:100"`
	Email            string    `gorm:"uniqueIndex;size:255;not null"`
	Mobile           *string   `gorm:"uniqueIndex;size:15"`
	PasswordHash     string    `gorm:"column:password;not null"`
	Role             string    `gorm:"index;size:16;not null"`
	IsActive         bool      `gorm:"index"`
	IsEmailVerified  bool
	IsMobileVerified bool
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// Models lists every table owned by the credential store
func Models() []interface{} {
	return []interface{}{&DBUser{}, &DBOneTimePassword{}, &DBPasswordResetToken{}, &DBProfile{}}
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail implements domain.UserRepository. Emails compare case-insensitively.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", normalizeEmail(email))
}

// FindByMobile implements domain.UserRepository
func (r *UserRepositoryImpl) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	return r.findOne(ctx, "mobile = ?", mobile)
}

// ExistsByEmailOrMobile implements domain.UserRepository
func (r *UserRepositoryImpl) ExistsByEmailOrMobile(ctx context.Context, email, mobile, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&DBUser{})
	switch {
	case email != "" && mobile != "":
		q = q.Where("email = ? OR mobile = ?", normalizeEmail(email), mobile)
	case email != "":
		q = q.Where("email = ?", normalizeEmail(email))
	case mobile != "":
		q = q.Where("mobile = ?", mobile)
	default:
		return false, nil
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Save(dbUser).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// List implements domain.UserRepository
func (r *UserRepositoryImpl) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&DBUser{})
	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DBUser
	offset := (filter.Page - 1) * filter.Limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, r.dbToDomain(&rows[i]))
	}
	return users, total, nil
}

// CountByRole implements domain.UserRepository
func (r *UserRepositoryImpl) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBUser{}).Where("role = ?", string(role)).Count(&count).Error
	return count, err
}

// Delete implements domain.UserRepository. Credentials and profile rows owned by
// the user are removed in the same transaction.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{&DBOneTimePassword{}, &DBPasswordResetToken{}, &DBProfile{}} {
			if err := tx.Where("user_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&DBUser{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	var mobile *string
	if user.Mobile != nil && *user.Mobile != "" {
		m := *user.Mobile
		mobile = &m
	}
	return &DBUser{
		ID:               user.ID,
		Name:             user.Name,
		Email:            normalizeEmail(user.Email),
		Mobile:           mobile,
		PasswordHash:     user.PasswordHash,
		Role:             string(user.Role),
		IsActive:         user.IsActive,
		IsEmailVerified:  user.IsEmailVerified,
		IsMobileVerified: user.IsMobileVerified,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:               dbUser.ID,
		Name:             dbUser.Name,
		Email:            dbUser.Email,
		Mobile:           dbUser.Mobile,
		PasswordHash:     dbUser.PasswordHash,
		Role:             domain.Role(dbUser.Role),
		IsActive:         dbUser.IsActive,
		IsEmailVerified:  dbUser.IsEmailVerified,
		IsMobileVerified: dbUser.IsMobileVerified,
		CreatedAt:        dbUser.CreatedAt,
		UpdatedAt:        dbUser.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation matches translated and raw driver unique-constraint errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
