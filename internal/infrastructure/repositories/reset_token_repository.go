package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBPasswordResetToken is the database model of a password-reset token
type DBPasswordResetToken struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36;not null"`
	Token     string    `gorm:"uniqueIndex;size:512;not null"`
	Type      string    `gorm:"size:32;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Used      bool      `gorm:"index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBPasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// ResetTokenRepositoryImpl implements domain.ResetTokenRepository using GORM
type ResetTokenRepositoryImpl struct {
	db *gorm.DB
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(db *gorm.DB) domain.ResetTokenRepository {
	return &ResetTokenRepositoryImpl{db: db}
}

// Create implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.Type == "" {
		token.Type = domain.TokenTypeResetPassword
	}
	row := &DBPasswordResetToken{
		ID:        token.ID,
		UserID:    token.UserID,
		Token:     token.Token,
		Type:      token.Type,
		ExpiresAt: token.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	token.CreatedAt = row.CreatedAt
	return nil
}

// FindValid implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) FindValid(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	var row DBPasswordResetToken
	err := validToken(r.db.WithContext(ctx), token, now).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResetTokenNotFound
		}
		return nil, err
	}
	return &domain.PasswordResetToken{
		ID:        row.ID,
		UserID:    row.UserID,
		Token:     row.Token,
		Type:      row.Type,
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Redeem implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Redeem(ctx context.Context, token, passwordHash string, now time.Time) (string, error) {
	var userID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DBPasswordResetToken
		if err := validToken(tx, token, now).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrResetTokenNotFound
			}
			return err
		}

		res := tx.Model(&DBPasswordResetToken{}).Where("id = ? AND used = ?", row.ID, false).Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return domain.ErrResetTokenNotFound
		}

		res = tx.Model(&DBUser{}).Where("id = ?", row.UserID).Update("password", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return domain.ErrUserNotFound
		}

		userID = row.UserID
		return nil
	})
	return userID, err
}

func validToken(db *gorm.DB, token string, now time.Time) *gorm.DB {
	return db.Where("token = ? AND type = ? AND used = ? AND expires_at > ?",
		token, domain.TokenTypeResetPassword, false, now)
}
