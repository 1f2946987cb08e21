package repositories

import (
	"context"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBOneTimePassword is the database model of a one-time password
type DBOneTimePassword struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36;not null"`
	Channel   string    `gorm:"size:8;not null"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Used      bool      `gorm:"index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBOneTimePassword) TableName() string {
	return "one_time_passwords"
}

// OTPRepositoryImpl implements domain.OTPRepository using GORM
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Create implements domain.OTPRepository
func (r *OTPRepositoryImpl) Create(ctx context.Context, otp *domain.OneTimePassword) error {
	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}
	row := &DBOneTimePassword{
		ID:        otp.ID,
		UserID:    otp.UserID,
		Channel:   string(otp.Channel),
		Code:      otp.Code,
		ExpiresAt: otp.ExpiresAt,
		Used:      otp.Used,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	otp.CreatedAt = row.CreatedAt
	return nil
}

// Consume implements domain.OTPRepository.
// The conditional update is the claim: only the caller that flips used from
// false to true proceeds, so concurrent verifications of one code succeed once.
func (r *OTPRepositoryImpl) Consume(ctx context.Context, userID string, channel domain.OTPChannel, code string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []DBOneTimePassword
		err := tx.Where("user_id = ? AND channel = ? AND code = ? AND used = ? AND expires_at > ?",
			userID, string(channel), code, false, now).
			Order("created_at DESC").
			Find(&candidates).Error
		if err != nil {
			return err
		}

		for _, c := range candidates {
			res := tx.Model(&DBOneTimePassword{}).
				Where("id = ? AND used = ? AND expires_at > ?", c.ID, false, now).
				Update("used", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				return tx.Model(&DBUser{}).Where("id = ?", userID).Update(verifiedColumn(channel), true).Error
			}
		}
		return domain.ErrOTPNotFound
	})
}

func verifiedColumn(channel domain.OTPChannel) string {
	if channel == domain.OTPChannelMobile {
		return "is_mobile_verified"
	}
	return "is_email_verified"
}
