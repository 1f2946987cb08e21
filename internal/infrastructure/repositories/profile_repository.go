package repositories

import (
	"context"
	"time"

	"github.com/Brijesh59/kite/domain"
	"gorm.io/gorm"
)

// DBProfile is the onboarding profile of a user. Its presence marks the profile completed.
type DBProfile struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"uniqueIndex;size:36;not null"`
	Bio       string `gorm:"size:500"`
	AvatarURL string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (DBProfile) TableName() string {
	return "profiles"
}

// ProfileRepositoryImpl implements domain.ProfileRepository using GORM
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

// IsProfileCompleted implements domain.ProfileRepository
func (r *ProfileRepositoryImpl) IsProfileCompleted(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DBProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
