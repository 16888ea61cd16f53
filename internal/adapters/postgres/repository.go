package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/muhammadowais87/client2-sub000/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.UserRecord) error
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.UserRecord, error)
	FindByID(ctx context.Context, id string) (*domain.UserRecord, error)
	UpdateProfile(ctx context.Context, id string, identity domain.Profile) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type SecurityEventRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
	CountRecentByIP(ctx context.Context, ip string, eventTypes []string, since time.Time) (int64, error)
}

type userRepo struct{ db *gorm.DB }

type securityEventRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.UserRecord) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile rewrites only the mirrored identity fields; referred_by_code
// and everything else stays untouched.
func (r *userRepo) UpdateProfile(ctx context.Context, id string, identity domain.Profile) error {
	return r.db.WithContext(ctx).
		Model(&domain.UserRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"first_name": identity.FirstName,
			"last_name":  identity.LastName,
			"username":   identity.Username,
			"photo_url":  identity.PhotoURL,
		}).Error
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.UserRecord{}).
		Where("id = ?", id).
		Update("last_login_at", &at).Error
}

func (r *securityEventRepo) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *securityEventRepo) CountRecentByIP(ctx context.Context, ip string, eventTypes []string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.SecurityEvent{}).
		Where("ip_address = ? AND event_type IN ? AND created_at > ?", ip, eventTypes, since).
		Count(&count).Error
	return count, err
}
