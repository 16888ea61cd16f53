package domain

import "time"

// UserRecord mirrors the externally attested Telegram identity. The ID is the
// identity provider's user id; AuthEmail is the deterministic pseudo-address
// derived from the Telegram id, used only as the provider lookup key.
type UserRecord struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	TelegramID     int64      `gorm:"uniqueIndex;not null" json:"telegram_id"`
	AuthEmail      string     `gorm:"uniqueIndex;not null" json:"-"`
	FirstName      string     `gorm:"not null" json:"first_name"`
	LastName       string     `json:"last_name,omitempty"`
	Username       string     `json:"username,omitempty"`
	PhotoURL       string     `json:"photo_url,omitempty"`
	ReferredByCode string     `json:"referred_by_code,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserRecord) TableName() string { return "app_user" }

// Profile is the subset of UserRecord refreshed on every successful
// authentication.
type Profile struct {
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
}
