package models

import (
	"time"
)

// UserToken is the persisted refresh credential for a platform user.
// At most one row exists per user; it is created on the first successful
// code exchange and updated on every successful refresh. Nothing deletes it.
type UserToken struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       int64  `gorm:"uniqueIndex;not null"` // platform-assigned user id
	RefreshToken string `gorm:"type:text"`
	ExpiresAt    int64  `gorm:"not null"` // epoch second the access token dies at
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserToken) TableName() string {
	return "user_tokens"
}

// IsExpired reports whether the access token tied to this row is past its
// expiry at the given instant.
func (t *UserToken) IsExpired(now time.Time) bool {
	return now.Unix() > t.ExpiresAt
}
