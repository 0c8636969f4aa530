package refreshtoken

import (
	"time"
)

// RefreshToken is a server-tracked opaque credential. One row per
// device/session; immutable once revoked.
type RefreshToken struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"index;not null;type:uuid" json:"userId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`

	CreatedByIP string `gorm:"column:created_by_ip;not null" json:"createdByIp"`
	UserAgent   string `gorm:"not null" json:"userAgent"`

	RevokedAt       *time.Time `json:"revokedAt,omitempty"`
	RevokedByIP     string     `gorm:"column:revoked_by_ip" json:"revokedByIp,omitempty"`
	ReplacedByToken string     `json:"-"`
	IsRotated       bool       `gorm:"not null;default:false" json:"isRotated"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && !t.IsExpired(now)
}
