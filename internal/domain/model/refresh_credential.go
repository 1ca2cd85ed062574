package model

import "time"

// RefreshCredentialは発行済みリフレッシュトークン1件の記録。
// 平文は保存しない。失効は revoked_at を立てるだけで、行は消さない（監査用）。
type RefreshCredential struct {
	ID           string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       string     `json:"userId" gorm:"type:uuid;not null;index"`
	TokenHash    string     `json:"-" gorm:"not null;uniqueIndex"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt" gorm:"not null;index"`
	RevokedAt    *time.Time `json:"revokedAt" gorm:"index"`
	ReplacedByID *string    `json:"replacedById" gorm:"type:uuid"`
	DeviceInfo   string     `json:"deviceInfo"`
	IPAddress    string     `json:"ipAddress"`
}

// IsActiveは失効しておらず期限内かどうか。refreshが成功できる唯一の状態。
func (c *RefreshCredential) IsActive(now time.Time) bool {
	return c.RevokedAt == nil && now.Before(c.ExpiresAt)
}
