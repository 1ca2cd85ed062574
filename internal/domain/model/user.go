package model

import "time"

type User struct {
	ID             string `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string `json:"-" gorm:"column:password_hash"`
	DisplayName    string `json:"displayName"`
	ImageURL       string `json:"imageUrl"`
	IsActive       bool   `json:"isActive" gorm:"not null;default:true"`
	EmailConfirmed bool   `json:"emailConfirmed" gorm:"not null;default:false"`
	LastLoginAt    *time.Time `json:"lastLoginAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Roles          []Role     `json:"roles" gorm:"many2many:user_roles"`
}

// RoleNamesはユーザーが持つロール名の一覧を返す。
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
