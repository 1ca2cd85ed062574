package model

import "time"

// グラント対象のノード種別。
type MenuTargetKind string

const (
	TargetSection MenuTargetKind = "SECTION"
	TargetItem    MenuTargetKind = "ITEM"
	TargetSubItem MenuTargetKind = "SUB_ITEM"
)

// RoleMenuAccessはロール→メニューノードのグラント。
// (role, target) につき有効な行は1つだけ。更新は行を増やさず上書きする。
type RoleMenuAccess struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	RoleID     string         `json:"roleId" gorm:"type:uuid;not null;uniqueIndex:idx_role_menu_target"`
	TargetID   string         `json:"targetId" gorm:"type:uuid;not null;uniqueIndex:idx_role_menu_target"`
	TargetKind MenuTargetKind `json:"targetKind" gorm:"type:varchar(20);not null;uniqueIndex:idx_role_menu_target"`
	HasAccess  bool           `json:"hasAccess" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  *time.Time     `json:"updatedAt"`
}

// RoleActionAccessはロール→アクションのグラント。(role, action) でユニーク。
type RoleActionAccess struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	RoleID    string     `json:"roleId" gorm:"type:uuid;not null;uniqueIndex:idx_role_action"`
	ActionID  string     `json:"actionId" gorm:"type:uuid;not null;uniqueIndex:idx_role_action"`
	IsEnabled bool       `json:"isEnabled" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}
