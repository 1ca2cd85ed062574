package model

import "time"

// アクションのオーナーはItemかSubItemのどちらか一方。
type ActionOwnerKind string

const (
	OwnerItem    ActionOwnerKind = "ITEM"
	OwnerSubItem ActionOwnerKind = "SUB_ITEM"
)

// PageActionはページ内操作（create/export等）の定義。Codeがプログラム側の識別子。
type PageAction struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID      string          `json:"ownerId" gorm:"type:uuid;not null;index"`
	OwnerKind    ActionOwnerKind `json:"ownerKind" gorm:"type:varchar(20);not null"`
	Code         string          `json:"code" gorm:"not null"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	DisplayOrder int             `json:"displayOrder" gorm:"not null;default:0"`
	IsActive     bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    *time.Time      `json:"updatedAt"`
}
