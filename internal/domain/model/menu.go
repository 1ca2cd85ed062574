package model

import "time"

// メニューは Section → Item → SubItem の3階層固定ツリー。
// Sectionはrouteを持たない。SubItemのrouteは必須。

type MenuSection struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string     `json:"name" gorm:"not null"`
	Icon           string     `json:"icon"`
	DisplayOrder   int        `json:"displayOrder" gorm:"not null;default:0"`
	IsActive       bool       `json:"isActive" gorm:"not null;default:true"`
	IsVisibleToAll bool       `json:"isVisibleToAll" gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}

type MenuItem struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey"`
	SectionID      string     `json:"sectionId" gorm:"type:uuid;not null;index"`
	Name           string     `json:"name" gorm:"not null"`
	Icon           string     `json:"icon"`
	Route          *string    `json:"route" gorm:"index"`
	DisplayOrder   int        `json:"displayOrder" gorm:"not null;default:0"`
	IsActive       bool       `json:"isActive" gorm:"not null;default:true"`
	IsVisibleToAll bool       `json:"isVisibleToAll" gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}

type MenuSubItem struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey"`
	ItemID         string     `json:"itemId" gorm:"type:uuid;not null;index"`
	Name           string     `json:"name" gorm:"not null"`
	Icon           string     `json:"icon"`
	Route          string     `json:"route" gorm:"not null;index"`
	DisplayOrder   int        `json:"displayOrder" gorm:"not null;default:0"`
	IsActive       bool       `json:"isActive" gorm:"not null;default:true"`
	IsVisibleToAll bool       `json:"isVisibleToAll" gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}
