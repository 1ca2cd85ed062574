package db

import (
	"log"
	"time"

	"app/internal/domain/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed は初期データ（ロール・管理ユーザー・初期メニュー）を投入する。
// 既にあるものは作り直さない。何度実行しても安全。
func Seed(gormDB *gorm.DB) error {
	if err := seedRoles(gormDB); err != nil {
		return err
	}
	if err := seedAdminUser(gormDB); err != nil {
		return err
	}
	if err := seedMenu(gormDB); err != nil {
		return err
	}
	return nil
}

func seedRoles(gormDB *gorm.DB) error {
	roles := []model.Role{
		{Name: model.RoleAdmin, Description: "Full system access"},
		{Name: model.RoleUser, Description: "Standard user access"},
	}

	for _, role := range roles {
		var count int64
		if err := gormDB.Model(&model.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		role.ID = uuid.NewString()
		if err := gormDB.Create(&role).Error; err != nil {
			return err
		}
		log.Printf("seeded role: %s", role.Name)
	}

	return nil
}

func seedAdminUser(gormDB *gorm.DB) error {
	const adminEmail = "admin@example.com"

	var count int64
	if err := gormDB.Model(&model.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// 初期パスワード。運用では必ず変更する。
	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var roles []model.Role
	if err := gormDB.Where("name IN ?", []string{model.RoleAdmin, model.RoleUser}).Find(&roles).Error; err != nil {
		return err
	}

	admin := model.User{
		ID:             uuid.NewString(),
		Email:          adminEmail,
		PasswordHash:   string(hash),
		DisplayName:    "Administrator",
		IsActive:       true,
		EmailConfirmed: true,
		Roles:          roles,
	}

	if err := gormDB.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("seeded admin user: %s", adminEmail)
	return nil
}

// 最低限のメニュー（ダッシュボード + 管理セクション）。
func seedMenu(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&model.MenuSection{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()

	home := model.MenuSection{
		ID:             uuid.NewString(),
		Name:           "Home",
		Icon:           "home",
		DisplayOrder:   1,
		IsActive:       true,
		IsVisibleToAll: true,
		CreatedAt:      now,
	}
	adminSection := model.MenuSection{
		ID:           uuid.NewString(),
		Name:         "Administration",
		Icon:         "settings",
		DisplayOrder: 2,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := gormDB.Create(&[]model.MenuSection{home, adminSection}).Error; err != nil {
		return err
	}

	dashboardRoute := "/dashboard"
	usersRoute := "/admin/users"
	menuRoute := "/admin/menu"

	dashboard := model.MenuItem{
		ID:             uuid.NewString(),
		SectionID:      home.ID,
		Name:           "Dashboard",
		Icon:           "dashboard",
		Route:          &dashboardRoute,
		DisplayOrder:   1,
		IsActive:       true,
		IsVisibleToAll: true,
		CreatedAt:      now,
	}
	users := model.MenuItem{
		ID:           uuid.NewString(),
		SectionID:    adminSection.ID,
		Name:         "Users",
		Icon:         "people",
		Route:        &usersRoute,
		DisplayOrder: 1,
		IsActive:     true,
		CreatedAt:    now,
	}
	menuAdmin := model.MenuItem{
		ID:           uuid.NewString(),
		SectionID:    adminSection.ID,
		Name:         "Menu Settings",
		Icon:         "menu",
		Route:        &menuRoute,
		DisplayOrder: 2,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := gormDB.Create(&[]model.MenuItem{dashboard, users, menuAdmin}).Error; err != nil {
		return err
	}

	actions := []model.PageAction{
		{ID: uuid.NewString(), OwnerID: users.ID, OwnerKind: model.OwnerItem, Code: "create", Name: "Create user", DisplayOrder: 1, IsActive: true, CreatedAt: now},
		{ID: uuid.NewString(), OwnerID: users.ID, OwnerKind: model.OwnerItem, Code: "edit", Name: "Edit user", DisplayOrder: 2, IsActive: true, CreatedAt: now},
		{ID: uuid.NewString(), OwnerID: users.ID, OwnerKind: model.OwnerItem, Code: "delete", Name: "Delete user", DisplayOrder: 3, IsActive: true, CreatedAt: now},
	}
	if err := gormDB.Create(&actions).Error; err != nil {
		return err
	}

	// Adminロールには管理セクション一式とアクションを許可しておく
	var adminRole model.Role
	if err := gormDB.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	grants := []model.RoleMenuAccess{
		{ID: uuid.NewString(), RoleID: adminRole.ID, TargetID: adminSection.ID, TargetKind: model.TargetSection, HasAccess: true, CreatedAt: now},
		{ID: uuid.NewString(), RoleID: adminRole.ID, TargetID: users.ID, TargetKind: model.TargetItem, HasAccess: true, CreatedAt: now},
		{ID: uuid.NewString(), RoleID: adminRole.ID, TargetID: menuAdmin.ID, TargetKind: model.TargetItem, HasAccess: true, CreatedAt: now},
	}
	if err := gormDB.Create(&grants).Error; err != nil {
		return err
	}

	actionGrants := make([]model.RoleActionAccess, 0, len(actions))
	for _, a := range actions {
		actionGrants = append(actionGrants, model.RoleActionAccess{
			ID:        uuid.NewString(),
			RoleID:    adminRole.ID,
			ActionID:  a.ID,
			IsEnabled: true,
			CreatedAt: now,
		})
	}
	if err := gormDB.Create(&actionGrants).Error; err != nil {
		return err
	}

	log.Print("seeded initial menu")
	return nil
}
