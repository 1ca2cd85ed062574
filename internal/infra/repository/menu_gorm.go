package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"gorm.io/gorm"
)

type menuGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewMenuGormRepository(db *gorm.DB) domainrepo.MenuRepository {
	return &menuGormRepository{db: db}
}

// ---------- resolver用（activeのみ） ----------

func (r *menuGormRepository) ListActiveSections(ctx context.Context) ([]model.MenuSection, error) {
	var sections []model.MenuSection
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *menuGormRepository) ListActiveItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuGormRepository) ListActiveSubItems(ctx context.Context) ([]model.MenuSubItem, error) {
	var subItems []model.MenuSubItem
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&subItems).Error
	if err != nil {
		return nil, err
	}
	return subItems, nil
}

func (r *menuGormRepository) ListActiveActions(ctx context.Context) ([]model.PageAction, error) {
	var actions []model.PageAction
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// routeの完全一致でactiveなItemを1件。
func (r *menuGormRepository) FindActiveItemByRoute(ctx context.Context, route string) (*model.MenuItem, error) {
	var item model.MenuItem

	err := r.db.WithContext(ctx).
		Where("route = ? AND is_active = ?", route, true).
		First(&item).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrItemNotFound
		}
		return nil, err
	}

	return &item, nil
}

// routeの完全一致でactiveなSubItemを1件。
func (r *menuGormRepository) FindActiveSubItemByRoute(ctx context.Context, route string) (*model.MenuSubItem, error) {
	var subItem model.MenuSubItem

	err := r.db.WithContext(ctx).
		Where("route = ? AND is_active = ?", route, true).
		First(&subItem).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSubItemNotFound
		}
		return nil, err
	}

	return &subItem, nil
}

func (r *menuGormRepository) ListActiveActionsByOwner(ctx context.Context, ownerID string, ownerKind model.ActionOwnerKind) ([]model.PageAction, error) {
	var actions []model.PageAction
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND owner_kind = ? AND is_active = ?", ownerID, ownerKind, true).
		Order("display_order").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// ---------- 管理画面用（全件） ----------

func (r *menuGormRepository) ListSections(ctx context.Context) ([]model.MenuSection, error) {
	var sections []model.MenuSection
	if err := r.db.WithContext(ctx).Order("display_order").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *menuGormRepository) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := r.db.WithContext(ctx).Order("display_order").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuGormRepository) ListSubItems(ctx context.Context) ([]model.MenuSubItem, error) {
	var subItems []model.MenuSubItem
	if err := r.db.WithContext(ctx).Order("display_order").Find(&subItems).Error; err != nil {
		return nil, err
	}
	return subItems, nil
}

func (r *menuGormRepository) ListActions(ctx context.Context) ([]model.PageAction, error) {
	var actions []model.PageAction
	if err := r.db.WithContext(ctx).Order("display_order").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// ---------- 管理CRUD ----------

func (r *menuGormRepository) CreateSection(ctx context.Context, s *model.MenuSection) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *menuGormRepository) UpdateSection(ctx context.Context, s *model.MenuSection) error {
	result := r.db.WithContext(ctx).
		Model(&model.MenuSection{}).
		Where("id = ?", s.ID).
		Select("Name", "Icon", "DisplayOrder", "IsActive", "IsVisibleToAll", "UpdatedAt").
		Updates(s)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrSectionNotFound
	}
	return nil
}

func (r *menuGormRepository) DeleteSection(ctx context.Context, sectionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", sectionID).
		Delete(&model.MenuSection{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrSectionNotFound
	}
	return nil
}

func (r *menuGormRepository) FindSectionByID(ctx context.Context, sectionID string) (*model.MenuSection, error) {
	var s model.MenuSection
	err := r.db.WithContext(ctx).Where("id = ?", sectionID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSectionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *menuGormRepository) CreateItem(ctx context.Context, i *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *menuGormRepository) UpdateItem(ctx context.Context, i *model.MenuItem) error {
	result := r.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Where("id = ?", i.ID).
		Select("SectionID", "Name", "Icon", "Route", "DisplayOrder", "IsActive", "IsVisibleToAll", "UpdatedAt").
		Updates(i)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrItemNotFound
	}
	return nil
}

func (r *menuGormRepository) DeleteItem(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.MenuItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrItemNotFound
	}
	return nil
}

func (r *menuGormRepository) FindItemByID(ctx context.Context, itemID string) (*model.MenuItem, error) {
	var i model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrItemNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *menuGormRepository) CreateSubItem(ctx context.Context, s *model.MenuSubItem) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *menuGormRepository) UpdateSubItem(ctx context.Context, s *model.MenuSubItem) error {
	result := r.db.WithContext(ctx).
		Model(&model.MenuSubItem{}).
		Where("id = ?", s.ID).
		Select("ItemID", "Name", "Icon", "Route", "DisplayOrder", "IsActive", "IsVisibleToAll", "UpdatedAt").
		Updates(s)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrSubItemNotFound
	}
	return nil
}

func (r *menuGormRepository) DeleteSubItem(ctx context.Context, subItemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", subItemID).
		Delete(&model.MenuSubItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrSubItemNotFound
	}
	return nil
}

func (r *menuGormRepository) FindSubItemByID(ctx context.Context, subItemID string) (*model.MenuSubItem, error) {
	var s model.MenuSubItem
	err := r.db.WithContext(ctx).Where("id = ?", subItemID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSubItemNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *menuGormRepository) CreateAction(ctx context.Context, a *model.PageAction) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *menuGormRepository) UpdateAction(ctx context.Context, a *model.PageAction) error {
	result := r.db.WithContext(ctx).
		Model(&model.PageAction{}).
		Where("id = ?", a.ID).
		Select("OwnerID", "OwnerKind", "Code", "Name", "Description", "DisplayOrder", "IsActive", "UpdatedAt").
		Updates(a)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrActionNotFound
	}
	return nil
}

func (r *menuGormRepository) DeleteAction(ctx context.Context, actionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", actionID).
		Delete(&model.PageAction{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrActionNotFound
	}
	return nil
}

func (r *menuGormRepository) FindActionByID(ctx context.Context, actionID string) (*model.PageAction, error) {
	var a model.PageAction
	err := r.db.WithContext(ctx).Where("id = ?", actionID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrActionNotFound
		}
		return nil, err
	}
	return &a, nil
}
