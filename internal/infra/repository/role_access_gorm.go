package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"gorm.io/gorm"
)

type roleAccessGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewRoleAccessGormRepository(db *gorm.DB) domainrepo.RoleAccessRepository {
	return &roleAccessGormRepository{db: db}
}

// ロール集合に対するhas_access=trueのグラント一覧。
func (r *roleAccessGormRepository) ListGrantedMenuTargets(ctx context.Context, roleIDs []string) ([]model.RoleMenuAccess, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var grants []model.RoleMenuAccess
	err := r.db.WithContext(ctx).
		Where("role_id IN ? AND has_access = ?", roleIDs, true).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ロール集合に対するis_enabled=trueのアクションID一覧。
func (r *roleAccessGormRepository) ListEnabledActionIDs(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.RoleActionAccess{}).
		Where("role_id IN ? AND is_enabled = ?", roleIDs, true).
		Distinct().
		Pluck("action_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// 対象ノード1件に対するグラント有無。
func (r *roleAccessGormRepository) HasMenuGrant(ctx context.Context, roleIDs []string, targetID string, targetKind model.MenuTargetKind) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RoleMenuAccess{}).
		Where("role_id IN ? AND target_id = ? AND target_kind = ? AND has_access = ?",
			roleIDs, targetID, targetKind, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 対象アクション1件に対するグラント有無。
func (r *roleAccessGormRepository) HasActionGrant(ctx context.Context, roleIDs []string, actionID string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RoleActionAccess{}).
		Where("role_id IN ? AND action_id = ? AND is_enabled = ?", roleIDs, actionID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *roleAccessGormRepository) ListMenuAccessByRole(ctx context.Context, roleID string) ([]model.RoleMenuAccess, error) {
	var grants []model.RoleMenuAccess
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *roleAccessGormRepository) ListActionAccessByRole(ctx context.Context, roleID string) ([]model.RoleActionAccess, error) {
	var grants []model.RoleActionAccess
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// (role, target)で既存行を探して上書き。なければ挿入。
// ユニーク制約と同じキーで引くので、重複行は積み上がらない。
func (r *roleAccessGormRepository) UpsertMenuAccess(ctx context.Context, access *model.RoleMenuAccess) error {
	var existing model.RoleMenuAccess

	err := r.db.WithContext(ctx).
		Where("role_id = ? AND target_id = ? AND target_kind = ?",
			access.RoleID, access.TargetID, access.TargetKind).
		First(&existing).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(access).Error
		}
		return err
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.RoleMenuAccess{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"has_access": access.HasAccess,
			"updated_at": &now,
		}).Error
}

// (role, action)で既存行を探して上書き。なければ挿入。
func (r *roleAccessGormRepository) UpsertActionAccess(ctx context.Context, access *model.RoleActionAccess) error {
	var existing model.RoleActionAccess

	err := r.db.WithContext(ctx).
		Where("role_id = ? AND action_id = ?", access.RoleID, access.ActionID).
		First(&existing).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(access).Error
		}
		return err
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.RoleActionAccess{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"is_enabled": access.IsEnabled,
			"updated_at": &now,
		}).Error
}
