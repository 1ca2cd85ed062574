package repository

import (
	"app/internal/domain/model"
	domainrepo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type roleGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewRoleGormRepository(db *gorm.DB) domainrepo.RoleRepository {
	return &roleGormRepository{db: db}
}

func (r *roleGormRepository) Create(ctx context.Context, role *model.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return err
	}
	return nil
}

func (r *roleGormRepository) FindByID(ctx context.Context, roleID string) (*model.Role, error) {
	var role model.Role

	err := r.db.WithContext(ctx).
		Where("id = ?", roleID).
		First(&role).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrRoleNotFound
		}
		return nil, err
	}

	return &role, nil
}

func (r *roleGormRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role

	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrRoleNotFound
		}
		return nil, err
	}

	return &role, nil
}

// ロール名の集合をID集合に引き当てる。未知の名前は結果に出ないだけ。
func (r *roleGormRepository) FindIDsByNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Where("name IN ?", names).
		Pluck("id", &ids).Error

	if err != nil {
		return nil, err
	}

	return ids, nil
}
