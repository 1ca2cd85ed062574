package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrRoleNotFound = errors.New("role not found")

// ロールの取得を約束
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	FindByID(ctx context.Context, roleID string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	// ロール名の集合をIDの集合に引き当てる。未知の名前は黙って落とす。
	FindIDsByNames(ctx context.Context, names []string) ([]string, error)
}
