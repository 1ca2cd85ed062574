package repository

import (
	"app/internal/domain/model"
	"context"
)

// ロール→ノード／ロール→アクションのグラントを約束
type RoleAccessRepository interface {
	// resolver用：ロール集合に対してhas_access=trueのグラント一覧
	ListGrantedMenuTargets(ctx context.Context, roleIDs []string) ([]model.RoleMenuAccess, error)
	// resolver用：ロール集合に対してis_enabled=trueのアクションID一覧
	ListEnabledActionIDs(ctx context.Context, roleIDs []string) ([]string, error)
	// 対象ノード1件にhas_access=trueのグラントがあるか
	HasMenuGrant(ctx context.Context, roleIDs []string, targetID string, targetKind model.MenuTargetKind) (bool, error)
	// 対象アクション1件にis_enabled=trueのグラントがあるか
	HasActionGrant(ctx context.Context, roleIDs []string, actionID string) (bool, error)

	// 管理画面用：ロール1件の全グラント（true/false問わず）
	ListMenuAccessByRole(ctx context.Context, roleID string) ([]model.RoleMenuAccess, error)
	ListActionAccessByRole(ctx context.Context, roleID string) ([]model.RoleActionAccess, error)
	// (role, target)が既にあれば上書き、なければ挿入。重複行は作らない。
	UpsertMenuAccess(ctx context.Context, access *model.RoleMenuAccess) error
	// (role, action)が既にあれば上書き、なければ挿入。
	UpsertActionAccess(ctx context.Context, access *model.RoleActionAccess) error
}
