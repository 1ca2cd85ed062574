package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrSectionNotFound = errors.New("menu section not found")
	ErrItemNotFound    = errors.New("menu item not found")
	ErrSubItemNotFound = errors.New("menu sub item not found")
	ErrActionNotFound  = errors.New("page action not found")
)

// メニューツリーの読み取りと管理CRUDを約束。
// 一覧はすべてdisplay_order昇順（同値はDBの安定順のまま）。
type MenuRepository interface {
	// resolver用：activeな行だけ
	ListActiveSections(ctx context.Context) ([]model.MenuSection, error)
	ListActiveItems(ctx context.Context) ([]model.MenuItem, error)
	ListActiveSubItems(ctx context.Context) ([]model.MenuSubItem, error)
	ListActiveActions(ctx context.Context) ([]model.PageAction, error)
	// routeの完全一致でactiveなノードを1件引く。なければErrXxxNotFound。
	FindActiveItemByRoute(ctx context.Context, route string) (*model.MenuItem, error)
	FindActiveSubItemByRoute(ctx context.Context, route string) (*model.MenuSubItem, error)
	// オーナーノード配下のactiveなアクション一覧。
	ListActiveActionsByOwner(ctx context.Context, ownerID string, ownerKind model.ActionOwnerKind) ([]model.PageAction, error)

	// 管理画面用：active/inactive問わず全件
	ListSections(ctx context.Context) ([]model.MenuSection, error)
	ListItems(ctx context.Context) ([]model.MenuItem, error)
	ListSubItems(ctx context.Context) ([]model.MenuSubItem, error)
	ListActions(ctx context.Context) ([]model.PageAction, error)

	// 管理CRUD（存在しないIDの更新・削除はErrXxxNotFound）
	CreateSection(ctx context.Context, s *model.MenuSection) error
	UpdateSection(ctx context.Context, s *model.MenuSection) error
	DeleteSection(ctx context.Context, sectionID string) error
	FindSectionByID(ctx context.Context, sectionID string) (*model.MenuSection, error)
	CreateItem(ctx context.Context, i *model.MenuItem) error
	UpdateItem(ctx context.Context, i *model.MenuItem) error
	DeleteItem(ctx context.Context, itemID string) error
	FindItemByID(ctx context.Context, itemID string) (*model.MenuItem, error)
	CreateSubItem(ctx context.Context, s *model.MenuSubItem) error
	UpdateSubItem(ctx context.Context, s *model.MenuSubItem) error
	DeleteSubItem(ctx context.Context, subItemID string) error
	FindSubItemByID(ctx context.Context, subItemID string) (*model.MenuSubItem, error)
	CreateAction(ctx context.Context, a *model.PageAction) error
	UpdateAction(ctx context.Context, a *model.PageAction) error
	DeleteAction(ctx context.Context, actionID string) error
	FindActionByID(ctx context.Context, actionID string) (*model.PageAction, error)
}
