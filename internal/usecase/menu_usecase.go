package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 解決済みメニュー。呼び出したユーザーのロール集合に見える部分だけが入る。
type UserMenuDTO struct {
	Sections []UserMenuSectionDTO `json:"sections"`
}

type UserMenuSectionDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Icon         string            `json:"icon"`
	DisplayOrder int               `json:"displayOrder"`
	Items        []UserMenuItemDTO `json:"items"`
}

type UserMenuItemDTO struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Icon         string               `json:"icon"`
	Route        *string              `json:"route"`
	DisplayOrder int                  `json:"displayOrder"`
	Actions      []string             `json:"actions"`
	SubItems     []UserMenuSubItemDTO `json:"subItems"`
}

type UserMenuSubItemDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	Route        string   `json:"route"`
	DisplayOrder int      `json:"displayOrder"`
	Actions      []string `json:"actions"`
}

// MenuUsecaseはロール集合に対するメニュー解決と権限の点の照会。
// 読み取りだけ。ロールは必ず引数で受け取る（グローバルに持たない）。
type MenuUsecase struct {
	roles  repository.RoleRepository
	menu   repository.MenuRepository
	access repository.RoleAccessRepository
}

func NewMenuUsecase(
	roles repository.RoleRepository,
	menu repository.MenuRepository,
	access repository.RoleAccessRepository,
) *MenuUsecase {
	return &MenuUsecase{
		roles:  roles,
		menu:   menu,
		access: access,
	}
}

// ResolveUserMenuはロール集合に見えるメニューツリーを組み立てる。
// 可視の条件：ノードがactiveで、（visible_to_all か グラントあり）。
// 親が見えなければ子は見えない。ロール集合は和集合（どれか1つのロールで見えれば見える）。
func (u *MenuUsecase) ResolveUserMenu(ctx context.Context, roleNames []string) (*UserMenuDTO, error) {
	roleIDs, err := u.roles.FindIDsByNames(ctx, roleNames)
	if err != nil {
		return nil, err
	}

	sections, err := u.menu.ListActiveSections(ctx)
	if err != nil {
		return nil, err
	}
	items, err := u.menu.ListActiveItems(ctx)
	if err != nil {
		return nil, err
	}
	subItems, err := u.menu.ListActiveSubItems(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := u.menu.ListActiveActions(ctx)
	if err != nil {
		return nil, err
	}

	grants, err := u.access.ListGrantedMenuTargets(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	enabledActionIDs, err := u.access.ListEnabledActionIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	granted := buildGrantSet(grants)
	enabled := make(map[string]bool, len(enabledActionIDs))
	for _, id := range enabledActionIDs {
		enabled[id] = true
	}

	//親IDごとに子をまとめる（一覧はdisplay_order昇順で来るので順序はそのまま）
	itemsBySection := make(map[string][]model.MenuItem)
	for _, it := range items {
		itemsBySection[it.SectionID] = append(itemsBySection[it.SectionID], it)
	}
	subItemsByItem := make(map[string][]model.MenuSubItem)
	for _, si := range subItems {
		subItemsByItem[si.ItemID] = append(subItemsByItem[si.ItemID], si)
	}
	actionsByOwner := make(map[string][]model.PageAction)
	for _, a := range actions {
		key := string(a.OwnerKind) + ":" + a.OwnerID
		actionsByOwner[key] = append(actionsByOwner[key], a)
	}

	result := &UserMenuDTO{Sections: []UserMenuSectionDTO{}}

	for _, section := range sections {
		//セクションが見えなければ配下は全部見えない
		if !section.IsVisibleToAll && !granted[grantKey(model.TargetSection, section.ID)] {
			continue
		}

		sectionDTO := UserMenuSectionDTO{
			ID:           section.ID,
			Name:         section.Name,
			Icon:         section.Icon,
			DisplayOrder: section.DisplayOrder,
			Items:        []UserMenuItemDTO{},
		}

		for _, item := range itemsBySection[section.ID] {
			if !item.IsVisibleToAll && !granted[grantKey(model.TargetItem, item.ID)] {
				continue
			}

			itemDTO := UserMenuItemDTO{
				ID:           item.ID,
				Name:         item.Name,
				Icon:         item.Icon,
				Route:        item.Route,
				DisplayOrder: item.DisplayOrder,
				Actions:      enabledCodes(actionsByOwner[string(model.OwnerItem)+":"+item.ID], enabled),
				SubItems:     []UserMenuSubItemDTO{},
			}

			for _, subItem := range subItemsByItem[item.ID] {
				if !subItem.IsVisibleToAll && !granted[grantKey(model.TargetSubItem, subItem.ID)] {
					continue
				}

				itemDTO.SubItems = append(itemDTO.SubItems, UserMenuSubItemDTO{
					ID:           subItem.ID,
					Name:         subItem.Name,
					Icon:         subItem.Icon,
					Route:        subItem.Route,
					DisplayOrder: subItem.DisplayOrder,
					Actions:      enabledCodes(actionsByOwner[string(model.OwnerSubItem)+":"+subItem.ID], enabled),
				})
			}

			//routeを持たないItemは、見えるSubItemが残らなければ出さない
			if item.Route == nil && len(itemDTO.SubItems) == 0 {
				continue
			}

			sectionDTO.Items = append(sectionDTO.Items, itemDTO)
		}

		//空になったSectionは出さない（Sectionはrouteを持たないので必ずこの規則が効く）
		if len(sectionDTO.Items) == 0 {
			continue
		}

		result.Sections = append(result.Sections, sectionDTO)
	}

	return result, nil
}

// HasRouteAccessはrouteの完全一致でノードを引いて、ロール集合で見えるかを返す。
// 一致するactiveなノードが無ければfalse。
func (u *MenuUsecase) HasRouteAccess(ctx context.Context, roleNames []string, route string) (bool, error) {
	roleIDs, err := u.roles.FindIDsByNames(ctx, roleNames)
	if err != nil {
		return false, err
	}

	item, err := u.menu.FindActiveItemByRoute(ctx, route)
	if err != nil && !errors.Is(err, repository.ErrItemNotFound) {
		return false, err
	}
	if item != nil {
		if item.IsVisibleToAll {
			return true, nil
		}
		return u.access.HasMenuGrant(ctx, roleIDs, item.ID, model.TargetItem)
	}

	subItem, err := u.menu.FindActiveSubItemByRoute(ctx, route)
	if err != nil {
		if errors.Is(err, repository.ErrSubItemNotFound) {
			return false, nil
		}
		return false, err
	}

	if subItem.IsVisibleToAll {
		return true, nil
	}
	return u.access.HasMenuGrant(ctx, roleIDs, subItem.ID, model.TargetSubItem)
}

// CanPerformActionは(route, actionCode)でアクションを引いて、有効なグラントがあるかを返す。
// ノードかアクションがinactiveならグラントに関わらずfalse。
func (u *MenuUsecase) CanPerformAction(ctx context.Context, roleNames []string, route string, actionCode string) (bool, error) {
	roleIDs, err := u.roles.FindIDsByNames(ctx, roleNames)
	if err != nil {
		return false, err
	}

	action, err := u.findActiveActionByRoute(ctx, route, actionCode)
	if err != nil {
		return false, err
	}
	if action == nil {
		return false, nil
	}

	return u.access.HasActionGrant(ctx, roleIDs, action.ID)
}

// routeに一致するactiveなItem/SubItemを探し、その配下からcodeの一致するactiveなアクションを引く。
func (u *MenuUsecase) findActiveActionByRoute(ctx context.Context, route string, actionCode string) (*model.PageAction, error) {
	item, err := u.menu.FindActiveItemByRoute(ctx, route)
	if err != nil && !errors.Is(err, repository.ErrItemNotFound) {
		return nil, err
	}
	if item != nil {
		return u.pickAction(ctx, item.ID, model.OwnerItem, actionCode)
	}

	subItem, err := u.menu.FindActiveSubItemByRoute(ctx, route)
	if err != nil {
		if errors.Is(err, repository.ErrSubItemNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return u.pickAction(ctx, subItem.ID, model.OwnerSubItem, actionCode)
}

func (u *MenuUsecase) pickAction(ctx context.Context, ownerID string, ownerKind model.ActionOwnerKind, actionCode string) (*model.PageAction, error) {
	actions, err := u.menu.ListActiveActionsByOwner(ctx, ownerID, ownerKind)
	if err != nil {
		return nil, err
	}

	for i := range actions {
		if actions[i].Code == actionCode {
			return &actions[i], nil
		}
	}
	return nil, nil
}

func grantKey(kind model.MenuTargetKind, targetID string) string {
	return string(kind) + ":" + targetID
}

func buildGrantSet(grants []model.RoleMenuAccess) map[string]bool {
	set := make(map[string]bool, len(grants))
	for _, g := range grants {
		set[grantKey(g.TargetKind, g.TargetID)] = true
	}
	return set
}

// ownerのアクションのうち、ロール集合で有効なもののcodeだけ返す。
func enabledCodes(actions []model.PageAction, enabled map[string]bool) []string {
	codes := []string{}
	for _, a := range actions {
		if enabled[a.ID] {
			codes = append(codes, a.Code)
		}
	}
	return codes
}
