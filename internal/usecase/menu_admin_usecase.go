package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 管理画面用：グラントに関係なくツリー全体を返す。
type MenuStructureDTO struct {
	Sections []MenuSectionDTO `json:"sections"`
}

type MenuSectionDTO struct {
	model.MenuSection
	Items []MenuItemDTO `json:"items"`
}

type MenuItemDTO struct {
	model.MenuItem
	Actions  []model.PageAction `json:"actions"`
	SubItems []MenuSubItemDTO   `json:"subItems"`
}

type MenuSubItemDTO struct {
	model.MenuSubItem
	Actions []model.PageAction `json:"actions"`
}

// 管理画面用：ロール1件の視点でツリーに可否フラグを付けたもの。
type RolePermissionsDTO struct {
	RoleID   string                 `json:"roleId"`
	RoleName string                 `json:"roleName"`
	Sections []SectionPermissionDTO `json:"sections"`
}

type SectionPermissionDTO struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	HasAccess      bool                `json:"hasAccess"`
	IsVisibleToAll bool                `json:"isVisibleToAll"`
	Items          []ItemPermissionDTO `json:"items"`
}

type ItemPermissionDTO struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Route          *string                `json:"route"`
	HasAccess      bool                   `json:"hasAccess"`
	IsVisibleToAll bool                   `json:"isVisibleToAll"`
	Actions        []ActionPermissionDTO  `json:"actions"`
	SubItems       []SubItemPermissionDTO `json:"subItems"`
}

type SubItemPermissionDTO struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Route          string                `json:"route"`
	HasAccess      bool                  `json:"hasAccess"`
	IsVisibleToAll bool                  `json:"isVisibleToAll"`
	Actions        []ActionPermissionDTO `json:"actions"`
}

type ActionPermissionDTO struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsEnabled bool   `json:"isEnabled"`
}

type MenuAccessUpdate struct {
	TargetID   string               `json:"targetId"`
	TargetKind model.MenuTargetKind `json:"targetKind"`
	HasAccess  bool                 `json:"hasAccess"`
}

type ActionAccessUpdate struct {
	ActionID  string `json:"actionId"`
	IsEnabled bool   `json:"isEnabled"`
}

type UpdateRolePermissionsInput struct {
	MenuAccess   []MenuAccessUpdate   `json:"menuAccess"`
	ActionAccess []ActionAccessUpdate `json:"actionAccess"`
}

// MenuAdminUsecaseはメニュー構造のCRUDとロール権限の管理。
// ロジックは薄い。親の存在チェックとグラントのupsertだけ。
type MenuAdminUsecase struct {
	roles  repository.RoleRepository
	menu   repository.MenuRepository
	access repository.RoleAccessRepository
	idGen  IDGenerator
	clock  Clock
}

func NewMenuAdminUsecase(
	roles repository.RoleRepository,
	menu repository.MenuRepository,
	access repository.RoleAccessRepository,
	idGen IDGenerator,
	clock Clock,
) *MenuAdminUsecase {
	return &MenuAdminUsecase{
		roles:  roles,
		menu:   menu,
		access: access,
		idGen:  idGen,
		clock:  clock,
	}
}

// GetMenuStructureはactive/inactive問わず全ノードを返す。
func (u *MenuAdminUsecase) GetMenuStructure(ctx context.Context) (*MenuStructureDTO, error) {
	sections, err := u.menu.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	items, err := u.menu.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	subItems, err := u.menu.ListSubItems(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := u.menu.ListActions(ctx)
	if err != nil {
		return nil, err
	}

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

	result := &MenuStructureDTO{Sections: []MenuSectionDTO{}}
	for _, section := range sections {
		sectionDTO := MenuSectionDTO{MenuSection: section, Items: []MenuItemDTO{}}

		for _, item := range itemsBySection[section.ID] {
			itemDTO := MenuItemDTO{
				MenuItem: item,
				Actions:  ownerActions(actionsByOwner, model.OwnerItem, item.ID),
				SubItems: []MenuSubItemDTO{},
			}
			for _, subItem := range subItemsByItem[item.ID] {
				itemDTO.SubItems = append(itemDTO.SubItems, MenuSubItemDTO{
					MenuSubItem: subItem,
					Actions:     ownerActions(actionsByOwner, model.OwnerSubItem, subItem.ID),
				})
			}
			sectionDTO.Items = append(sectionDTO.Items, itemDTO)
		}

		result.Sections = append(result.Sections, sectionDTO)
	}

	return result, nil
}

// ---------- ツリーCRUD（薄いラッパー） ----------

func (u *MenuAdminUsecase) CreateSection(ctx context.Context, s model.MenuSection) (string, error) {
	s.ID = u.idGen.NewID()
	s.CreatedAt = u.clock.Now()
	if err := u.menu.CreateSection(ctx, &s); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (u *MenuAdminUsecase) UpdateSection(ctx context.Context, s model.MenuSection) error {
	now := u.clock.Now()
	s.UpdatedAt = &now
	if err := u.menu.UpdateSection(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrSectionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) DeleteSection(ctx context.Context, sectionID string) error {
	if err := u.menu.DeleteSection(ctx, sectionID); err != nil {
		if errors.Is(err, repository.ErrSectionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) CreateItem(ctx context.Context, i model.MenuItem) (string, error) {
	//親Sectionの存在チェック
	if _, err := u.menu.FindSectionByID(ctx, i.SectionID); err != nil {
		if errors.Is(err, repository.ErrSectionNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	i.ID = u.idGen.NewID()
	i.CreatedAt = u.clock.Now()
	if err := u.menu.CreateItem(ctx, &i); err != nil {
		return "", err
	}
	return i.ID, nil
}

func (u *MenuAdminUsecase) UpdateItem(ctx context.Context, i model.MenuItem) error {
	now := u.clock.Now()
	i.UpdatedAt = &now
	if err := u.menu.UpdateItem(ctx, &i); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) DeleteItem(ctx context.Context, itemID string) error {
	if err := u.menu.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) CreateSubItem(ctx context.Context, s model.MenuSubItem) (string, error) {
	//SubItemのrouteは必須
	if s.Route == "" {
		return "", ErrValidation
	}

	//親Itemの存在チェック
	if _, err := u.menu.FindItemByID(ctx, s.ItemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	s.ID = u.idGen.NewID()
	s.CreatedAt = u.clock.Now()
	if err := u.menu.CreateSubItem(ctx, &s); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (u *MenuAdminUsecase) UpdateSubItem(ctx context.Context, s model.MenuSubItem) error {
	if s.Route == "" {
		return ErrValidation
	}

	now := u.clock.Now()
	s.UpdatedAt = &now
	if err := u.menu.UpdateSubItem(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrSubItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) DeleteSubItem(ctx context.Context, subItemID string) error {
	if err := u.menu.DeleteSubItem(ctx, subItemID); err != nil {
		if errors.Is(err, repository.ErrSubItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) CreateAction(ctx context.Context, a model.PageAction) (string, error) {
	//オーナーはItemかSubItemのどちらか一方
	switch a.OwnerKind {
	case model.OwnerItem:
		if _, err := u.menu.FindItemByID(ctx, a.OwnerID); err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
	case model.OwnerSubItem:
		if _, err := u.menu.FindSubItemByID(ctx, a.OwnerID); err != nil {
			if errors.Is(err, repository.ErrSubItemNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
	default:
		return "", ErrValidation
	}

	a.ID = u.idGen.NewID()
	a.CreatedAt = u.clock.Now()
	if err := u.menu.CreateAction(ctx, &a); err != nil {
		return "", err
	}
	return a.ID, nil
}

func (u *MenuAdminUsecase) UpdateAction(ctx context.Context, a model.PageAction) error {
	current, err := u.menu.FindActionByID(ctx, a.ID)
	if err != nil {
		if errors.Is(err, repository.ErrActionNotFound) {
			return ErrNotFound
		}
		return err
	}

	//bodyでownerを省略したら現状維持
	if a.OwnerKind == "" {
		a.OwnerKind = current.OwnerKind
	}
	if a.OwnerID == "" {
		a.OwnerID = current.OwnerID
	}

	now := u.clock.Now()
	a.UpdatedAt = &now
	if err := u.menu.UpdateAction(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrActionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (u *MenuAdminUsecase) DeleteAction(ctx context.Context, actionID string) error {
	if err := u.menu.DeleteAction(ctx, actionID); err != nil {
		if errors.Is(err, repository.ErrActionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ---------- ロール権限 ----------

// GetRolePermissionsはロール1件の視点で全ツリーに可否を付けて返す。
func (u *MenuAdminUsecase) GetRolePermissions(ctx context.Context, roleID string) (*RolePermissionsDTO, error) {
	role, err := u.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	menuAccess, err := u.access.ListMenuAccessByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	actionAccess, err := u.access.ListActionAccessByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	structure, err := u.GetMenuStructure(ctx)
	if err != nil {
		return nil, err
	}

	hasAccess := make(map[string]bool, len(menuAccess))
	for _, ma := range menuAccess {
		if ma.HasAccess {
			hasAccess[grantKey(ma.TargetKind, ma.TargetID)] = true
		}
	}
	isEnabled := make(map[string]bool, len(actionAccess))
	for _, aa := range actionAccess {
		if aa.IsEnabled {
			isEnabled[aa.ActionID] = true
		}
	}

	result := &RolePermissionsDTO{
		RoleID:   role.ID,
		RoleName: role.Name,
		Sections: []SectionPermissionDTO{},
	}

	for _, s := range structure.Sections {
		sectionDTO := SectionPermissionDTO{
			ID:             s.ID,
			Name:           s.Name,
			HasAccess:      hasAccess[grantKey(model.TargetSection, s.ID)],
			IsVisibleToAll: s.IsVisibleToAll,
			Items:          []ItemPermissionDTO{},
		}

		for _, i := range s.Items {
			itemDTO := ItemPermissionDTO{
				ID:             i.ID,
				Name:           i.Name,
				Route:          i.Route,
				HasAccess:      hasAccess[grantKey(model.TargetItem, i.ID)],
				IsVisibleToAll: i.IsVisibleToAll,
				Actions:        actionPermissions(i.Actions, isEnabled),
				SubItems:       []SubItemPermissionDTO{},
			}

			for _, si := range i.SubItems {
				itemDTO.SubItems = append(itemDTO.SubItems, SubItemPermissionDTO{
					ID:             si.ID,
					Name:           si.Name,
					Route:          si.Route,
					HasAccess:      hasAccess[grantKey(model.TargetSubItem, si.ID)],
					IsVisibleToAll: si.IsVisibleToAll,
					Actions:        actionPermissions(si.Actions, isEnabled),
				})
			}

			sectionDTO.Items = append(sectionDTO.Items, itemDTO)
		}

		result.Sections = append(result.Sections, sectionDTO)
	}

	return result, nil
}

// UpdateRolePermissionsはグラントをまとめてupsertする。
// 既存の(role, target)/(role, action)行は上書き。重複キーはエラーにならず更新になる。
func (u *MenuAdminUsecase) UpdateRolePermissions(ctx context.Context, roleID string, in UpdateRolePermissionsInput) error {
	if _, err := u.roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := u.clock.Now()

	for _, ma := range in.MenuAccess {
		access := &model.RoleMenuAccess{
			ID:         u.idGen.NewID(),
			RoleID:     roleID,
			TargetID:   ma.TargetID,
			TargetKind: ma.TargetKind,
			HasAccess:  ma.HasAccess,
			CreatedAt:  now,
		}
		if err := u.access.UpsertMenuAccess(ctx, access); err != nil {
			return err
		}
	}

	for _, aa := range in.ActionAccess {
		access := &model.RoleActionAccess{
			ID:        u.idGen.NewID(),
			RoleID:    roleID,
			ActionID:  aa.ActionID,
			IsEnabled: aa.IsEnabled,
			CreatedAt: now,
		}
		if err := u.access.UpsertActionAccess(ctx, access); err != nil {
			return err
		}
	}

	return nil
}

func ownerActions(actionsByOwner map[string][]model.PageAction, kind model.ActionOwnerKind, ownerID string) []model.PageAction {
	actions := actionsByOwner[string(kind)+":"+ownerID]
	if actions == nil {
		return []model.PageAction{}
	}
	return actions
}

func actionPermissions(actions []model.PageAction, isEnabled map[string]bool) []ActionPermissionDTO {
	result := make([]ActionPermissionDTO, 0, len(actions))
	for _, a := range actions {
		result = append(result, ActionPermissionDTO{
			ID:        a.ID,
			Code:      a.Code,
			Name:      a.Name,
			IsEnabled: isEnabled[a.ID],
		})
	}
	return result
}
