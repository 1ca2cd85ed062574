package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminUC(roles *MockRoleRepository, menu *MockMenuRepository, access *MockRoleAccessRepository) *MenuAdminUsecase {
	return NewMenuAdminUsecase(roles, menu, access, &seqIDGen{prefix: "id"}, &fixedClock{t: testNow})
}

func TestMenuAdminUsecase_CreateItem_ParentNotFound(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("FindSectionByID", mock.Anything, "missing").Return(nil, repo.ErrSectionNotFound)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	_, err := u.CreateItem(ctx, model.MenuItem{SectionID: "missing", Name: "Orphan"})
	assert.ErrorIs(t, err, ErrNotFound)
	menuRepo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestMenuAdminUsecase_CreateSubItem_RouteRequired(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	_, err := u.CreateSubItem(ctx, model.MenuSubItem{ItemID: "i1", Name: "NoRoute"})
	assert.ErrorIs(t, err, ErrValidation)
	menuRepo.AssertNotCalled(t, "CreateSubItem", mock.Anything, mock.Anything)
}

func TestMenuAdminUsecase_CreateSubItem_Success(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("FindItemByID", mock.Anything, "i1").Return(&model.MenuItem{ID: "i1"}, nil)
	menuRepo.On("CreateSubItem", mock.Anything, mock.MatchedBy(func(s *model.MenuSubItem) bool {
		return s.ID != "" && s.ItemID == "i1" && s.Route == "/users/import" && s.CreatedAt.Equal(testNow)
	})).Return(nil)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	id, err := u.CreateSubItem(ctx, model.MenuSubItem{ItemID: "i1", Name: "Import", Route: "/users/import"})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	menuRepo.AssertExpectations(t)
}

func TestMenuAdminUsecase_CreateAction_InvalidOwnerKind(t *testing.T) {
	ctx := context.Background()

	u := newAdminUC(new(MockRoleRepository), new(MockMenuRepository), new(MockRoleAccessRepository))

	_, err := u.CreateAction(ctx, model.PageAction{OwnerID: "i1", OwnerKind: "SECTION", Code: "create"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMenuAdminUsecase_CreateAction_SubItemOwner(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("FindSubItemByID", mock.Anything, "x1").Return(&model.MenuSubItem{ID: "x1"}, nil)
	menuRepo.On("CreateAction", mock.Anything, mock.MatchedBy(func(a *model.PageAction) bool {
		return a.OwnerID == "x1" && a.OwnerKind == model.OwnerSubItem
	})).Return(nil)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	id, err := u.CreateAction(ctx, model.PageAction{OwnerID: "x1", OwnerKind: model.OwnerSubItem, Code: "export", Name: "Export"})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestMenuAdminUsecase_UpdateAction_NotFound(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("FindActionByID", mock.Anything, "missing").Return(nil, repo.ErrActionNotFound)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	err := u.UpdateAction(ctx, model.PageAction{ID: "missing", Code: "create"})
	assert.ErrorIs(t, err, ErrNotFound)
	menuRepo.AssertNotCalled(t, "UpdateAction", mock.Anything, mock.Anything)
}

func TestMenuAdminUsecase_UpdateAction_PreservesOwner(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("FindActionByID", mock.Anything, "a1").Return(&model.PageAction{
		ID: "a1", OwnerID: "i1", OwnerKind: model.OwnerItem, Code: "create", IsActive: true,
	}, nil)
	// bodyでownerを省略しても既存のownerが維持される
	menuRepo.On("UpdateAction", mock.Anything, mock.MatchedBy(func(a *model.PageAction) bool {
		return a.ID == "a1" && a.OwnerID == "i1" && a.OwnerKind == model.OwnerItem &&
			a.Code == "create" && a.UpdatedAt != nil && a.UpdatedAt.Equal(testNow)
	})).Return(nil)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	err := u.UpdateAction(ctx, model.PageAction{ID: "a1", Code: "create", Name: "Create"})
	assert.NoError(t, err)
	menuRepo.AssertExpectations(t)
}

func TestMenuAdminUsecase_UpdateSection_NotFound(t *testing.T) {
	ctx := context.Background()

	menuRepo := new(MockMenuRepository)
	menuRepo.On("UpdateSection", mock.Anything, mock.AnythingOfType("*model.MenuSection")).Return(repo.ErrSectionNotFound)

	u := newAdminUC(new(MockRoleRepository), menuRepo, new(MockRoleAccessRepository))

	err := u.UpdateSection(ctx, model.MenuSection{ID: "missing", Name: "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// =====================
// ロール権限
// =====================

func TestMenuAdminUsecase_UpdateRolePermissions_Upserts(t *testing.T) {
	ctx := context.Background()

	roleRepo := new(MockRoleRepository)
	accessRepo := new(MockRoleAccessRepository)

	roleRepo.On("FindByID", mock.Anything, "role-user").Return(&model.Role{ID: "role-user", Name: model.RoleUser}, nil)

	// 同じ(role, target)への更新は行を増やさずupsertに流す
	accessRepo.On("UpsertMenuAccess", mock.Anything, mock.MatchedBy(func(a *model.RoleMenuAccess) bool {
		return a.RoleID == "role-user" && a.TargetID == "s1" && a.TargetKind == model.TargetSection && a.HasAccess
	})).Return(nil)
	accessRepo.On("UpsertActionAccess", mock.Anything, mock.MatchedBy(func(a *model.RoleActionAccess) bool {
		return a.RoleID == "role-user" && a.ActionID == "a1" && !a.IsEnabled
	})).Return(nil)

	u := newAdminUC(roleRepo, new(MockMenuRepository), accessRepo)

	err := u.UpdateRolePermissions(ctx, "role-user", UpdateRolePermissionsInput{
		MenuAccess: []MenuAccessUpdate{
			{TargetID: "s1", TargetKind: model.TargetSection, HasAccess: true},
		},
		ActionAccess: []ActionAccessUpdate{
			{ActionID: "a1", IsEnabled: false},
		},
	})
	assert.NoError(t, err)
	accessRepo.AssertExpectations(t)
}

func TestMenuAdminUsecase_UpdateRolePermissions_RoleNotFound(t *testing.T) {
	ctx := context.Background()

	roleRepo := new(MockRoleRepository)
	accessRepo := new(MockRoleAccessRepository)

	roleRepo.On("FindByID", mock.Anything, "missing").Return(nil, repo.ErrRoleNotFound)

	u := newAdminUC(roleRepo, new(MockMenuRepository), accessRepo)

	err := u.UpdateRolePermissions(ctx, "missing", UpdateRolePermissionsInput{
		MenuAccess: []MenuAccessUpdate{{TargetID: "s1", TargetKind: model.TargetSection, HasAccess: true}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	accessRepo.AssertNotCalled(t, "UpsertMenuAccess", mock.Anything, mock.Anything)
}

func TestMenuAdminUsecase_GetRolePermissions_Flags(t *testing.T) {
	ctx := context.Background()

	roleRepo := new(MockRoleRepository)
	menuRepo := new(MockMenuRepository)
	accessRepo := new(MockRoleAccessRepository)

	roleRepo.On("FindByID", mock.Anything, "role-user").Return(&model.Role{ID: "role-user", Name: model.RoleUser}, nil)

	menuRepo.On("ListSections", mock.Anything).Return([]model.MenuSection{
		{ID: "s1", Name: "Admin"},
	}, nil)
	menuRepo.On("ListItems", mock.Anything).Return([]model.MenuItem{
		{ID: "i1", SectionID: "s1", Name: "Users", Route: strPtr("/users")},
	}, nil)
	menuRepo.On("ListSubItems", mock.Anything).Return([]model.MenuSubItem{}, nil)
	menuRepo.On("ListActions", mock.Anything).Return([]model.PageAction{
		{ID: "a1", OwnerID: "i1", OwnerKind: model.OwnerItem, Code: "create", Name: "Create"},
	}, nil)

	accessRepo.On("ListMenuAccessByRole", mock.Anything, "role-user").Return([]model.RoleMenuAccess{
		{RoleID: "role-user", TargetID: "s1", TargetKind: model.TargetSection, HasAccess: true},
		// has_access=falseの行はグラント扱いしない
		{RoleID: "role-user", TargetID: "i1", TargetKind: model.TargetItem, HasAccess: false},
	}, nil)
	accessRepo.On("ListActionAccessByRole", mock.Anything, "role-user").Return([]model.RoleActionAccess{
		{RoleID: "role-user", ActionID: "a1", IsEnabled: true},
	}, nil)

	u := newAdminUC(roleRepo, menuRepo, accessRepo)

	perms, err := u.GetRolePermissions(ctx, "role-user")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleUser, perms.RoleName)
	assert.Len(t, perms.Sections, 1)
	assert.True(t, perms.Sections[0].HasAccess)
	assert.Len(t, perms.Sections[0].Items, 1)
	assert.False(t, perms.Sections[0].Items[0].HasAccess)
	assert.True(t, perms.Sections[0].Items[0].Actions[0].IsEnabled)
}
