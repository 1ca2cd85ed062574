package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// =====================
// Mock: RoleRepository
// =====================

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) FindByID(ctx context.Context, roleID string) (*model.Role, error) {
	args := m.Called(ctx, roleID)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRoleRepository) FindIDsByNames(ctx context.Context, names []string) ([]string, error) {
	args := m.Called(ctx, names)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

// =====================
// Mock: RefreshCredentialRepository
// =====================

type MockRefreshCredentialRepository struct {
	mock.Mock
}

func (m *MockRefreshCredentialRepository) Create(ctx context.Context, cred *model.RefreshCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockRefreshCredentialRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshCredential, error) {
	args := m.Called(ctx, tokenHash)
	c, _ := args.Get(0).(*model.RefreshCredential)
	return c, args.Error(1)
}

func (m *MockRefreshCredentialRepository) MarkRotated(ctx context.Context, credID string, rotatedAt time.Time) error {
	args := m.Called(ctx, credID, rotatedAt)
	return args.Error(0)
}

func (m *MockRefreshCredentialRepository) LinkReplacement(ctx context.Context, oldID string, newID string) error {
	args := m.Called(ctx, oldID, newID)
	return args.Error(0)
}

func (m *MockRefreshCredentialRepository) Revoke(ctx context.Context, credID string, revokedAt time.Time) error {
	args := m.Called(ctx, credID, revokedAt)
	return args.Error(0)
}

func (m *MockRefreshCredentialRepository) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	args := m.Called(ctx, userID, revokedAt)
	return args.Error(0)
}

func (m *MockRefreshCredentialRepository) CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// MockTxManager は WithinTx の中で渡す repos を固定して unit テストを回す
type MockTxManager struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposStub struct {
	creds repo.RefreshCredentialRepository
	users repo.UserRepository
}

func (r *TxReposStub) Credentials() repo.RefreshCredentialRepository { return r.creds }
func (r *TxReposStub) Users() repo.UserRepository                    { return r.users }

// =====================
// Mock: AuthValidator
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateChangePassword(ctx context.Context, current string, next string) error {
	args := m.Called(ctx, current, next)
	return args.Error(0)
}

// =====================
// Mock: ExternalVerifier
// =====================

type MockExternalVerifier struct {
	mock.Mock
}

func (m *MockExternalVerifier) Verify(ctx context.Context, provider string, idToken string) (*ExternalIdentity, error) {
	args := m.Called(ctx, provider, idToken)
	id, _ := args.Get(0).(*ExternalIdentity)
	return id, args.Error(1)
}

// =====================
// Mock: MenuRepository
// =====================

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) ListActiveSections(ctx context.Context) ([]model.MenuSection, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.MenuSection)
	return s, args.Error(1)
}

func (m *MockMenuRepository) ListActiveItems(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	i, _ := args.Get(0).([]model.MenuItem)
	return i, args.Error(1)
}

func (m *MockMenuRepository) ListActiveSubItems(ctx context.Context) ([]model.MenuSubItem, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.MenuSubItem)
	return s, args.Error(1)
}

func (m *MockMenuRepository) ListActiveActions(ctx context.Context) ([]model.PageAction, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]model.PageAction)
	return a, args.Error(1)
}

func (m *MockMenuRepository) FindActiveItemByRoute(ctx context.Context, route string) (*model.MenuItem, error) {
	args := m.Called(ctx, route)
	i, _ := args.Get(0).(*model.MenuItem)
	return i, args.Error(1)
}

func (m *MockMenuRepository) FindActiveSubItemByRoute(ctx context.Context, route string) (*model.MenuSubItem, error) {
	args := m.Called(ctx, route)
	s, _ := args.Get(0).(*model.MenuSubItem)
	return s, args.Error(1)
}

func (m *MockMenuRepository) ListActiveActionsByOwner(ctx context.Context, ownerID string, ownerKind model.ActionOwnerKind) ([]model.PageAction, error) {
	args := m.Called(ctx, ownerID, ownerKind)
	a, _ := args.Get(0).([]model.PageAction)
	return a, args.Error(1)
}

func (m *MockMenuRepository) ListSections(ctx context.Context) ([]model.MenuSection, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.MenuSection)
	return s, args.Error(1)
}

func (m *MockMenuRepository) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	i, _ := args.Get(0).([]model.MenuItem)
	return i, args.Error(1)
}

func (m *MockMenuRepository) ListSubItems(ctx context.Context) ([]model.MenuSubItem, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.MenuSubItem)
	return s, args.Error(1)
}

func (m *MockMenuRepository) ListActions(ctx context.Context) ([]model.PageAction, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]model.PageAction)
	return a, args.Error(1)
}

func (m *MockMenuRepository) CreateSection(ctx context.Context, s *model.MenuSection) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockMenuRepository) UpdateSection(ctx context.Context, s *model.MenuSection) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteSection(ctx context.Context, sectionID string) error {
	args := m.Called(ctx, sectionID)
	return args.Error(0)
}

func (m *MockMenuRepository) FindSectionByID(ctx context.Context, sectionID string) (*model.MenuSection, error) {
	args := m.Called(ctx, sectionID)
	s, _ := args.Get(0).(*model.MenuSection)
	return s, args.Error(1)
}

func (m *MockMenuRepository) CreateItem(ctx context.Context, i *model.MenuItem) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockMenuRepository) UpdateItem(ctx context.Context, i *model.MenuItem) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockMenuRepository) FindItemByID(ctx context.Context, itemID string) (*model.MenuItem, error) {
	args := m.Called(ctx, itemID)
	i, _ := args.Get(0).(*model.MenuItem)
	return i, args.Error(1)
}

func (m *MockMenuRepository) CreateSubItem(ctx context.Context, s *model.MenuSubItem) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockMenuRepository) UpdateSubItem(ctx context.Context, s *model.MenuSubItem) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteSubItem(ctx context.Context, subItemID string) error {
	args := m.Called(ctx, subItemID)
	return args.Error(0)
}

func (m *MockMenuRepository) FindSubItemByID(ctx context.Context, subItemID string) (*model.MenuSubItem, error) {
	args := m.Called(ctx, subItemID)
	s, _ := args.Get(0).(*model.MenuSubItem)
	return s, args.Error(1)
}

func (m *MockMenuRepository) CreateAction(ctx context.Context, a *model.PageAction) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockMenuRepository) UpdateAction(ctx context.Context, a *model.PageAction) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteAction(ctx context.Context, actionID string) error {
	args := m.Called(ctx, actionID)
	return args.Error(0)
}

func (m *MockMenuRepository) FindActionByID(ctx context.Context, actionID string) (*model.PageAction, error) {
	args := m.Called(ctx, actionID)
	a, _ := args.Get(0).(*model.PageAction)
	return a, args.Error(1)
}

// =====================
// Mock: RoleAccessRepository
// =====================

type MockRoleAccessRepository struct {
	mock.Mock
}

func (m *MockRoleAccessRepository) ListGrantedMenuTargets(ctx context.Context, roleIDs []string) ([]model.RoleMenuAccess, error) {
	args := m.Called(ctx, roleIDs)
	g, _ := args.Get(0).([]model.RoleMenuAccess)
	return g, args.Error(1)
}

func (m *MockRoleAccessRepository) ListEnabledActionIDs(ctx context.Context, roleIDs []string) ([]string, error) {
	args := m.Called(ctx, roleIDs)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockRoleAccessRepository) HasMenuGrant(ctx context.Context, roleIDs []string, targetID string, targetKind model.MenuTargetKind) (bool, error) {
	args := m.Called(ctx, roleIDs, targetID, targetKind)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleAccessRepository) HasActionGrant(ctx context.Context, roleIDs []string, actionID string) (bool, error) {
	args := m.Called(ctx, roleIDs, actionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleAccessRepository) ListMenuAccessByRole(ctx context.Context, roleID string) ([]model.RoleMenuAccess, error) {
	args := m.Called(ctx, roleID)
	a, _ := args.Get(0).([]model.RoleMenuAccess)
	return a, args.Error(1)
}

func (m *MockRoleAccessRepository) ListActionAccessByRole(ctx context.Context, roleID string) ([]model.RoleActionAccess, error) {
	args := m.Called(ctx, roleID)
	a, _ := args.Get(0).([]model.RoleActionAccess)
	return a, args.Error(1)
}

func (m *MockRoleAccessRepository) UpsertMenuAccess(ctx context.Context, access *model.RoleMenuAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

func (m *MockRoleAccessRepository) UpsertActionAccess(ctx context.Context, access *model.RoleActionAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

// =====================
// In-memory: RefreshCredentialRepository
// 回転・失効のCAS挙動を実際のセマンティクスで検証するための小さな実装
// =====================

type memCredRepo struct {
	byID   map[string]*model.RefreshCredential
	byHash map[string]*model.RefreshCredential
}

func newMemCredRepo() *memCredRepo {
	return &memCredRepo{
		byID:   map[string]*model.RefreshCredential{},
		byHash: map[string]*model.RefreshCredential{},
	}
}

func (r *memCredRepo) put(cred *model.RefreshCredential) {
	r.byID[cred.ID] = cred
	r.byHash[cred.TokenHash] = cred
}

func (r *memCredRepo) Create(ctx context.Context, cred *model.RefreshCredential) error {
	c := *cred
	r.put(&c)
	return nil
}

func (r *memCredRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshCredential, error) {
	c, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repo.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCredRepo) MarkRotated(ctx context.Context, credID string, rotatedAt time.Time) error {
	c, ok := r.byID[credID]
	if !ok || c.RevokedAt != nil {
		return repo.ErrCredentialNotActive
	}
	c.RevokedAt = &rotatedAt
	return nil
}

func (r *memCredRepo) LinkReplacement(ctx context.Context, oldID string, newID string) error {
	c, ok := r.byID[oldID]
	if !ok {
		return repo.ErrCredentialNotFound
	}
	c.ReplacedByID = &newID
	return nil
}

func (r *memCredRepo) Revoke(ctx context.Context, credID string, revokedAt time.Time) error {
	c, ok := r.byID[credID]
	if !ok || c.RevokedAt != nil {
		return repo.ErrCredentialNotActive
	}
	c.RevokedAt = &revokedAt
	return nil
}

func (r *memCredRepo) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	for _, c := range r.byID {
		if c.UserID == userID && c.RevokedAt == nil {
			t := revokedAt
			c.RevokedAt = &t
		}
	}
	return nil
}

func (r *memCredRepo) CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	for _, c := range r.byID {
		if c.UserID == userID && c.IsActive(now) {
			n++
		}
	}
	return n, nil
}

// passTxManager はトランザクションを張らず同じreposでfnを呼ぶだけ
type passTxManager struct {
	repos repo.TxRepos
}

func (m *passTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// =====================
// テスト用の固定部品
// =====================

// fixedClock は毎回同じ時刻を返す
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

// seqIDGen は呼ばれるたびに連番IDを返す
type seqIDGen struct {
	prefix string
	n      int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return g.prefix + "-" + strconv.Itoa(g.n)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}
