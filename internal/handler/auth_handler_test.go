package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
	"app/internal/usecase/token"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// handler試験用の小さなスタブ（認証経路だけ動けばいい）
// =====================

type stubUserRepo struct {
	user *model.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if s.user != nil && s.user.ID == userID {
		return s.user, nil
	}
	return nil, repo.ErrUserNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, repo.ErrUserNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, user *model.User) error { return nil }

type stubCredRepo struct {
	created []*model.RefreshCredential
}

func (s *stubCredRepo) Create(ctx context.Context, cred *model.RefreshCredential) error {
	s.created = append(s.created, cred)
	return nil
}

func (s *stubCredRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshCredential, error) {
	for _, c := range s.created {
		if c.TokenHash == tokenHash {
			return c, nil
		}
	}
	return nil, repo.ErrCredentialNotFound
}

func (s *stubCredRepo) MarkRotated(ctx context.Context, credID string, rotatedAt time.Time) error {
	return nil
}

func (s *stubCredRepo) LinkReplacement(ctx context.Context, oldID string, newID string) error {
	return nil
}

func (s *stubCredRepo) Revoke(ctx context.Context, credID string, revokedAt time.Time) error {
	return nil
}

func (s *stubCredRepo) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	return nil
}

func (s *stubCredRepo) CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	return 0, nil
}

type okValidator struct{}

func (okValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	return nil
}
func (okValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	return nil
}
func (okValidator) ValidateRefresh(ctx context.Context, refreshToken string) error { return nil }
func (okValidator) ValidateChangePassword(ctx context.Context, current string, next string) error {
	return nil
}

type stubIDGen struct{ n int }

func (g *stubIDGen) NewID() string {
	g.n++
	return "id-" + strings.Repeat("x", g.n)
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Now() }

func newTestAuthHandler(t *testing.T, pass string) (*AuthHandler, *model.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	assert.NoError(t, err)

	role := model.Role{ID: "role-user", Name: model.RoleUser}
	user := &model.User{
		ID:             "user-1",
		Email:          "user@test.com",
		PasswordHash:   string(hash),
		IsActive:       true,
		EmailConfirmed: true,
		Roles:          []model.Role{role},
	}

	minter := token.NewMinter([]byte("test_secret"), "iss", "aud", 15*time.Minute)
	uc := usecase.NewAuthUsecase(
		&stubUserRepo{user: user}, nil, &stubCredRepo{}, nil,
		minter,
		usecase.NewBcryptPasswordHasher(4),
		usecase.NewBcryptPasswordVerifier(),
		nil, okValidator{},
		&stubIDGen{}, stubClock{},
		24*time.Hour,
	)

	return NewAuthHandler(uc, true), user
}

func postJSON(path string, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_SetsSessionCookies(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/login", `{"email":"user@test.com","password":"CorrectPW1"}`)
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body authResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token.AccessToken)
	assert.Equal(t, "user@test.com", body.User.Email)

	// refresh tokenはbodyではなくHttpOnly cookieで返す
	refresh := findCookie(rec, refreshCookieName)
	assert.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
	assert.Equal(t, refreshCookiePath, refresh.Path)
	assert.NotEmpty(t, refresh.Value)
	assert.NotContains(t, rec.Body.String(), refresh.Value)

	// csrf cookieはJSから読める
	csrf := findCookie(rec, csrfCookieName)
	assert.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
}

func TestAuthHandler_Login_CookieSecureFlag(t *testing.T) {
	base, _ := newTestAuthHandler(t, "CorrectPW1")
	// ローカル開発向けにSecureを切った構成
	h := NewAuthHandler(base.authUC, false)

	e := echo.New()
	req, rec := postJSON("/auth/login", `{"email":"user@test.com","password":"CorrectPW1"}`)
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	refresh := findCookie(rec, refreshCookieName)
	assert.NotNil(t, refresh)
	assert.False(t, refresh.Secure)
	csrf := findCookie(rec, csrfCookieName)
	assert.NotNil(t, csrf)
	assert.False(t, csrf.Secure)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/login", `{"email":"user@test.com","password":"WrongPW99"}`)
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, findCookie(rec, refreshCookieName))
}

func TestAuthHandler_Refresh_CSRFRequired(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/refresh", "")
	// csrfヘッダもcookieも無し
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandler_Refresh_CSRFMismatch(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/refresh", "")
	req.Header.Set(csrfHeaderName, "header-value")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "cookie-value"})
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandler_Refresh_NoCookie(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/refresh", "")
	req.Header.Set(csrfHeaderName, "match")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "match"})
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout_WithoutTokenStillSucceeds(t *testing.T) {
	h, _ := newTestAuthHandler(t, "CorrectPW1")

	e := echo.New()
	req, rec := postJSON("/auth/logout", "")
	req.Header.Set(csrfHeaderName, "match")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "match"})
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// cookieは失効させて返す
	refresh := findCookie(rec, refreshCookieName)
	assert.NotNil(t, refresh)
	assert.Empty(t, refresh.Value)
	assert.Equal(t, -1, refresh.MaxAge)
}
