package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	refreshCookieName = "refresh"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"

	// refresh cookieはpage scriptから読めない・/auth配下にしか飛ばない
	refreshCookiePath = "/auth"
)

type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	cookieSecure bool
}

// DIコンストラクタ。cookieSecureはconfig.Config.CookieSecureを渡す。
func NewAuthHandler(authUC *usecase.AuthUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authUC:       authUC,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type externalLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"idToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authResponse struct {
	User  usecase.UserDTO        `json:"user"`
	Token usecase.AccessTokenDTO `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	res, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	}, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return h.writeAuthError(c, err)
	}

	if err := h.setSessionCookies(c, res); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, authResponse{User: res.User, Token: res.Token})
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	res, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return h.writeAuthError(c, err)
	}

	if err := h.setSessionCookies(c, res); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, authResponse{User: res.User, Token: res.Token})
}

// ExternalLoginはPOST /auth/external-login のハンドラ。
func (h *AuthHandler) ExternalLogin(c echo.Context) error {
	var req externalLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	res, err := h.authUC.ExternalLogin(c.Request().Context(), req.Provider, req.IDToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return h.writeAuthError(c, err)
	}

	if err := h.setSessionCookies(c, res); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, authResponse{User: res.User, Token: res.Token})
}

// RefreshはPOST /auth/refresh のハンドラ。
// refresh tokenはCookieからだけ受け取る（bodyやヘッダは見ない）。
func (h *AuthHandler) Refresh(c echo.Context) error {
	if !h.csrfOK(c) {
		return c.JSON(http.StatusForbidden, errorResponse{Error: "CSRF"})
	}

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	res, err := h.authUC.Refresh(c.Request().Context(), cookie.Value, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		//再利用検知もただの無効トークンも、外向きには同じ401を返す
		return h.writeAuthError(c, err)
	}

	if err := h.setSessionCookies(c, res); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, authResponse{User: res.User, Token: res.Token})
}

// LogoutはPOST /auth/logout のハンドラ。トークンが無くても成功を返す。
func (h *AuthHandler) Logout(c echo.Context) error {
	if !h.csrfOK(c) {
		return c.JSON(http.StatusForbidden, errorResponse{Error: "CSRF"})
	}

	refreshPlain := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		refreshPlain = cookie.Value
	}

	if err := h.authUC.Logout(c.Request().Context(), refreshPlain); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "logout success"})
}

// MeはGET /auth/me のハンドラ（要Bearer）。
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	user, err := h.authUC.Me(c.Request().Context(), userID)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// ChangePasswordはPOST /auth/change-password のハンドラ（要Bearer）。
// 成功すると全refresh tokenが失効するので、クライアントは再ログインが必要。
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	userID := middleware.UserIDFromContext(c)

	if err := h.authUC.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.writeAuthError(c, err)
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

// usecaseのエラーをHTTPへ。再利用検知（ErrTokenReuse）は外向きにUNAUTHORIZEDと区別しない。
func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrTokenReuse):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "FORBIDDEN"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: "CONFLICT"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}
}

// refresh cookie + csrf cookieをセット。
func (h *AuthHandler) setSessionCookies(c echo.Context, res *usecase.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    res.RefreshTokenPlain,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  res.RefreshExpiresAt,
	})

	csrfToken, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	// JSから読めるようにHttpOnlyにしない（double submit用）
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  res.RefreshExpiresAt,
	})

	return nil
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// double submit：ヘッダとCookieのcsrf tokenが一致するか。
func (h *AuthHandler) csrfOK(c echo.Context) bool {
	header := c.Request().Header.Get(csrfHeaderName)
	if header == "" {
		return false
	}

	cookie, err := c.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) == 1
}

// ランダム文字列を作る。
func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 32
	}

	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
