package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	authUC *usecase.AuthUsecase
}

func NewAdminUserHandler(authUC *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{authUC: authUC}
}

// ForceLogoutは対象ユーザーのリフレッシュ資格情報を全て失効させる
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.authUC.RevokeAll(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "revoked"})
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabledはユーザーの有効/無効を切り替える。無効化時は全セッションも失効する
func (h *AdminUserHandler) SetEnabled(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	var req setEnabledRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.authUC.SetUserEnabled(c.Request().Context(), userID, req.Enabled); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}
