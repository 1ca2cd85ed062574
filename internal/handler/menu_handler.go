package handler

import (
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type MenuHandler struct {
	menuUC *usecase.MenuUsecase
}

func NewMenuHandler(menuUC *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{menuUC: menuUC}
}

// GetUserMenuはGET /menu のハンドラ。
// 呼んだユーザーのロール集合に見えるメニューだけを返す。
func (h *MenuHandler) GetUserMenu(c echo.Context) error {
	roles := middleware.RolesFromContext(c)

	menu, err := h.menuUC.ResolveUserMenu(c.Request().Context(), roles)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, menu)
}

type routeAccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}

// HasRouteAccessはGET /menu/route-access?route=... のハンドラ。
func (h *MenuHandler) HasRouteAccess(c echo.Context) error {
	route := c.QueryParam("route")
	if route == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	roles := middleware.RolesFromContext(c)

	ok, err := h.menuUC.HasRouteAccess(c.Request().Context(), roles, route)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, routeAccessResponse{HasAccess: ok})
}

type canPerformResponse struct {
	CanPerform bool `json:"canPerform"`
}

// CanPerformActionはGET /menu/can-perform?route=...&code=... のハンドラ。
func (h *MenuHandler) CanPerformAction(c echo.Context) error {
	route := c.QueryParam("route")
	code := c.QueryParam("code")
	if route == "" || code == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	roles := middleware.RolesFromContext(c)

	ok, err := h.menuUC.CanPerformAction(c.Request().Context(), roles, route, code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, canPerformResponse{CanPerform: ok})
}
