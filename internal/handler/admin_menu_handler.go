package handler

import (
	"errors"
	"net/http"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminMenuHandler struct {
	adminUC *usecase.MenuAdminUsecase
}

func NewAdminMenuHandler(adminUC *usecase.MenuAdminUsecase) *AdminMenuHandler {
	return &AdminMenuHandler{adminUC: adminUC}
}

type idResponse struct {
	ID string `json:"id"`
}

// GetStructureはGET /admin/menu のハンドラ。管理用に全ノードを返す。
func (h *AdminMenuHandler) GetStructure(c echo.Context) error {
	structure, err := h.adminUC.GetMenuStructure(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}
	return c.JSON(http.StatusOK, structure)
}

// ---------- Section ----------

func (h *AdminMenuHandler) CreateSection(c echo.Context) error {
	var req model.MenuSection
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	id, err := h.adminUC.CreateSection(c.Request().Context(), req)
	if err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *AdminMenuHandler) UpdateSection(c echo.Context) error {
	var req model.MenuSection
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}
	req.ID = c.Param("id")

	if err := h.adminUC.UpdateSection(c.Request().Context(), req); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

func (h *AdminMenuHandler) DeleteSection(c echo.Context) error {
	if err := h.adminUC.DeleteSection(c.Request().Context(), c.Param("id")); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted"})
}

// ---------- Item ----------

func (h *AdminMenuHandler) CreateItem(c echo.Context) error {
	var req model.MenuItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	id, err := h.adminUC.CreateItem(c.Request().Context(), req)
	if err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *AdminMenuHandler) UpdateItem(c echo.Context) error {
	var req model.MenuItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}
	req.ID = c.Param("id")

	if err := h.adminUC.UpdateItem(c.Request().Context(), req); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

func (h *AdminMenuHandler) DeleteItem(c echo.Context) error {
	if err := h.adminUC.DeleteItem(c.Request().Context(), c.Param("id")); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted"})
}

// ---------- SubItem ----------

func (h *AdminMenuHandler) CreateSubItem(c echo.Context) error {
	var req model.MenuSubItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	id, err := h.adminUC.CreateSubItem(c.Request().Context(), req)
	if err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *AdminMenuHandler) UpdateSubItem(c echo.Context) error {
	var req model.MenuSubItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}
	req.ID = c.Param("id")

	if err := h.adminUC.UpdateSubItem(c.Request().Context(), req); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

func (h *AdminMenuHandler) DeleteSubItem(c echo.Context) error {
	if err := h.adminUC.DeleteSubItem(c.Request().Context(), c.Param("id")); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted"})
}

// ---------- Action ----------

func (h *AdminMenuHandler) CreateAction(c echo.Context) error {
	var req model.PageAction
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	id, err := h.adminUC.CreateAction(c.Request().Context(), req)
	if err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *AdminMenuHandler) UpdateAction(c echo.Context) error {
	var req model.PageAction
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}
	req.ID = c.Param("id")

	if err := h.adminUC.UpdateAction(c.Request().Context(), req); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

func (h *AdminMenuHandler) DeleteAction(c echo.Context) error {
	if err := h.adminUC.DeleteAction(c.Request().Context(), c.Param("id")); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted"})
}

// ---------- Role permissions ----------

// GetRolePermissionsはGET /admin/roles/:id/permissions のハンドラ。
func (h *AdminMenuHandler) GetRolePermissions(c echo.Context) error {
	perms, err := h.adminUC.GetRolePermissions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, perms)
}

// UpdateRolePermissionsはPUT /admin/roles/:id/permissions のハンドラ。
func (h *AdminMenuHandler) UpdateRolePermissions(c echo.Context) error {
	var req usecase.UpdateRolePermissionsInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.adminUC.UpdateRolePermissions(c.Request().Context(), c.Param("id"), req); err != nil {
		return writeAdminError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

func writeAdminError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: "CONFLICT"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}
}
