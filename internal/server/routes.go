package server

import (
	"app/internal/middleware"
	"app/internal/usecase/token"

	"github.com/labstack/echo/v4"
)

// RegisterRoutesは全エンドポイントを登録する
func RegisterRoutes(e *echo.Echo, minter *token.Minter, h Handlers) {
	//認証系（refresh/logoutはcookie + CSRFで保護）
	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/external-login", h.Auth.ExternalLogin)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	//JWT必須
	auth.GET("/me", h.Auth.Me, middleware.AuthJWT(minter))
	auth.POST("/change-password", h.Auth.ChangePassword, middleware.AuthJWT(minter))

	//メニュー解決（ログインユーザー向け）
	menu := e.Group("/menu", middleware.AuthJWT(minter))
	menu.GET("", h.Menu.GetUserMenu)
	menu.GET("/route-access", h.Menu.HasRouteAccess)
	menu.GET("/can-perform", h.Menu.CanPerformAction)

	// /admin 配下は「JWT必須 + Admin限定」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(minter),
		middleware.AdminRoleGuard(),
	)

	admin.GET("/menu", h.AdminMenu.GetStructure)

	admin.POST("/menu/sections", h.AdminMenu.CreateSection)
	admin.PUT("/menu/sections/:id", h.AdminMenu.UpdateSection)
	admin.DELETE("/menu/sections/:id", h.AdminMenu.DeleteSection)

	admin.POST("/menu/items", h.AdminMenu.CreateItem)
	admin.PUT("/menu/items/:id", h.AdminMenu.UpdateItem)
	admin.DELETE("/menu/items/:id", h.AdminMenu.DeleteItem)

	admin.POST("/menu/sub-items", h.AdminMenu.CreateSubItem)
	admin.PUT("/menu/sub-items/:id", h.AdminMenu.UpdateSubItem)
	admin.DELETE("/menu/sub-items/:id", h.AdminMenu.DeleteSubItem)

	admin.POST("/menu/actions", h.AdminMenu.CreateAction)
	admin.PUT("/menu/actions/:id", h.AdminMenu.UpdateAction)
	admin.DELETE("/menu/actions/:id", h.AdminMenu.DeleteAction)

	admin.GET("/roles/:id/permissions", h.AdminMenu.GetRolePermissions)
	admin.PUT("/roles/:id/permissions", h.AdminMenu.UpdateRolePermissions)

	admin.POST("/users/:id/force-logout", h.AdminUser.ForceLogout)
	admin.PUT("/users/:id/enabled", h.AdminUser.SetEnabled)
}
