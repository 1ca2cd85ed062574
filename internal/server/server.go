package server

import (
	"app/internal/handler"
	"app/internal/usecase/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルーティングに必要なハンドラ一式
type Handlers struct {
	Auth      *handler.AuthHandler
	Menu      *handler.MenuHandler
	AdminMenu *handler.AdminMenuHandler
	AdminUser *handler.AdminUserHandler
}

// Newはechoインスタンスを生成してルートを登録する
func New(minter *token.Minter, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, minter, h)

	return e
}

// StartはHTTPサーバーを起動する
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
