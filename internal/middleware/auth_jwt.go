package middleware

import (
	"net/http"
	"strings"

	"app/internal/usecase/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // string
	CtxUserEmailKey = "user_email" // string
	CtxUserRolesKey = "user_roles" // []string
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(minter *token.Minter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名・期限・claimsの検証はMinterに寄せる
			claims, err := minter.ParseAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserEmailKey, claims.Email)
			c.Set(CtxUserRolesKey, claims.Roles)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// contextからロール一覧を取り出す。型が違えばnil。
func RolesFromContext(c echo.Context) []string {
	roles, _ := c.Get(CtxUserRolesKey).([]string)
	return roles
}

// contextからユーザーIDを取り出す。
func UserIDFromContext(c echo.Context) string {
	id, _ := c.Get(CtxUserIDKey).(string)
	return id
}
