package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（Rolesの関連も一緒に保存する）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。Rolesも読み込む。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを1件取得する。Rolesも読み込む。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>有効/無効・最終ログイン・パスワードハッシュなど
	Update(ctx context.Context, user *model.User) error
}
