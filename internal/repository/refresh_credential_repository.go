package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var (
	ErrCredentialNotFound = errors.New("refresh credential not found")

	// Active以外を条件付き更新しようとして0件だった
	ErrCredentialNotActive = errors.New("refresh credential not active")
)

// リフレッシュトークン記録の保存・取得・失効を約束。
// 行のDELETEは提供しない（失効済みも監査のため残す）。
type RefreshCredentialRepository interface {
	Create(ctx context.Context, cred *model.RefreshCredential) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshCredential, error)
	// revoked_atがNULLの行だけ回転済みにする（CAS）。0件ならErrCredentialNotActive。
	MarkRotated(ctx context.Context, credID string, rotatedAt time.Time) error
	// 回転後、旧行のreplaced_by_idに新行のIDを書く。
	LinkReplacement(ctx context.Context, oldID string, newID string) error
	// revoked_atがNULLの行だけ失効させる。0件ならErrCredentialNotActive。
	Revoke(ctx context.Context, credID string, revokedAt time.Time) error
	// ユーザーのActiveな行を全部失効させる。0件でもエラーにしない（再実行安全）。
	RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error
	// ユーザーのActiveな行数。テスト・監査用。
	CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int64, error)
}
