package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"gorm.io/gorm"
)

type refreshCredentialGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewRefreshCredentialGormRepository(db *gorm.DB) domainrepo.RefreshCredentialRepository {
	return &refreshCredentialGormRepository{db: db}
}

// リフレッシュトークン記録を保存。
func (r *refreshCredentialGormRepository) Create(ctx context.Context, cred *model.RefreshCredential) error {
	if err := r.db.WithContext(ctx).Create(cred).Error; err != nil {
		return err
	}
	return nil
}

// token_hashで1件検索します。
func (r *refreshCredentialGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshCredential, error) {
	var cred model.RefreshCredential

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&cred).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrCredentialNotFound
		}
		return nil, err
	}

	return &cred, nil
}

// revoked_atをセットして「回転済み」にする。
// WHEREにrevoked_at IS NULLを含めた条件付き更新なので、同じ行への同時回転は片方しか勝てない。
func (r *refreshCredentialGormRepository) MarkRotated(ctx context.Context, credID string, rotatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshCredential{}).
		Where("id = ? AND revoked_at IS NULL", credID).
		Update("revoked_at", &rotatedAt)

	if result.Error != nil {
		return result.Error
	}

	// 更新件数が0なら「すでに回転済み/失効済み/存在しない」
	if result.RowsAffected == 0 {
		return domainrepo.ErrCredentialNotActive
	}

	return nil
}

// 旧行のreplaced_by_idに後継のIDを書く。
func (r *refreshCredentialGormRepository) LinkReplacement(ctx context.Context, oldID string, newID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshCredential{}).
		Where("id = ?", oldID).
		Update("replaced_by_id", newID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrCredentialNotFound
	}

	return nil
}

// revoked_atをセットして失効。
func (r *refreshCredentialGormRepository) Revoke(ctx context.Context, credID string, revokedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshCredential{}).
		Where("id = ? AND revoked_at IS NULL", credID).
		Update("revoked_at", &revokedAt)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrCredentialNotActive
	}

	return nil
}

// 指定ユーザーのActiveな記録を全失効。0件でも成功（再実行安全）。
func (r *refreshCredentialGormRepository) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.RefreshCredential{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &revokedAt).Error

	if err != nil {
		return err
	}
	return nil
}

// 指定ユーザーのActiveな記録数。
func (r *refreshCredentialGormRepository) CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.RefreshCredential{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Count(&count).Error

	if err != nil {
		return 0, err
	}

	return count, nil
}
