package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	credentials repo.RefreshCredentialRepository
	users       repo.UserRepository
}

func (r *txReposGorm) Credentials() repo.RefreshCredentialRepository { return r.credentials }
func (r *txReposGorm) Users() repo.UserRepository                    { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			credentials: NewRefreshCredentialGormRepository(tx),
			users:       NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
