package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Credentials() RefreshCredentialRepository
	Users() UserRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// リフレッシュ回転（旧を失効→新を作成→replaced_by_idを繋ぐ）はこの中で行う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
