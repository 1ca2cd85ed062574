package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase/token"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 メール未登録とパスワード違いは外向きに区別しない
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 refresh tokenが無い・失効・期限切れ
	ErrUnauthorized = errors.New("unauthorized")
	//403 停止ユーザー・メール未確認
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409
	ErrConflict = errors.New("conflict")
	//401 失効済みトークンの再提示＝盗難の兆候。外向きはErrUnauthorizedと同じ扱いにする。
	ErrTokenReuse = errors.New("token reuse detected")
	//500
	ErrInternal = errors.New("internal error")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
	ValidateChangePassword(ctx context.Context, current string, next string) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 外部プロバイダのtoken検証はこの約束の向こう側（この層では検証しない）
type ExternalVerifier interface {
	Verify(ctx context.Context, provider string, idToken string) (*ExternalIdentity, error)
}

type ExternalIdentity struct {
	Provider    string
	ProviderKey string
	Email       string
	DisplayName string
	ImageURL    string
}

type UserDTO struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	DisplayName    string   `json:"displayName"`
	ImageURL       string   `json:"imageUrl"`
	EmailConfirmed bool     `json:"emailConfirmed"`
	IsActive       bool     `json:"isActive"`
	Roles          []string `json:"roles"`
}

type AccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

// handlerがJSONで返す部分とCookieに詰める部分を分けて返す
type AuthResult struct {
	User              UserDTO
	Token             AccessTokenDTO
	RefreshTokenPlain string
	RefreshExpiresAt  time.Time
}

type AuthUsecase struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	creds      repository.RefreshCredentialRepository
	txm        repository.TransactionManager
	minter     *token.Minter
	hasher     PasswordHasher
	verifier   PasswordVerifier
	external   ExternalVerifier
	validator  AuthValidator
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewAuthUsecase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	creds repository.RefreshCredentialRepository,
	txm repository.TransactionManager,
	minter *token.Minter,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	external ExternalVerifier,
	validator AuthValidator,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		roles:      roles,
		creds:      creds,
		txm:        txm,
		minter:     minter,
		hasher:     hasher,
		verifier:   verifier,
		external:   external,
		validator:  validator,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// Registerは会員登録して、そのままログイン状態（セッション発行）にする。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput, ip string, device string) (*AuthResult, error) {
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal
	}

	//既定ロール
	userRole, err := u.roles.FindByName(ctx, model.RoleUser)
	if err != nil {
		return nil, ErrInternal
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = localPart(in.Email)
	}

	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        in.Email,
		PasswordHash: pwHash,
		DisplayName:  displayName,
		IsActive:     true,
		Roles:        []model.Role{*userRole},
	}

	//保存（email重複はvalidator側で弾いた上で、レースはunique制約が拾う）
	if err := u.users.Create(ctx, user); err != nil {
		return nil, ErrConflict
	}

	return u.issueSession(ctx, u.creds, user, ip, device)
}

// Loginはパスワード認証してセッションを発行する。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput, ip string, device string) (*AuthResult, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// ユーザーが存在しないことは明かさない
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrForbidden
	}

	//メール未確認もログイン不可
	if !user.EmailConfirmed {
		return nil, ErrForbidden
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return nil, ErrInvalidCredentials
	}

	//最終ログイン時刻更新
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return u.issueSession(ctx, u.creds, user, ip, device)
}

// ExternalLoginは外部プロバイダ認証の後のセッション発行。
// token検証はExternalVerifierの向こう側。ユーザーがいなければ作る。
func (u *AuthUsecase) ExternalLogin(ctx context.Context, provider string, idToken string, ip string, device string) (*AuthResult, error) {
	identity, err := u.external.Verify(ctx, provider, idToken)
	if err != nil || identity == nil {
		return nil, ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}

		//初回は作成。外部プロバイダがメール確認済みとみなす。
		userRole, roleErr := u.roles.FindByName(ctx, model.RoleUser)
		if roleErr != nil {
			return nil, ErrInternal
		}

		displayName := identity.DisplayName
		if displayName == "" {
			displayName = localPart(identity.Email)
		}

		user = &model.User{
			ID:             u.idGen.NewID(),
			Email:          identity.Email,
			DisplayName:    displayName,
			ImageURL:       identity.ImageURL,
			IsActive:       true,
			EmailConfirmed: true,
			Roles:          []model.Role{*userRole},
		}

		if createErr := u.users.Create(ctx, user); createErr != nil {
			return nil, ErrConflict
		}
	}

	if !user.IsActive {
		return nil, ErrForbidden
	}

	//プロバイダ側の画像が変わっていたら追従
	if identity.ImageURL != "" && user.ImageURL != identity.ImageURL {
		user.ImageURL = identity.ImageURL
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return u.issueSession(ctx, u.creds, user, ip, device)
}

// Refreshはrefresh tokenを1回限り使って新しいセッションに回転させる。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, ip string, device string) (*AuthResult, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return nil, ErrUnauthorized
	}

	//DB照合はhashで
	tokenHash := u.minter.Hash(refreshTokenPlain)

	cred, err := u.creds.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	now := u.clock.Now()

	//回転済み・失効済みのトークンが来た＝盗難の兆候。持ち主の全セッションを失効させる。
	if cred.RevokedAt != nil {
		log.Printf("refresh token reuse detected for user %s, revoking all sessions", cred.UserID)
		if err := u.creds.RevokeAllByUserID(ctx, cred.UserID, now); err != nil {
			return nil, err
		}
		return nil, ErrTokenReuse
	}

	//ただの期限切れは盗難扱いしない
	if !now.Before(cred.ExpiresAt) {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	//回転はひとつのtxで：旧を回転済みに→新を作成→replaced_by_idを繋ぐ。
	//途中で失敗したら全部戻る（後継のいない回転も、1回転から2つのActiveも残らない）。
	var result *AuthResult
	txErr := u.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Credentials().MarkRotated(ctx, cred.ID, now); err != nil {
			return err
		}

		res, err := u.issueSession(ctx, r.Credentials(), user, ip, device)
		if err != nil {
			return err
		}

		newHash := u.minter.Hash(res.RefreshTokenPlain)
		newCred, err := r.Credentials().FindByTokenHash(ctx, newHash)
		if err != nil {
			return err
		}

		if err := r.Credentials().LinkReplacement(ctx, cred.ID, newCred.ID); err != nil {
			return err
		}

		result = res
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, repository.ErrCredentialNotActive) {
			//同じ旧トークンでの同時リフレッシュに負けた。再利用と同じ扱いにする。
			log.Printf("concurrent refresh race lost for user %s, revoking all sessions", cred.UserID)
			if err := u.creds.RevokeAllByUserID(ctx, cred.UserID, now); err != nil {
				return nil, err
			}
			return nil, ErrTokenReuse
		}
		return nil, txErr
	}

	return result, nil
}

// Logoutは提示されたrefresh tokenを失効させる。
// トークンが存在するかどうかを漏らさないため、見つからなくても・既に無効でも成功を返す。
func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) error {
	if refreshTokenPlain == "" {
		return nil
	}

	tokenHash := u.minter.Hash(refreshTokenPlain)

	cred, err := u.creds.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil
		}
		return err
	}

	if err := u.creds.Revoke(ctx, cred.ID, u.clock.Now()); err != nil {
		//既に失効済みなら何もしない（冪等）
		if errors.Is(err, repository.ErrCredentialNotActive) {
			return nil
		}
		return err
	}

	return nil
}

// RevokeAllはユーザーのActiveなrefresh tokenを全部失効させる。
// 再利用検知・パスワード変更・アカウント停止から呼ばれる。
func (u *AuthUsecase) RevokeAll(ctx context.Context, userID string) error {
	return u.creds.RevokeAllByUserID(ctx, userID, u.clock.Now())
}

// ChangePasswordは現パスワード確認→更新→全セッション失効。
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID string, current string, next string) error {
	if err := u.validator.ValidateChangePassword(ctx, current, next); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	if ok := u.verifier.Verify(current, user.PasswordHash); !ok {
		return ErrInvalidCredentials
	}

	pwHash, err := u.hasher.Hash(next)
	if err != nil {
		return ErrInternal
	}

	user.PasswordHash = pwHash
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	//変更後は全デバイスで再ログインさせる
	return u.RevokeAll(ctx, userID)
}

// SetUserEnabledはアカウントの有効/無効を切り替える。無効化は全セッション失効を伴う。
func (u *AuthUsecase) SetUserEnabled(ctx context.Context, userID string, enabled bool) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	user.IsActive = enabled
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	if !enabled {
		return u.RevokeAll(ctx, userID)
	}
	return nil
}

// Meは現在のユーザー情報。
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrForbidden
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// issueSessionはアクセストークンとrefresh tokenを発行して、hashだけ保存する。
// 回転のときはtx内のrepoを渡して呼ぶ。
func (u *AuthUsecase) issueSession(ctx context.Context, creds repository.RefreshCredentialRepository, user *model.User, ip string, device string) (*AuthResult, error) {
	now := u.clock.Now()

	accessToken, accessExp, err := u.minter.MintAccess(user.ID, user.Email, user.RoleNames(), now)
	if err != nil {
		return nil, ErrInternal
	}

	refreshPlain, err := u.minter.MintRefresh()
	if err != nil {
		return nil, ErrInternal
	}

	refreshExp := now.Add(u.refreshTTL)

	cred := &model.RefreshCredential{
		ID:         u.idGen.NewID(),
		UserID:     user.ID,
		TokenHash:  u.minter.Hash(refreshPlain),
		CreatedAt:  now,
		ExpiresAt:  refreshExp,
		DeviceInfo: device,
		IPAddress:  ip,
	}

	if err := creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	return &AuthResult{
		User: toUserDTO(user),
		Token: AccessTokenDTO{
			AccessToken: accessToken,
			ExpiresIn:   int(accessExp.Sub(now).Seconds()),
		},
		RefreshTokenPlain: refreshPlain,
		RefreshExpiresAt:  refreshExp,
	}, nil
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		ImageURL:       u.ImageURL,
		EmailConfirmed: u.EmailConfirmed,
		IsActive:       u.IsActive,
		Roles:          u.RoleNames(),
	}
}

// emailの@より前を表示名の初期値にする
func localPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
