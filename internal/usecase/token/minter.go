package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// refresh tokenの乱数長。64バイト=512bit。
const refreshTokenBytes = 64

var ErrInvalidAccessToken = errors.New("invalid access token")

// Minterはトークンの発行と検証だけを行う。保存もI/Oもしない。
type Minter struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewMinter(secret []byte, issuer string, audience string, accessTTL time.Duration) *Minter {
	return &Minter{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

// AccessTTLはアクセストークンの有効期間。
func (m *Minter) AccessTTL() time.Duration {
	return m.accessTTL
}

// MintAccessは署名付きアクセストークンを発行する。
// claimsにはsub/email/jti/iat/exp/iss/aud/rolesを入れる。jtiはログ突き合わせ用。
func (m *Minter) MintAccess(userID string, email string, roles []string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.accessTTL)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"iss":   m.issuer,
		"aud":   m.audience,
		"roles": roles,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// MintRefreshは高エントロピーの不透明トークンを作る。ユーザー情報から導出しない。
func (m *Minter) MintRefresh() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hashは保存・照合用の一方向ダイジェスト。平文はDBに入れない。
func (m *Minter) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ParseAccessで取り出すclaims。
type AccessClaims struct {
	UserID    string
	Email     string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// ParseAccessは署名と期限を検証してclaimsを取り出す。
func (m *Minter) ParseAccess(raw string) (*AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidAccessToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidAccessToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidAccessToken
	}

	email, _ := claims["email"].(string)
	jti, _ := claims["jti"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidAccessToken
	}

	roles, err := parseRoles(claims["roles"])
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	return &AccessClaims{
		UserID:    sub,
		Email:     email,
		Roles:     roles,
		TokenID:   jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// rolesのclaimは[]interface{}で来る
func parseRoles(v interface{}) ([]string, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("invalid roles claim")
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, errors.New("invalid roles claim")
		}
		roles = append(roles, s)
	}
	return roles, nil
}
