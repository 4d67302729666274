package auth

import (
	"errors"
	"strconv"
	"time"

	"orderdesk/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer はHS256のアクセストークンを発行する。
// 本番の発行は認証サービス側で、ここはseed・CLI・テスト用。
type Issuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewIssuer(secret string, accessTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL}, nil
}

// middleware.AuthJWT が読むclaims（sub/role/tv）を入れる
func (i *Issuer) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
