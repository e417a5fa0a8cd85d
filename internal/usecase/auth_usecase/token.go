package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// HS256で署名するAccessTokenIssuer
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

// claims: sub(user id) / tv(token_version) / iat / exp
func (i *JWTIssuer) Issue(userID int64, tokenVersion int, now time.Time) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}

	exp := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"tv":  tokenVersion,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
