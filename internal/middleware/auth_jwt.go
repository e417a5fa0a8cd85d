package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンのclaims（発行側はsub/tv/iat/expを入れる）
type AccessClaims struct {
	UserID       int64            `json:"sub"`
	TokenVersion *int             `json:"tv"`
	IssuedAt     *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt    *jwt.NumericDate `json:"exp,omitempty"`
}

var (
	errMissingExp   = errors.New("exp is required")
	errTokenExpired = errors.New("token is expired")
	errInvalidSub   = errors.New("invalid sub")
	errInvalidTV    = errors.New("invalid tv")
)

// ParseWithClaimsから呼ばれる
func (c *AccessClaims) Valid() error {
	if c.ExpiresAt == nil {
		return errMissingExp
	}
	if !jwt.TimeFunc().Before(c.ExpiresAt.Time) {
		return errTokenExpired
	}
	if c.UserID <= 0 {
		return errInvalidSub
	}
	if c.TokenVersion == nil || *c.TokenVersion < 0 {
		return errInvalidTV
	}
	return nil
}

// "Bearer xxx" からtokenを抜く
func bearerToken(authz string) (string, bool) {
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func parseAccessToken(raw string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := parseAccessToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxTokenVersionKey, *claims.TokenVersion)
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
