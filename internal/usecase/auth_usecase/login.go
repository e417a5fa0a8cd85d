package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/rs/zerolog"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Phone    string
	Password string
}

var (
	// 未登録の電話番号（サインアップへ誘導する）
	ErrUserNotFound = usecase.NewHTTPError(http.StatusNotFound, "user not found")
	// パスワードが違う
	ErrIncorrectPassword = usecase.NewHTTPError(http.StatusUnauthorized, "incorrect password")
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (AuthOutput, error) {
	var out AuthOutput
	log := zerolog.Ctx(ctx)

	phone := validator.NormalizePhone(in.Phone)
	if err := validator.ValidateLogin(phone, in.Password); err != nil {
		return out, mapValidationError(err)
	}

	//電話番号でユーザー取得
	user, err := u.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrUserNotFound
		}
		log.Error().Err(err).Msg("login: find by phone")
		return out, usecase.ErrInternal
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		log.Warn().Int64("user_id", user.ID).Msg("login failed: incorrect password")
		return out, ErrIncorrectPassword
	}

	//AccessToken発行
	token, err := issueToken(u.issuer, user, u.clock.Now())
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("login: issue token")
		return out, usecase.ErrInternal
	}

	out.User = *user
	out.Token = token
	return out, nil
}

func issueToken(issuer AccessTokenIssuer, user *model.User, now time.Time) (AccessToken, error) {
	accessToken, accessExp, err := issuer.Issue(user.ID, user.TokenVersion, now)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}, nil
}
