package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Phone    string
	Name     string
	Password string
}

// token 形（JwtAccessToken相当）
type AccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// 会員登録・ログインの出力
type AuthOutput struct {
	User  model.User  `json:"user"`
	Token AccessToken `json:"token"`
}

var (
	// 入力が不正
	ErrPhoneRequired    = usecase.NewHTTPError(http.StatusBadRequest, "phone is required")
	ErrInvalidPhone     = usecase.NewHTTPError(http.StatusBadRequest, "invalid phone")
	ErrPasswordRequired = usecase.NewHTTPError(http.StatusBadRequest, "password is required")
	ErrPasswordTooShort = usecase.NewHTTPError(http.StatusBadRequest, "password too short")
	ErrNameTooLong      = usecase.NewHTTPError(http.StatusBadRequest, "name too long")

	// 競合
	ErrUserAlreadyExists = usecase.NewHTTPError(http.StatusConflict, "user already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 実時間
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RegisterUserUsecaseは会員登録の処理。登録後はそのままログイン状態にする。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   AccessTokenIssuer
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		clock:    clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (AuthOutput, error) {
	var out AuthOutput

	phone := validator.NormalizePhone(in.Phone)
	if err := validator.ValidateSignup(phone, in.Name, in.Password); err != nil {
		return out, mapValidationError(err)
	}

	// 電話番号の重複チェック
	existing, err := u.userRepo.FindByPhone(ctx, phone)
	if err == nil && existing != nil {
		return out, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("signup: find by phone")
		return out, usecase.ErrInternal
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("signup: hash password")
		return out, usecase.ErrInternal
	}

	now := u.clock.Now()
	user := &model.User{
		Phone:        phone,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存（同時登録はunique制約で弾く）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrPhoneTaken) {
			return out, ErrUserAlreadyExists
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("signup: create user")
		return out, usecase.ErrInternal
	}

	token, err := issueToken(u.issuer, user, now)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.ID).Msg("signup: issue token")
		return out, usecase.ErrInternal
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user registered")

	out.User = *user
	out.Token = token
	return out, nil
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, validator.ErrPhoneRequired):
		return ErrPhoneRequired
	case errors.Is(err, validator.ErrInvalidPhone):
		return ErrInvalidPhone
	case errors.Is(err, validator.ErrPasswordRequired):
		return ErrPasswordRequired
	case errors.Is(err, validator.ErrPasswordTooShort):
		return ErrPasswordTooShort
	case errors.Is(err, validator.ErrNameTooLong):
		return ErrNameTooLong
	default:
		return usecase.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
