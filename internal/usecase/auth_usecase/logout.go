package auth

import (
	"context"
	"errors"

	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/rs/zerolog"
)

// token_versionを上げて発行済みのトークンを無効にする
type LogoutUsecase struct {
	userRepo repository.UserRepository
}

func NewLogoutUsecase(userRepo repository.UserRepository) *LogoutUsecase {
	return &LogoutUsecase{userRepo: userRepo}
}

func (u *LogoutUsecase) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return usecase.ErrNotAuthenticated
	}

	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return usecase.ErrNotAuthenticated
		}
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("logout: increment token version")
		return usecase.ErrInternal
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("user logged out")
	return nil
}
