package usecase

import (
	"context"
	"errors"

	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// CartUsecase は /cart の業務ロジックです。
// 書き込みはユーザー行をロックしてから行い、注文確定と直列化する。
type CartUsecase struct {
	tx       repo.TransactionManager
	cartRepo repo.CartItemRepository
}

func NewCartUsecase(tx repo.TransactionManager, cartRepo repo.CartItemRepository) *CartUsecase {
	return &CartUsecase{
		tx:       tx,
		cartRepo: cartRepo,
	}
}

// price は現在の商品価格
type CartItemResponse struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	ImageURL       string `json:"image_url"`
	PriceCents     int64  `json:"price_cents"`
	Quantity       int64  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
	Count      int64              `json:"count"`
}

// 1明細あたりの数量上限（追加分・合算後とも）
const MaxCartQuantity int64 = 999

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// カート取得（現在の価格で合計を出す）
func (u *CartUsecase) ViewCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrNotAuthenticated
	}

	lines, err := u.cartRepo.ListLinesByUserID(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("list cart lines")
		return CartResponse{}, ErrInternal
	}
	return buildCartResponse(lines), nil
}

// カートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrNotAuthenticated
	}
	if in.Quantity < 1 || in.Quantity > MaxCartQuantity {
		return CartResponse{}, ErrInvalidQuantity
	}
	if in.ProductID <= 0 {
		return CartResponse{}, ErrProductNotFound
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//注文確定と同時に走らないようユーザー行をロック
		if err := r.Users().LockByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return ErrNotAuthenticated
			}
			return err
		}

		// 商品チェック
		if _, err := r.Products().FindByID(ctx, in.ProductID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		qty, err := r.CartItems().IncrementOrCreate(ctx, userID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		// 上限を超えたらrollback
		if qty > MaxCartQuantity {
			return ErrInvalidQuantity
		}

		lines, err := r.CartItems().ListLinesByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out = buildCartResponse(lines)
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CartResponse{}, err
		}
		zerolog.Ctx(ctx).Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", in.ProductID).
			Msg("add to cart")
		return CartResponse{}, ErrInternal
	}

	zerolog.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int64("product_id", in.ProductID).
		Int64("quantity", in.Quantity).
		Msg("cart item added")
	return out, nil
}

// カートを空にする（空でもエラーにしない）
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrNotAuthenticated
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().LockByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return ErrNotAuthenticated
			}
			return err
		}
		return r.CartItems().DeleteAllByUserID(ctx, userID)
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("clear cart")
		return ErrInternal
	}
	return nil
}

// カート内の数量合計
func (u *CartUsecase) CartCount(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrNotAuthenticated
	}

	n, err := u.cartRepo.SumQuantity(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("sum cart quantity")
		return 0, ErrInternal
	}
	return n, nil
}

// 明細をまとめてCartResponseを作る。
func buildCartResponse(lines []repo.CartLine) CartResponse {
	items := make([]CartItemResponse, 0, len(lines))
	var total, count int64

	for _, l := range lines {
		lineTotal := l.PriceCents * l.Quantity
		items = append(items, CartItemResponse{
			ProductID:      l.ProductID,
			Name:           l.Name,
			ImageURL:       l.ImageURL,
			PriceCents:     l.PriceCents,
			Quantity:       l.Quantity,
			LineTotalCents: lineTotal,
		})
		total += lineTotal
		count += l.Quantity
	}

	return CartResponse{Items: items, TotalCents: total, Count: count}
}
