package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// カタログから外された商品の表示名
const UnavailableProductName = "Unavailable product"

// 注文確定の結果（メトリクス用）
type CheckoutOutcome string

const (
	CheckoutOutcomePlaced    CheckoutOutcome = "placed"
	CheckoutOutcomeEmptyCart CheckoutOutcome = "empty_cart"
	CheckoutOutcomeFailed    CheckoutOutcome = "failed"
)

// 注文確定の結果を受け取る
type CheckoutObserver interface {
	ObserveCheckout(outcome CheckoutOutcome, totalCents int64)
}

type noopCheckoutObserver struct{}

func (noopCheckoutObserver) ObserveCheckout(CheckoutOutcome, int64) {}

// 同時のカート更新で明細が変わった
var errCartChanged = errors.New("cart changed during checkout")

type OrderUsecase struct {
	tx          repo.TransactionManager
	cartRepo    repo.CartItemRepository
	productRepo repo.ProductRepository
	observer    CheckoutObserver
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	observer CheckoutObserver,
) *OrderUsecase {
	if observer == nil {
		observer = noopCheckoutObserver{}
	}
	return &OrderUsecase{
		tx:          tx,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		observer:    observer,
	}
}

type OrderItemOutput struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	PriceCents     int64  `json:"price_cents"`
	Quantity       int64  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	TotalCents    int64             `json:"total_cents"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

type ListOrdersInput struct {
	Page  int
	Limit int
}

// Checkout はカートを注文に変換する。
// 注文作成・明細作成・カート削除は1トランザクション。失敗したらカートはそのまま残る。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrNotAuthenticated
	}
	log := zerolog.Ctx(ctx)

	//トランザクションを開く前に空チェック
	lines, err := u.cartRepo.ListLinesByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: read cart")
		u.observer.ObserveCheckout(CheckoutOutcomeFailed, 0)
		return OrderOutput{}, ErrCheckoutFailed
	}
	if len(lines) == 0 {
		u.observer.ObserveCheckout(CheckoutOutcomeEmptyCart, 0)
		return OrderOutput{}, ErrEmptyCart
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じユーザーのカート操作・注文確定をここで直列化する
		if err := r.Users().LockByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return ErrNotAuthenticated
			}
			return err
		}

		//ロック後に読み直す（先に確定した注文で空になっていることがある）
		lines, err := r.CartItems().ListLinesByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		now := time.Now().UTC()
		order := model.Order{
			UserID:        userID,
			TotalCents:    cartTotalCents(lines),
			PaymentMethod: model.PaymentMethodCOD,
			Status:        model.OrderStatusPlaced,
			CreatedAt:     now,
		}

		// 注文作成
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID

		//価格はこの時点の商品価格をコピー
		items := make([]model.OrderItem, 0, len(lines))
		names := make(map[int64]string, len(lines))
		productIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			items = append(items, model.OrderItem{
				ProductID:  l.ProductID,
				Quantity:   l.Quantity,
				PriceCents: l.PriceCents,
				CreatedAt:  now,
			})
			names[l.ProductID] = l.Name
			productIDs = append(productIDs, l.ProductID)
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		//注文に入れた明細だけカートから消す
		deleted, err := r.CartItems().DeleteByUserAndProducts(ctx, userID, productIDs)
		if err != nil {
			return err
		}
		if deleted != int64(len(lines)) {
			return errCartChanged
		}

		out = toOrderOutput(order, items, names)
		return nil
	})

	switch {
	case err == nil:
		u.observer.ObserveCheckout(CheckoutOutcomePlaced, out.TotalCents)
		log.Info().
			Int64("user_id", userID).
			Int64("order_id", out.ID).
			Int64("total_cents", out.TotalCents).
			Int("items", len(out.Items)).
			Msg("order placed")
		return out, nil
	case errors.Is(err, ErrEmptyCart):
		u.observer.ObserveCheckout(CheckoutOutcomeEmptyCart, 0)
		return OrderOutput{}, ErrEmptyCart
	case errors.Is(err, ErrNotAuthenticated):
		return OrderOutput{}, ErrNotAuthenticated
	default:
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: transaction rolled back")
		u.observer.ObserveCheckout(CheckoutOutcomeFailed, 0)
		return OrderOutput{}, ErrCheckoutFailed
	}
}

// 注文履歴（新しい順）
func (u *OrderUsecase) ListOrders(ctx context.Context, userID int64, in ListOrdersInput) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, ErrNotAuthenticated
	}
	if in.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var orders []model.Order
	itemsByOrder := map[int64][]model.OrderItem{}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, _, err = r.Orders().ListByUserID(ctx, userID, in.Page, in.Limit)
		if err != nil {
			return err
		}

		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			itemsByOrder[o.ID] = items
		}
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("list orders")
		return []OrderOutput{}, ErrInternal
	}

	var allItems []model.OrderItem
	for _, items := range itemsByOrder {
		allItems = append(allItems, items...)
	}
	names := u.resolveProductNames(ctx, allItems)

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, itemsByOrder[o.ID], names))
	}
	return outs, nil
}

// 注文1件（他人の注文は「存在しない扱い」）
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrNotAuthenticated
	}
	if orderID <= 0 {
		return OrderOutput{}, ErrOrderNotFound
	}

	var order model.Order
	var items []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return ErrOrderNotFound
		}
		order = o

		items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return OrderOutput{}, ErrOrderNotFound
		}
		zerolog.Ctx(ctx).Error().Err(err).Int64("order_id", orderID).Msg("get order")
		return OrderOutput{}, ErrInternal
	}

	return toOrderOutput(order, items, u.resolveProductNames(ctx, items)), nil
}

// 表示用の商品名。取れなかった商品はプレースホルダーにする（一覧は失敗させない）
func (u *OrderUsecase) resolveProductNames(ctx context.Context, items []model.OrderItem) map[int64]string {
	names := map[int64]string{}
	if len(items) == 0 {
		return names
	}

	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("resolve product names")
		return names
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

// 合計は整数のまま計算する
func cartTotalCents(lines []repo.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.PriceCents * l.Quantity
	}
	return total
}

func toOrderOutput(o model.Order, items []model.OrderItem, names map[int64]string) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		name, ok := names[it.ProductID]
		if !ok {
			name = UnavailableProductName
		}
		outItems = append(outItems, OrderItemOutput{
			ProductID:      it.ProductID,
			Name:           name,
			PriceCents:     it.PriceCents,
			Quantity:       it.Quantity,
			LineTotalCents: it.PriceCents * it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		TotalCents:    o.TotalCents,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
