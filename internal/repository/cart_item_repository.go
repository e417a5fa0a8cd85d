package repository

import (
	"context"
)

// カート明細と現在の商品情報をjoinした1行
type CartLine struct {
	ProductID  int64
	Name       string
	ImageURL   string
	PriceCents int64
	Quantity   int64
}

type CartItemRepository interface {
	//product_id順。現在の価格でjoinする
	ListLinesByUserID(ctx context.Context, userID int64) ([]CartLine, error)
	// 同一商品はプラス。加算後の数量を返す
	IncrementOrCreate(ctx context.Context, userID int64, productID int64, addQty int64) (int64, error)
	//指定商品の明細だけ削除。削除件数を返す
	DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error)
	DeleteAllByUserID(ctx context.Context, userID int64) error
	//数量の合計（カートバッジ用）
	SumQuantity(ctx context.Context, userID int64) (int64, error)
}
