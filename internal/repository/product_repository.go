package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧のページング
type ProductListQuery struct {
	Page  int
	Limit int
}

// カタログの読み取り（商品管理はしない）
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//カタログから外された商品は結果に含めない
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	//初期データ投入用
	Count(ctx context.Context) (int64, error)
	CreateBulk(ctx context.Context, products []model.Product) error
}
