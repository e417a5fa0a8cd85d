package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list products")
		return ProductListOutput{}, ErrInternal
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, ErrProductNotFound
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("product_id", productID).Msg("find product")
		return model.Product{}, ErrInternal
	}
	return p, nil
}

// 起動時のサンプル商品
func SampleProducts() []model.Product {
	return []model.Product{
		{Name: "T-Shirt", Description: "Comfort cotton T-shirt", PriceCents: 1999, ImageURL: "https://via.placeholder.com/150"},
		{Name: "Mug", Description: "Ceramic coffee mug", PriceCents: 1299, ImageURL: "https://via.placeholder.com/150"},
		{Name: "Notebook", Description: "A5 dotted notebook", PriceCents: 999, ImageURL: "https://via.placeholder.com/150"},
		{Name: "Stickers Pack", Description: "Set of 10 stickers", PriceCents: 499, ImageURL: "https://via.placeholder.com/150"},
	}
}

// カタログが空のときだけサンプル商品を入れる。入れた件数を返す。
func (u *ProductUsecase) SeedSampleProducts(ctx context.Context) (int, error) {
	n, err := u.productRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	products := SampleProducts()
	if err := u.productRepo.CreateBulk(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}
