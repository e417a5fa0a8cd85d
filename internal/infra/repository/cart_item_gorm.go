package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を現在の商品価格つきで一覧取得
func (r *CartItemGormRepository) ListLinesByUserID(ctx context.Context, userID int64) ([]repo.CartLine, error) {
	var lines []repo.CartLine

	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.product_id, products.name, products.image_url, products.price_cents, cart_items.quantity").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.product_id asc").
		Scan(&lines).Error
	if err != nil {
		return []repo.CartLine{}, err
	}
	if lines == nil {
		lines = []repo.CartLine{}
	}
	return lines, nil
}

// 同一商品は数量加算
func (r *CartItemGormRepository) IncrementOrCreate(ctx context.Context, userID int64, productID int64, addQty int64) (int64, error) {
	if addQty <= 0 {
		return 0, errors.New("invalid quantity")
	}

	var newQty int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty = item.Quantity + addQty

			res := tx.Model(&model.CartItem{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !isNotFound(err) {
			return err
		}

		//無い場合は新規作成
		newItem := model.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  addQty,
		}
		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}

		newQty = addQty
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// 指定した商品の明細だけ削除
func (r *CartItemGormRepository) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ユーザーの明細を全削除（0件でもエラーにしない）
func (r *CartItemGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}

// 数量の合計（カタログにある商品だけ）
func (r *CartItemGormRepository) SumQuantity(ctx context.Context, userID int64) (int64, error) {
	var total int64

	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
