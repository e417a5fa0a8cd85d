package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 電話番号の重複（unique違反）
var ErrPhoneTaken = errors.New("phone already registered")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。電話番号が重複したらErrPhoneTaken
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//電話番号からユーザーを1件取得する。
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//ユーザー行を FOR UPDATE でロックする（カート操作を直列化する）
	LockByID(ctx context.Context, userID int64) error

	//order_items → orders → cart_items → users の順で1トランザクションで削除
	DeleteWithDependents(ctx context.Context, userID int64) error
}
