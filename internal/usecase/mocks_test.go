package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TransactionManager モック
// =====================

type MockTxManager struct {
	mock.Mock
	repos repo.TxRepos
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.repos)
}

// =====================
// CartItemRepository モック
// =====================

type MockCartItemRepo struct {
	mock.Mock
}

func (m *MockCartItemRepo) ListLinesByUserID(ctx context.Context, userID int64) ([]repo.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]repo.CartLine)
	return lines, args.Error(1)
}

func (m *MockCartItemRepo) IncrementOrCreate(ctx context.Context, userID int64, productID int64, addQty int64) (int64, error) {
	args := m.Called(ctx, userID, productID, addQty)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartItemRepo) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, productIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartItemRepo) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartItemRepo) SumQuantity(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// ProductRepository モック
// =====================

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *MockProductRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) CreateBulk(ctx context.Context, products []model.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// =====================
// CheckoutObserver モック
// =====================

type MockCheckoutObserver struct {
	mock.Mock
}

func (m *MockCheckoutObserver) ObserveCheckout(outcome CheckoutOutcome, totalCents int64) {
	m.Called(outcome, totalCents)
}

var (
	_ repo.TransactionManager = (*MockTxManager)(nil)
	_ repo.CartItemRepository = (*MockCartItemRepo)(nil)
	_ repo.ProductRepository  = (*MockProductRepo)(nil)
	_ CheckoutObserver        = (*MockCheckoutObserver)(nil)
)
