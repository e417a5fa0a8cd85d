package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// テスト用のインメモリ実装。
// WithinTx は全体を1本に直列化し、fnがエラーなら開始時点の状態に戻す。
type memStore struct {
	txMu   sync.Mutex
	dataMu sync.Mutex

	users    map[int64]model.User
	products map[int64]model.Product
	removed  map[int64]bool
	cart     map[int64]map[int64]int64
	orders   []model.Order
	items    []model.OrderItem

	nextOrderID int64
	nextItemID  int64

	// "orders.create" / "order_items.create" / "cart.delete" などで失敗させる
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]model.User{},
		products: map[int64]model.Product{},
		removed:  map[int64]bool{},
		cart:     map[int64]map[int64]int64{},
		fail:     map[string]error{},
	}
}

func (s *memStore) addUser(id int64) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.users[id] = model.User{ID: id, Phone: fmt.Sprintf("98765%05d", id)}
}

func (s *memStore) addProduct(id int64, name string, priceCents int64) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.products[id] = model.Product{ID: id, Name: name, PriceCents: priceCents}
}

func (s *memStore) setPrice(id int64, priceCents int64) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	p := s.products[id]
	p.PriceCents = priceCents
	s.products[id] = p
}

func (s *memStore) removeProduct(id int64) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.removed[id] = true
}

func (s *memStore) cartOf(userID int64) map[int64]int64 {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	out := map[int64]int64{}
	for k, v := range s.cart[userID] {
		out[k] = v
	}
	return out
}

func (s *memStore) orderCount() int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return len(s.items)
}

func (s *memStore) failure(op string) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.fail[op]
}

type memSnapshot struct {
	cart        map[int64]map[int64]int64
	orders      []model.Order
	items       []model.OrderItem
	users       map[int64]model.User
	nextOrderID int64
	nextItemID  int64
}

func (s *memStore) snapshot() memSnapshot {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	cart := make(map[int64]map[int64]int64, len(s.cart))
	for u, lines := range s.cart {
		m := make(map[int64]int64, len(lines))
		for p, q := range lines {
			m[p] = q
		}
		cart[u] = m
	}
	users := make(map[int64]model.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return memSnapshot{
		cart:        cart,
		orders:      append([]model.Order(nil), s.orders...),
		items:       append([]model.OrderItem(nil), s.items...),
		users:       users,
		nextOrderID: s.nextOrderID,
		nextItemID:  s.nextItemID,
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.cart = snap.cart
	s.orders = snap.orders
	s.items = snap.items
	s.users = snap.users
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
}

// repo.TransactionManager
func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(memTxRepos{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Users() repo.UserRepository           { return memUserRepo{r.s} }
func (r memTxRepos) Products() repo.ProductRepository     { return memProductRepo{r.s} }
func (r memTxRepos) CartItems() repo.CartItemRepository   { return memCartRepo{r.s} }
func (r memTxRepos) Orders() repo.OrderRepository         { return memOrderRepo{r.s} }
func (r memTxRepos) OrderItems() repo.OrderItemRepository { return memOrderItemRepo{r.s} }

// users
type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == user.Phone {
			return repo.ErrPhoneTaken
		}
	}
	user.ID = int64(len(r.s.users) + 1)
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r memUserRepo) IncrementTokenVersion(ctx context.Context, userID int64) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.TokenVersion++
	r.s.users[userID] = u
	return nil
}

// WithinTx自体が直列化しているので存在確認だけ
func (r memUserRepo) LockByID(ctx context.Context, userID int64) error {
	if err := r.s.failure("users.lock"); err != nil {
		return err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return repo.ErrUserNotFound
	}
	return nil
}

func (r memUserRepo) DeleteWithDependents(ctx context.Context, userID int64) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return repo.ErrUserNotFound
	}
	orderIDs := map[int64]bool{}
	var orders []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orderIDs[o.ID] = true
			continue
		}
		orders = append(orders, o)
	}
	var items []model.OrderItem
	for _, it := range r.s.items {
		if !orderIDs[it.OrderID] {
			items = append(items, it)
		}
	}
	r.s.orders = orders
	r.s.items = items
	delete(r.s.cart, userID)
	delete(r.s.users, userID)
	return nil
}

// products
type memProductRepo struct{ s *memStore }

func (r memProductRepo) visible() []model.Product {
	var out []model.Product
	for id, p := range r.s.products {
		if !r.s.removed[id] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if err := r.s.failure("products.list"); err != nil {
		return nil, 0, err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	all := r.visible()
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]model.Product{}, all[start:end]...), int64(len(all)), nil
}

func (r memProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	p, ok := r.s.products[id]
	if !ok || r.s.removed[id] {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProductRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if err := r.s.failure("products.find_by_ids"); err != nil {
		return nil, err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !r.s.removed[id] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) Count(ctx context.Context) (int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	return int64(len(r.visible())), nil
}

func (r memProductRepo) CreateBulk(ctx context.Context, products []model.Product) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, p := range products {
		p.ID = int64(len(r.s.products) + 1)
		r.s.products[p.ID] = p
	}
	return nil
}

// cart_items
type memCartRepo struct{ s *memStore }

func (r memCartRepo) ListLinesByUserID(ctx context.Context, userID int64) ([]repo.CartLine, error) {
	if err := r.s.failure("cart.list"); err != nil {
		return nil, err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	lines := []repo.CartLine{}
	for pid, qty := range r.s.cart[userID] {
		p, ok := r.s.products[pid]
		if !ok || r.s.removed[pid] {
			continue
		}
		lines = append(lines, repo.CartLine{
			ProductID:  pid,
			Name:       p.Name,
			ImageURL:   p.ImageURL,
			PriceCents: p.PriceCents,
			Quantity:   qty,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (r memCartRepo) IncrementOrCreate(ctx context.Context, userID int64, productID int64, addQty int64) (int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if r.s.cart[userID] == nil {
		r.s.cart[userID] = map[int64]int64{}
	}
	r.s.cart[userID][productID] += addQty
	return r.s.cart[userID][productID], nil
}

func (r memCartRepo) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error) {
	if err := r.s.failure("cart.delete"); err != nil {
		return 0, err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var n int64
	for _, pid := range productIDs {
		if _, ok := r.s.cart[userID][pid]; ok {
			delete(r.s.cart[userID], pid)
			n++
		}
	}
	return n, nil
}

func (r memCartRepo) DeleteAllByUserID(ctx context.Context, userID int64) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	delete(r.s.cart, userID)
	return nil
}

func (r memCartRepo) SumQuantity(ctx context.Context, userID int64) (int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var n int64
	for pid, q := range r.s.cart[userID] {
		if _, ok := r.s.products[pid]; ok && !r.s.removed[pid] {
			n += q
		}
	}
	return n, nil
}

// orders
type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrderRepo) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var mine []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})
	total := int64(len(mine))
	start := (page - 1) * limit
	if start > len(mine) {
		start = len(mine)
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (r memOrderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.s.failure("orders.create"); err != nil {
		return 0, err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.s.orders = append(r.s.orders, order)
	return order.ID, nil
}

// order_items
type memOrderItemRepo struct{ s *memStore }

func (r memOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if err := r.s.failure("order_items.create"); err != nil {
		return err
	}
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, it := range items {
		r.s.nextItemID++
		it.ID = r.s.nextItemID
		it.OrderID = orderID
		r.s.items = append(r.s.items, it)
	}
	return nil
}

func (r memOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var out []model.OrderItem
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var errInjected = errors.New("injected failure")

var (
	_ repo.TransactionManager  = (*memStore)(nil)
	_ repo.UserRepository      = memUserRepo{}
	_ repo.ProductRepository   = memProductRepo{}
	_ repo.CartItemRepository  = memCartRepo{}
	_ repo.OrderRepository     = memOrderRepo{}
	_ repo.OrderItemRepository = memOrderItemRepo{}
)
