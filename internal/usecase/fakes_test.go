package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// in-memory store（TxReposを1つで満たす）
// =====================

type memStore struct {
	mu sync.Mutex

	nextID int64

	carts     map[int64]model.Cart
	cartItems map[int64]model.CartItem
	cartPkgs  map[int64]model.CartPackageItem
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	pkgs      map[int64][]model.OrderPackageItem
	tables    map[int64]model.Table
	slots     map[int64]model.TimeSlot
	addresses map[int64]model.Address
	dishes    map[int64]model.Dish
	packages  map[int64]model.Package
	audits    []model.AuditLog

	//採番衝突を起こす回数
	duplicateNumbers int
	//WithinTxの呼び出し回数
	txCalls int
}

func newMemStore() *memStore {
	return &memStore{
		carts:     map[int64]model.Cart{},
		cartItems: map[int64]model.CartItem{},
		cartPkgs:  map[int64]model.CartPackageItem{},
		orders:    map[int64]model.Order{},
		items:     map[int64][]model.OrderItem{},
		pkgs:      map[int64][]model.OrderPackageItem{},
		tables:    map[int64]model.Table{},
		slots:     map[int64]model.TimeSlot{},
		addresses: map[int64]model.Address{},
		dishes:    map[int64]model.Dish{},
		packages:  map[int64]model.Package{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// WithinTx は全体ロックで直列化し、失敗したら状態を戻す
func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCalls++

	snap := s.clone()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range s.cartPkgs {
		c.cartPkgs[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.pkgs {
		c.pkgs[k] = v
	}
	c.audits = append(c.audits, s.audits...)
	return c
}

func (s *memStore) restore(c *memStore) {
	s.nextID = c.nextID
	s.carts, s.cartItems, s.cartPkgs = c.carts, c.cartItems, c.cartPkgs
	s.orders, s.items, s.pkgs = c.orders, c.items, c.pkgs
	s.audits = c.audits
}

func (s *memStore) Orders() repo.OrderRepository         { return s }
func (s *memStore) OrderItems() repo.OrderItemRepository { return orderItemsView{s} }
func (s *memStore) Carts() repo.CartRepository           { return s }
func (s *memStore) CartItems() repo.CartItemRepository   { return s }
func (s *memStore) Tables() repo.TableRepository         { return tablesView{s} }
func (s *memStore) AuditLogs() repo.AuditLogRepository   { return auditView{s} }

// ---- carts ----

func (s *memStore) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	if c, err := s.FindActiveByUserID(ctx, userID); err == nil {
		return c, nil
	}
	c := model.Cart{ID: s.id(), UserID: userID, Status: model.CartStatusActive}
	s.carts[c.ID] = c
	return c, nil
}

func (s *memStore) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (s *memStore) LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return s.FindActiveByUserID(ctx, userID)
}

func (s *memStore) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	c, ok := s.carts[cartID]
	if !ok {
		return repo.ErrNotFound
	}
	c.Status = status
	s.carts[cartID] = c
	return nil
}

func (s *memStore) Clear(ctx context.Context, cartID int64) error {
	for id, it := range s.cartItems {
		if it.CartID == cartID {
			delete(s.cartItems, id)
		}
	}
	for id, p := range s.cartPkgs {
		if p.CartID == cartID {
			delete(s.cartPkgs, id)
		}
	}
	return nil
}

func (s *memStore) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var out []model.CartItem
	for _, it := range s.cartItems {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListPackagesByCartID(ctx context.Context, cartID int64) ([]model.CartPackageItem, error) {
	var out []model.CartPackageItem
	for _, p := range s.cartPkgs {
		if p.CartID == cartID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	item.ID = s.id()
	s.cartItems[item.ID] = item
	return item, nil
}

func (s *memStore) AddPackage(ctx context.Context, p model.CartPackageItem) (model.CartPackageItem, error) {
	p.ID = s.id()
	s.cartPkgs[p.ID] = p
	return p, nil
}

func (s *memStore) DeleteItem(ctx context.Context, cartID, id int64) error {
	it, ok := s.cartItems[id]
	if !ok || it.CartID != cartID {
		return repo.ErrNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *memStore) DeletePackage(ctx context.Context, cartID, id int64) error {
	p, ok := s.cartPkgs[id]
	if !ok || p.CartID != cartID {
		return repo.ErrNotFound
	}
	delete(s.cartPkgs, id)
	return nil
}

// ---- orders ----

func (s *memStore) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	o.Items = s.items[orderID]
	o.PackageItems = s.pkgs[orderID]
	return o, nil
}

func (s *memStore) LockByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (s *memStore) ListByUserID(ctx context.Context, userID int64, page, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.Order{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *memStore) Create(ctx context.Context, o *model.Order) error {
	if s.duplicateNumbers > 0 {
		s.duplicateNumbers--
		return repo.ErrDuplicateOrderNumber
	}
	for _, other := range s.orders {
		if other.OrderNumber == o.OrderNumber {
			return repo.ErrDuplicateOrderNumber
		}
		if o.IdempotencyKey != nil && other.IdempotencyKey != nil &&
			other.UserID == o.UserID && *other.IdempotencyKey == *o.IdempotencyKey {
			return repo.ErrDuplicateIdempotencyKey
		}
	}
	o.ID = s.id()
	s.orders[o.ID] = *o
	return nil
}

func (s *memStore) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	for _, o := range s.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (s *memStore) ListPendingReservations(ctx context.Context, tableID int64, date time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.orders {
		if o.TableID == nil || *o.TableID != tableID || o.DiningDate == nil {
			continue
		}
		if o.DiningDate.Format(time.DateOnly) != date.Format(time.DateOnly) {
			continue
		}
		if o.ReservationStatus == model.ReservationPending {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(*out[j].CheckInTime) })
	return out, nil
}

func (s *memStore) LockOverdueReservations(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.orders {
		if o.ReservationStatus != model.ReservationPending || o.OverdueFlaggedAt != nil || o.CheckOutTime == nil {
			continue
		}
		end := o.CheckOutTime.Add(time.Duration(o.TotalExtendedMinutes) * time.Minute)
		if end.Before(now) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckOutTime.Before(*out[j].CheckOutTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) SaveReservation(ctx context.Context, o model.Order) error {
	cur, ok := s.orders[o.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Status = o.Status
	cur.ReservationStatus = o.ReservationStatus
	cur.AutoExtendCount = o.AutoExtendCount
	cur.TotalExtendedMinutes = o.TotalExtendedMinutes
	cur.CheckedInAt = o.CheckedInAt
	cur.CheckedOutAt = o.CheckedOutAt
	cur.CancelledAt = o.CancelledAt
	cur.OverdueFlaggedAt = o.OverdueFlaggedAt
	s.orders[o.ID] = cur
	return nil
}

func (s *memStore) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.ReservationStatus != "" && string(o.ReservationStatus) != f.ReservationStatus {
			continue
		}
		if f.DiningDate != nil && (o.DiningDate == nil || o.DiningDate.Format(time.DateOnly) != f.DiningDate.Format(time.DateOnly)) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ---- audit ----

// AuditLogRepository.Create は注文のCreateと名前が被るので別型で持つ
type auditView struct{ s *memStore }

func (a auditView) Create(ctx context.Context, l model.AuditLog) error {
	a.s.audits = append(a.s.audits, l)
	return nil
}

func (a auditView) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var out []model.AuditLog
	for _, l := range a.s.audits {
		if f.ResourceID != nil && l.ResourceID != *f.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ---- order items ----

type orderItemsView struct{ s *memStore }

func (v orderItemsView) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for i := range items {
		items[i].ID = v.s.id()
		items[i].OrderID = orderID
	}
	v.s.items[orderID] = append(v.s.items[orderID], items...)
	return nil
}

func (v orderItemsView) CreatePackagesBulk(ctx context.Context, orderID int64, pkgs []model.OrderPackageItem) error {
	for i := range pkgs {
		pkgs[i].ID = v.s.id()
		pkgs[i].OrderID = orderID
	}
	v.s.pkgs[orderID] = append(v.s.pkgs[orderID], pkgs...)
	return nil
}

func (v orderItemsView) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return v.s.items[orderID], nil
}

func (v orderItemsView) ListPackagesByOrderID(ctx context.Context, orderID int64) ([]model.OrderPackageItem, error) {
	return v.s.pkgs[orderID], nil
}

// ---- tables / slots / addresses / catalog ----

type tablesView struct{ s *memStore }

func (v tablesView) FindByID(ctx context.Context, id int64) (model.Table, error) {
	t, ok := v.s.tables[id]
	if !ok {
		return model.Table{}, repo.ErrNotFound
	}
	return t, nil
}

func (v tablesView) LockByID(ctx context.Context, id int64) (model.Table, error) {
	return v.FindByID(ctx, id)
}

func (v tablesView) ListByMinCapacity(ctx context.Context, min int) ([]model.Table, error) {
	var out []model.Table
	for _, t := range v.s.tables {
		if t.Capacity >= min {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (v tablesView) Create(ctx context.Context, t model.Table) (model.Table, error) {
	t.ID = v.s.id()
	v.s.tables[t.ID] = t
	return t, nil
}

type slotsView struct{ s *memStore }

func (v slotsView) FindByID(ctx context.Context, id int64) (model.TimeSlot, error) {
	t, ok := v.s.slots[id]
	if !ok {
		return model.TimeSlot{}, repo.ErrNotFound
	}
	return t, nil
}

func (v slotsView) List(ctx context.Context) ([]model.TimeSlot, error) {
	var out []model.TimeSlot
	for _, t := range v.s.slots {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (v slotsView) Create(ctx context.Context, t model.TimeSlot) (model.TimeSlot, error) {
	t.ID = v.s.id()
	v.s.slots[t.ID] = t
	return t, nil
}

type addressesView struct{ s *memStore }

func (v addressesView) Create(ctx context.Context, a model.Address) (model.Address, error) {
	a.ID = v.s.id()
	v.s.addresses[a.ID] = a
	return a, nil
}

func (v addressesView) FindByID(ctx context.Context, id int64) (model.Address, error) {
	a, ok := v.s.addresses[id]
	if !ok {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (v addressesView) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	for _, a := range v.s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type catalogView struct{ s *memStore }

func (v catalogView) FindDish(ctx context.Context, id int64) (model.Dish, error) {
	d, ok := v.s.dishes[id]
	if !ok || !d.IsActive {
		return model.Dish{}, repo.ErrNotFound
	}
	return d, nil
}

func (v catalogView) FindPackage(ctx context.Context, id int64) (model.Package, error) {
	p, ok := v.s.packages[id]
	if !ok || !p.IsActive {
		return model.Package{}, repo.ErrNotFound
	}
	return p, nil
}

func (v catalogView) CreateDish(ctx context.Context, d model.Dish) (model.Dish, error) {
	d.ID = v.s.id()
	for i := range d.Addons {
		d.Addons[i].ID = v.s.id()
		d.Addons[i].DishID = d.ID
	}
	for i := range d.Variants {
		d.Variants[i].ID = v.s.id()
		d.Variants[i].DishID = d.ID
	}
	v.s.dishes[d.ID] = d
	return d, nil
}

func (v catalogView) CreatePackage(ctx context.Context, p model.Package) (model.Package, error) {
	p.ID = v.s.id()
	for i := range p.Dishes {
		p.Dishes[i].PackageID = p.ID
		p.Dishes[i].Dish = v.s.dishes[p.Dishes[i].DishID]
	}
	v.s.packages[p.ID] = p
	return p, nil
}

// =====================
// 外部ポート
// =====================

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type seqNumbers struct{ n int }

func (g *seqNumbers) Next(now time.Time) string {
	g.n++
	return "ORD-" + now.Format("0601021504") + "-" + string(rune('A'+g.n-1))
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, name, key string, payload any) error {
	args := m.Called(ctx, name, key, payload)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	_ repo.TransactionManager = (*memStore)(nil)
	_ repo.TxRepos            = (*memStore)(nil)
	_ repo.CartRepository     = (*memStore)(nil)
	_ repo.CartItemRepository = (*memStore)(nil)
	_ repo.OrderRepository    = (*memStore)(nil)
)
