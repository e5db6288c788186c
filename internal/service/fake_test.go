package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/repository"
)

// fakeStore is an in-memory repository.Store shared by the service tests.
type fakeStore struct {
	mu sync.Mutex

	seq int64

	carts     map[int64]domain.Cart
	items     map[int64]domain.CartItem
	products  map[int64]domain.Product
	orders    map[int64]*domain.Order
	payments  map[int64]domain.Payment // keyed by order id
	taxes     []domain.Tax
	delivery  map[string]domain.DeliveryPricing
	pickDrops map[int64]domain.PickDrop
	notes     []domain.Notification
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:     make(map[int64]domain.Cart),
		items:     make(map[int64]domain.CartItem),
		products:  make(map[int64]domain.Product),
		orders:    make(map[int64]*domain.Order),
		payments:  make(map[int64]domain.Payment),
		delivery:  make(map[string]domain.DeliveryPricing),
		pickDrops: make(map[int64]domain.PickDrop),
	}
}

func (f *fakeStore) nextID() int64 {
	f.seq++
	return f.seq
}

func (f *fakeStore) WithUserCartLock(_ context.Context, _ int64, fn func(repository.Querier) error) error {
	return fn(f)
}

func (f *fakeStore) FindCartsByUser(_ context.Context, userID int64) ([]domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Cart
	for _, c := range f.carts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) CreateCart(_ context.Context, userID int64) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Cart{ID: f.nextID(), UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeStore) DeleteCart(_ context.Context, cartID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, cartID)
	for id, it := range f.items {
		if it.CartID == cartID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeStore) GetCartItems(_ context.Context, cartID int64) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CartItem
	for _, it := range f.items {
		if it.CartID == cartID {
			it.Product = nil
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) InsertCartItem(_ context.Context, arg repository.InsertCartItemParams) (domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := domain.CartItem{
		ID:          f.nextID(),
		CartID:      arg.CartID,
		ProductID:   arg.ProductID,
		Quantity:    arg.Quantity,
		VariationID: arg.VariationID,
		Snapshot:    arg.Snapshot,
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeStore) UpdateCartItem(_ context.Context, arg repository.UpdateCartItemParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[arg.ItemID]
	if !ok {
		return repository.ErrNotFound
	}
	it.Quantity = arg.Quantity
	it.Snapshot = arg.Snapshot
	f.items[arg.ItemID] = it
	return nil
}

func (f *fakeStore) DeleteCartItem(_ context.Context, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[itemID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeStore) ClearCartItems(_ context.Context, cartID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, it := range f.items {
		if it.CartID == cartID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := p
	copied.Variations = append([]domain.Variation(nil), p.Variations...)
	return &copied, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, arg repository.CreateOrderParams) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := &domain.Order{
		ID:            f.nextID(),
		UserID:        arg.UserID,
		DeliveryType:  arg.DeliveryType,
		DeliveryFee:   arg.DeliveryFee,
		SubTotal:      arg.SubTotal,
		TaxAmount:     arg.TaxAmount,
		TotalAmount:   arg.TotalAmount,
		PaymentMethod: arg.PaymentMethod,
		PaymentStatus: arg.PaymentStatus,
		ShippingAddr:  arg.ShippingAddr,
		ScheduledAt:   arg.ScheduledAt,
		CreatedAt:     time.Now(),
	}
	for _, line := range arg.Products {
		o.Products = append(o.Products, domain.OrderProduct{
			ID: f.nextID(), OrderID: o.ID, ProductID: line.ProductID, Quantity: line.Quantity,
		})
	}
	if arg.InitialStatus != "" {
		o.StatusLog = append(o.StatusLog, domain.OrderStatusEntry{
			ID: f.nextID(), OrderID: o.ID, Status: arg.InitialStatus, Note: arg.InitialNote, CreatedAt: time.Now(),
		})
	}
	f.orders[o.ID] = o
	return copyOrder(o), nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (f *fakeStore) ListOrders(_ context.Context, filter domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*domain.Order
	for _, o := range f.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.MinAmount != nil && o.TotalAmount.LessThan(*filter.MinAmount) {
			continue
		}
		if filter.MaxAmount != nil && o.TotalAmount.GreaterThan(*filter.MaxAmount) {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))

	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	var out []domain.Order
	for _, o := range matched[start:end] {
		out = append(out, *copyOrder(o))
	}
	return out, total, nil
}

func (f *fakeStore) AppendOrderStatus(_ context.Context, orderID int64, status, note string) (domain.OrderStatusEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return domain.OrderStatusEntry{}, repository.ErrNotFound
	}
	e := domain.OrderStatusEntry{ID: f.nextID(), OrderID: orderID, Status: status, Note: note, CreatedAt: time.Now()}
	o.StatusLog = append(o.StatusLog, e)
	return e, nil
}

func (f *fakeStore) SetOrderPaymentStatus(_ context.Context, orderID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (f *fakeStore) UpsertPayment(_ context.Context, arg repository.UpsertPaymentParams) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[arg.OrderID]
	if !ok {
		p = domain.Payment{ID: f.nextID(), OrderID: arg.OrderID, CreatedAt: time.Now()}
	}
	p.UserID = arg.UserID
	p.Amount = arg.Amount
	p.Status = arg.Status
	p.PaymentMethod = arg.PaymentMethod
	p.TransactionID = arg.TransactionID
	p.Details = arg.Details
	p.UpdatedAt = time.Now()
	f.payments[arg.OrderID] = p
	return &p, nil
}

func (f *fakeStore) GetPaymentByOrder(_ context.Context, orderID int64) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) ListPaymentsByUser(_ context.Context, userID int64, page domain.Page) ([]domain.Payment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeStore) CurrentTax(_ context.Context, now time.Time) (*domain.Tax, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.Tax
	for i := range f.taxes {
		t := f.taxes[i]
		if !t.Active || t.ApplicableFrom.After(now) {
			continue
		}
		if t.ApplicableTo != nil && t.ApplicableTo.Before(now) {
			continue
		}
		if best == nil || t.CreatedAt.After(best.CreatedAt) {
			best = &f.taxes[i]
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (f *fakeStore) ListTaxes(_ context.Context) ([]domain.Tax, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Tax(nil), f.taxes...), nil
}

func (f *fakeStore) CreateTax(_ context.Context, arg repository.CreateTaxParams) (*domain.Tax, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := domain.Tax{
		ID:             f.nextID(),
		Name:           arg.Name,
		Rate:           arg.Rate,
		MinimumAmount:  arg.MinimumAmount,
		MaximumAmount:  arg.MaximumAmount,
		ApplicableFrom: arg.ApplicableFrom,
		ApplicableTo:   arg.ApplicableTo,
		Active:         arg.Active,
		CreatedAt:      time.Now(),
	}
	f.taxes = append(f.taxes, t)
	return &t, nil
}

func (f *fakeStore) DeliveryPricingByType(_ context.Context, deliveryType string) (*domain.DeliveryPricing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.delivery[deliveryType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (f *fakeStore) ListDeliveryPricing(_ context.Context) ([]domain.DeliveryPricing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.DeliveryPricing
	for _, d := range f.delivery {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.LessThan(out[j].Amount) })
	return out, nil
}

func (f *fakeStore) UpsertDeliveryPricing(_ context.Context, deliveryType string, amount decimal.Decimal) (*domain.DeliveryPricing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.delivery[deliveryType]
	if !ok {
		d = domain.DeliveryPricing{ID: f.nextID(), Type: deliveryType}
	}
	d.Amount = amount
	f.delivery[deliveryType] = d
	return &d, nil
}

func (f *fakeStore) CreatePickDrop(_ context.Context, arg repository.CreatePickDropParams) (*domain.PickDrop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pd := domain.PickDrop{
		ID:                  f.nextID(),
		UserID:              arg.UserID,
		SenderName:          arg.SenderName,
		SenderContact:       arg.SenderContact,
		ReceiverName:        arg.ReceiverName,
		ReceiverContact:     arg.ReceiverContact,
		ItemDescription:     arg.ItemDescription,
		ItemWeightKg:        arg.ItemWeightKg,
		PreferredPickupTime: arg.PreferredPickupTime,
		Status:              domain.PickDropPending,
		CreatedAt:           time.Now(),
	}
	f.pickDrops[pd.ID] = pd
	return &pd, nil
}

func (f *fakeStore) GetPickDrop(_ context.Context, id int64) (*domain.PickDrop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pd, ok := f.pickDrops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pd, nil
}

func (f *fakeStore) UpdatePickDropStatus(_ context.Context, arg repository.UpdatePickDropStatusParams) (*domain.PickDrop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pd, ok := f.pickDrops[arg.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	pd.Status = arg.Status
	if arg.AssignedRider != "" {
		pd.AssignedRider = arg.AssignedRider
	}
	f.pickDrops[arg.ID] = pd
	return &pd, nil
}

func (f *fakeStore) ListPickDropsByUser(_ context.Context, userID int64, _ domain.Page) ([]domain.PickDrop, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PickDrop
	for _, pd := range f.pickDrops {
		if pd.UserID == userID {
			out = append(out, pd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeStore) CreateNotification(_ context.Context, arg repository.CreateNotificationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, domain.Notification{
		ID: f.nextID(), UserID: arg.UserID, Title: arg.Title, Message: arg.Message, CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) ListNotificationsByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func copyOrder(o *domain.Order) *domain.Order {
	copied := *o
	copied.Products = append([]domain.OrderProduct(nil), o.Products...)
	copied.StatusLog = append([]domain.OrderStatusEntry(nil), o.StatusLog...)
	return &copied
}

// fakeNotifier records notifications instead of delivering them.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, userID int64, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, domain.Notification{UserID: userID, Title: title, Message: message})
}

func (n *fakeNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.Title)
	}
	return out
}
