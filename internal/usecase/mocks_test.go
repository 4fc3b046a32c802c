package usecase_test

import (
	"context"
	"strings"
	"testing"

	"toko/internal/domain/model"
	repo "toko/internal/repository"
	"toko/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	inventory   repo.InventoryRepository
	products    repo.ProductRepository
	orderEvents repo.OrderEventRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository           { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository       { return r.products }
func (r *TxReposMock) OrderEvents() repo.OrderEventRepository { return r.orderEvents }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	args := m.Called(ctx, orderNumber)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderNumber string, upd repo.PaymentStatusUpdate) error {
	args := m.Called(ctx, orderNumber, upd)
	return args.Error(0)
}

func (m *OrderRepoMock) SetPaymentToken(ctx context.Context, orderID int64, token string) error {
	args := m.Called(ctx, orderID, token)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdatePaymentMethod(ctx context.Context, orderID int64, method model.PaymentMethod) error {
	args := m.Called(ctx, orderID, method)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type OrderEventRepoMock struct{ mock.Mock }

func (m *OrderEventRepoMock) Create(ctx context.Context, ev model.OrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *OrderEventRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderEvent, error) {
	args := m.Called(ctx, orderID)
	evs, _ := args.Get(0).([]model.OrderEvent)
	return evs, args.Error(1)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, n model.PaymentNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByOrderNumber(ctx context.Context, orderNumber string) ([]model.PaymentNotification, error) {
	args := m.Called(ctx, orderNumber)
	ns, _ := args.Get(0).([]model.PaymentNotification)
	return ns, args.Error(1)
}

// =====================
// PaymentGateway mock
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateTransaction(ctx context.Context, order model.Order, items []model.OrderItem) (usecase.PaymentSession, error) {
	args := m.Called(ctx, order, items)
	s, _ := args.Get(0).(usecase.PaymentSession)
	return s, args.Error(1)
}

func (m *GatewayMock) CheckTransaction(ctx context.Context, orderNumber string) (usecase.GatewayStatus, error) {
	args := m.Called(ctx, orderNumber)
	gs, _ := args.Get(0).(usecase.GatewayStatus)
	return gs, args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
