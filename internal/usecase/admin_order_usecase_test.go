package usecase_test

import (
	"context"
	"testing"

	"toko/internal/domain/model"
	repo "toko/internal/repository"
	"toko/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type adminFixture struct {
	tx            *TxManagerMock
	orders        *OrderRepoMock
	items         *OrderItemRepoMock
	inv           *InventoryRepoMock
	events        *OrderEventRepoMock
	notifications *NotificationRepoMock
}

func newAdminFixture() (*usecase.AdminOrderUsecase, *TxManagerMock, *OrderRepoMock, *OrderItemRepoMock, *InventoryRepoMock, *OrderEventRepoMock) {
	uc, f := newAdminDetailFixture()
	return uc, f.tx, f.orders, f.items, f.inv, f.events
}

func newAdminDetailFixture() (*usecase.AdminOrderUsecase, adminFixture) {
	f := adminFixture{
		tx:            new(TxManagerMock),
		orders:        new(OrderRepoMock),
		items:         new(OrderItemRepoMock),
		inv:           new(InventoryRepoMock),
		events:        new(OrderEventRepoMock),
		notifications: new(NotificationRepoMock),
	}

	f.tx.Repos = &TxReposMock{
		orders:      f.orders,
		orderItems:  f.items,
		inventory:   f.inv,
		orderEvents: f.events,
	}

	uc := usecase.NewAdminOrderUsecase(f.tx, f.notifications, zap.NewNop())
	return uc, f
}

func TestAdminUpdateStatus_Unauthorized(t *testing.T) {
	uc, tx, _, _, _, _ := newAdminFixture()

	err := uc.UpdateStatus(context.Background(), 0, 1, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, he.Status)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminUpdateStatus_InvalidStatus(t *testing.T) {
	uc, tx, _, _, _, _ := newAdminFixture()

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminUpdateStatus_OrderNotFound(t *testing.T) {
	uc, tx, orders, _, _, _ := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	err := uc.UpdateStatus(context.Background(), 5, 404, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestAdminUpdateStatus_SameStatus_NoOp(t *testing.T) {
	uc, tx, orders, _, _, events := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusConfirmed}, nil)

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	//同じステータスなら更新もイベントも無し
	assert.NoError(t, err)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_CancelledIsTerminal(t *testing.T) {
	uc, tx, orders, _, _, _ := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusCancelled}, nil)

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "pending"})

	assertErrContains(t, err, "cancelled")
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_CancelFromPending_RestocksItems(t *testing.T) {
	uc, tx, orders, items, inv, events := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil)
	items.On("ListByOrderID", mock.Anything, int64(1)).
		Return([]model.OrderItem{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		}, nil)
	inv.On("IncreaseStock", mock.Anything, int64(7), int64(2)).Return(nil)
	inv.On("IncreaseStock", mock.Anything, int64(9), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusCancelled).Return(nil)
	events.On("Create", mock.Anything, mock.MatchedBy(func(ev model.OrderEvent) bool {
		return ev.EventType == model.OrderEventAdminOverride && ev.ActorUserID == 5
	})).Return(nil)

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})

	assert.NoError(t, err)
	inv.AssertExpectations(t)
	orders.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestAdminUpdateStatus_CancelFromCompleted_NoRestock(t *testing.T) {
	uc, tx, orders, items, inv, events := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusCompleted, PaymentStatus: model.PaymentStatusPaid}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusCancelled).Return(nil)
	events.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})

	//完了済みは出荷済み扱いなので在庫は戻さない
	assert.NoError(t, err)
	items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_ConfirmFromPending(t *testing.T) {
	uc, tx, orders, _, inv, events := newAdminFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusConfirmed).Return(nil)
	events.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), 5, 1, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})

	assert.NoError(t, err)
	inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertExpectations(t)
}

func TestAdminDetail_ReturnsEventsAndNotificationLog(t *testing.T) {
	uc, f := newAdminDetailFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(1)).
		Return(model.Order{ID: 1, OrderNumber: "ORDA", CustomerName: "Ani"}, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(1)).
		Return([]model.OrderItem{{ProductID: 1, Quantity: 2}}, nil)
	f.events.On("ListByOrderID", mock.Anything, int64(1)).
		Return([]model.OrderEvent{
			{ID: 2, EventType: model.OrderEventPaymentStatus, AfterJSON: `{"status":"completed"}`},
			{ID: 1, EventType: model.OrderEventGatewayFallback},
		}, nil)
	f.notifications.On("ListByOrderNumber", mock.Anything, "ORDA").
		Return([]model.PaymentNotification{
			{ID: 1, TransactionStatus: "settlement", TransactionID: "tx-1", PaymentType: "gopay", GrossAmount: 20000},
		}, nil)

	out, err := uc.Detail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "ORDA", out.OrderNumber)
	assert.Len(t, out.Items, 1)
	if assert.Len(t, out.Events, 2) {
		assert.Equal(t, "PAYMENT_STATUS", out.Events[0].EventType)
	}
	if assert.Len(t, out.Notifications, 1) {
		assert.Equal(t, "settlement", out.Notifications[0].TransactionStatus)
	}
}

func TestAdminDetail_NotFound(t *testing.T) {
	uc, f := newAdminDetailFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.Detail(context.Background(), 404)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	f.notifications.AssertNotCalled(t, "ListByOrderNumber", mock.Anything, mock.Anything)
}

func TestAdminDetail_InvalidID(t *testing.T) {
	uc, f := newAdminDetailFixture()

	_, err := uc.Detail(context.Background(), 0)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminList_InvalidPage(t *testing.T) {
	uc, tx, _, _, _, _ := newAdminFixture()

	_, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 10})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminList_LimitTooLarge(t *testing.T) {
	uc, _, _, _, _, _ := newAdminFixture()

	_, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 500})
	assertErrContains(t, err, "limit")
}

func TestAdminList_ReturnsOrdersWithItems(t *testing.T) {
	uc, tx, orders, items, _, _ := newAdminFixture()

	f := repo.AdminOrderListFilter{Page: 1, Limit: 10}

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("ListAdmin", mock.Anything, f).
		Return([]model.Order{
			{ID: 1, OrderNumber: "ORDA", CustomerName: "Ani"},
			{ID: 2, OrderNumber: "ORDB", CustomerName: "Budi"},
		}, int64(2), nil)
	items.On("ListByOrderID", mock.Anything, int64(1)).
		Return([]model.OrderItem{{ProductID: 1, Quantity: 2}}, nil)
	items.On("ListByOrderID", mock.Anything, int64(2)).
		Return([]model.OrderItem{}, nil)

	outs, err := uc.List(context.Background(), f)
	assert.NoError(t, err)
	if assert.Len(t, outs, 2) {
		assert.Equal(t, "ORDA", outs[0].OrderNumber)
		assert.Len(t, outs[0].Items, 1)
		assert.Empty(t, outs[1].Items)
	}
}
