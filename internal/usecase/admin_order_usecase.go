package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx            repo.TransactionManager
	notifications repo.PaymentNotificationRepository
	logger        *zap.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, notifications repo.PaymentNotificationRepository, logger *zap.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, notifications: notifications, logger: logger}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type OrderEventOutput struct {
	ID          int64     `json:"id"`
	ActorUserID int64     `json:"actor_user_id"`
	EventType   string    `json:"event_type"`
	Before      string    `json:"before,omitempty"`
	After       string    `json:"after,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaymentNotificationOutput struct {
	ID                int64     `json:"id"`
	TransactionStatus string    `json:"transaction_status"`
	TransactionID     string    `json:"transaction_id"`
	PaymentType       string    `json:"payment_type"`
	GrossAmount       int64     `json:"gross_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

type AdminOrderDetailOutput struct {
	OrderOutput
	Events        []OrderEventOutput          `json:"events"`
	Notifications []PaymentNotificationOutput `json:"payment_notifications"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 注文詳細（明細・監査イベント・支払い通知ログ込み）
func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID int64) (AdminOrderDetailOutput, error) {
	if orderID <= 0 {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out AdminOrderDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.OrderOutput = toOrderOutput(o, items)

		evs, err := r.OrderEvents().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Events = make([]OrderEventOutput, 0, len(evs))
		for _, ev := range evs {
			out.Events = append(out.Events, OrderEventOutput{
				ID:          ev.ID,
				ActorUserID: ev.ActorUserID,
				EventType:   string(ev.EventType),
				Before:      ev.BeforeJSON,
				After:       ev.AfterJSON,
				CreatedAt:   ev.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return AdminOrderDetailOutput{}, err
	}

	//生ログは追記専用テーブルなのでトランザクションの外で読む
	logs, err := u.notifications.ListByOrderNumber(ctx, out.OrderNumber)
	if err != nil {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out.Notifications = make([]PaymentNotificationOutput, 0, len(logs))
	for _, n := range logs {
		out.Notifications = append(out.Notifications, PaymentNotificationOutput{
			ID:                n.ID,
			TransactionStatus: n.TransactionStatus,
			TransactionID:     n.TransactionID,
			PaymentType:       n.PaymentType,
			GrossAmount:       n.GrossAmount,
			CreatedAt:         n.CreatedAt,
		})
	}

	return out, nil
}

// 管理者によるステータス上書き（cancelledなら在庫戻し）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusCompleted, model.OrderStatusCancelled:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		// キャンセル済みは終端
		if o.Status == model.OrderStatusCancelled {
			return NewHTTPError(http.StatusBadRequest, "cannot change cancelled order")
		}

		// キャンセルへ落とすときだけ在庫戻し（完了済みは対象外）
		if newStatus == model.OrderStatusCancelled && o.Status != model.OrderStatusCompleted {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		beforeStatus := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査イベント
		ev := model.OrderEvent{
			OrderID:     orderID,
			ActorUserID: actorAdminUserID,
			EventType:   model.OrderEventAdminOverride,
			BeforeJSON:  statusJSON(beforeStatus, o.PaymentStatus),
			AfterJSON:   statusJSON(newStatus, o.PaymentStatus),
			CreatedAt:   time.Now(),
		}
		if err := r.OrderEvents().Create(ctx, ev); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		u.logger.Info("order status overridden",
			zap.Int64("order_id", orderID),
			zap.Int64("actor_user_id", actorAdminUserID),
			zap.String("before", string(beforeStatus)),
			zap.String("after", string(newStatus)))
		return nil
	})
}
