package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"go.uber.org/zap"
)

type PaymentUsecase struct {
	tx repo.TransactionManager
	//生ログはトランザクションの外で先に書く（耐久性優先）
	notifications repo.PaymentNotificationRepository
	gateway       PaymentGateway
	logger        *zap.Logger
}

func NewPaymentUsecase(tx repo.TransactionManager, notifications repo.PaymentNotificationRepository, gateway PaymentGateway, logger *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, notifications: notifications, gateway: gateway, logger: logger}
}

// webhookで受け取る通知。RawPayloadは受信ボディそのまま
type NotificationInput struct {
	OrderNumber       string
	TransactionStatus string
	FraudStatus       string
	TransactionID     string
	PaymentType       string
	GrossAmount       int64
	RawPayload        []byte
}

// ゲートウェイのtransaction statusを内部ステータスへ写像する。
// 未知のstatusはrecognized=falseで現状維持
func mapTransactionStatus(transactionStatus string, fraudStatus string) (model.OrderStatus, model.PaymentStatus, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return model.OrderStatusCompleted, model.PaymentStatusPaid, true
		}
		return model.OrderStatusChallenge, model.PaymentStatusPending, true
	case "settlement":
		return model.OrderStatusCompleted, model.PaymentStatusPaid, true
	case "pending":
		return model.OrderStatusPending, model.PaymentStatusPending, true
	case "deny":
		return model.OrderStatusCancelled, model.PaymentStatusDenied, true
	case "expire":
		return model.OrderStatusCancelled, model.PaymentStatusExpired, true
	case "cancel":
		return model.OrderStatusCancelled, model.PaymentStatusCancelled, true
	default:
		return "", "", false
	}
}

// 支払い通知を処理する。ゲートウェイへの応答は200前提なので、
// 解釈に失敗しても生ログを書けた時点でエラーにはしない
func (u *PaymentUsecase) HandleNotification(ctx context.Context, in NotificationInput) error {
	if in.OrderNumber == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid notification")
	}

	//1. まず通知をそのまま残す。解釈はその後
	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = "unknown"
	}
	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = "unknown"
	}

	err := u.notifications.Create(ctx, model.PaymentNotification{
		OrderNumber:       in.OrderNumber,
		PaymentType:       paymentType,
		GrossAmount:       in.GrossAmount,
		TransactionStatus: in.TransactionStatus,
		TransactionID:     transactionID,
		RawPayload:        string(in.RawPayload),
	})
	if err == repo.ErrDuplicateNotification {
		//同じ通知の再送。状態は既に収束しているので何もしない
		u.logger.Info("duplicate notification ignored",
			zap.String("order_number", in.OrderNumber),
			zap.String("transaction_status", in.TransactionStatus))
		return nil
	}
	if err != nil {
		//ログ書き込み失敗でも解釈は続ける
		u.logger.Error("notification log write failed",
			zap.String("order_number", in.OrderNumber),
			zap.Error(err))
	}

	//2. ゲートウェイに問い合わせて通知内容を検証する。
	//   検証できないときは生の内容で続行し、要確認として記録する
	status := in.TransactionStatus
	fraud := in.FraudStatus
	txID := in.TransactionID
	verified := false

	gs, gerr := u.gateway.CheckTransaction(ctx, in.OrderNumber)
	if gerr != nil {
		u.logger.Warn("notification verification unavailable, trusting raw payload",
			zap.String("order_number", in.OrderNumber),
			zap.Error(gerr))
	} else {
		status = gs.TransactionStatus
		fraud = gs.FraudStatus
		txID = gs.TransactionID
		verified = true
	}

	//3. 内部ステータスへ写像
	newStatus, newPayment, recognized := mapTransactionStatus(status, fraud)
	if !recognized {
		u.logger.Warn("unrecognized transaction status, order left unchanged",
			zap.String("order_number", in.OrderNumber),
			zap.String("transaction_status", status))
		return nil
	}

	//4. 注文を更新してイベントを残す
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, in.OrderNumber)
		if err == repo.ErrNotFound {
			//対応する注文がなくてもackは返す。異常としてログだけ残す
			u.logger.Warn("notification for unknown order",
				zap.String("order_number", in.OrderNumber))
			return nil
		}
		if err != nil {
			return err
		}

		upd := repo.PaymentStatusUpdate{
			Status:        newStatus,
			PaymentStatus: newPayment,
		}
		if txID != "" {
			upd.GatewayTransactionID = &txID
		}
		if err := r.Orders().UpdatePaymentStatus(ctx, in.OrderNumber, upd); err != nil {
			return err
		}

		ev := model.OrderEvent{
			OrderID:    o.ID,
			EventType:  model.OrderEventPaymentStatus,
			BeforeJSON: statusJSON(o.Status, o.PaymentStatus),
			AfterJSON:  statusJSON(newStatus, newPayment),
			CreatedAt:  time.Now(),
		}
		if err := r.OrderEvents().Create(ctx, ev); err != nil {
			return err
		}

		//検証できなかった更新は手動確認のために別イベントで印を付ける
		if !verified {
			mark := model.OrderEvent{
				OrderID:   o.ID,
				EventType: model.OrderEventUnverifiedUpdate,
				AfterJSON: statusJSON(newStatus, newPayment),
				CreatedAt: time.Now(),
			}
			if err := r.OrderEvents().Create(ctx, mark); err != nil {
				return err
			}
		}

		u.logger.Info("order status updated from notification",
			zap.String("order_number", in.OrderNumber),
			zap.String("status", string(newStatus)),
			zap.String("payment_status", string(newPayment)),
			zap.Bool("verified", verified))
		return nil
	})
	if err != nil {
		//更新に失敗しても通知自体は保存済みなのでackは返す。
		//再送ストームを避けるためゲートウェイへはエラーを返さない
		u.logger.Error("notification processing failed",
			zap.String("order_number", in.OrderNumber),
			zap.Error(err))
	}

	return nil
}

func statusJSON(s model.OrderStatus, p model.PaymentStatus) string {
	return fmt.Sprintf(`{"status":%q,"payment_status":%q}`, s, p)
}
