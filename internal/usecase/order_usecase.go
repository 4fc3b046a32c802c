package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// usecaseがValidatorInterfaceに依存する約束
type OrderValidator interface {
	ValidatePlaceOrder(in PlaceOrderInput) error
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	gateway   PaymentGateway
	validator OrderValidator
	logger    *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, gateway PaymentGateway, validator OrderValidator, logger *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, gateway: gateway, validator: validator, logger: logger}
}

type PlaceOrderItemInput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type PlaceOrderInput struct {
	Name    string                `json:"name"`
	Phone   string                `json:"phone"`
	Address string                `json:"address"`
	Payment string                `json:"payment"`
	Items   []PlaceOrderItemInput `json:"items"`
	Total   int64                 `json:"total"`
}

type PlaceOrderOutput struct {
	OrderNumber   string    `json:"order_id"`
	OrderDBID     int64     `json:"order_db_id"`
	CustomerName  string    `json:"customer_name"`
	Total         int64     `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	SnapToken     string    `json:"snap_token,omitempty"`
	RedirectURL   string    `json:"redirect_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"order_number"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Address       string            `json:"customer_address"`
	PaymentMethod string            `json:"payment_method"`
	Total         int64             `json:"total"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// 注文番号はゲートウェイのtransaction idとしても使うので、
// タイムスタンプ＋短い乱数ではなくUUID v4ベースで衝突耐性を持たせる
func newOrderNumber() string {
	id := uuid.New()
	return "ORD" + strings.ToUpper(hex.EncodeToString(id[:]))
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID *int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	//入力が不正なら副作用ゼロで400
	if err := u.validator.ValidatePlaceOrder(in); err != nil {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	method := model.PaymentMethod(in.Payment)
	orderNumber := newOrderNumber()

	var out PlaceOrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now()

		order := model.Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			CustomerName:    strings.TrimSpace(in.Name),
			CustomerPhone:   strings.TrimSpace(in.Phone),
			CustomerAddress: strings.TrimSpace(in.Address),
			PaymentMethod:   method,
			Total:           in.Total,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		//明細スナップショット
		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.OrderItem{
				ProductID: it.ProductID,
				Name:      strings.TrimSpace(it.Name),
				Price:     it.Price,
				Quantity:  it.Quantity,
				CreatedAt: now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫減算はベストエフォート。足りなくても注文は通す
		for _, it := range in.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				u.logStockSkip(ctx, r, orderNumber, it)
			}
		}

		//オンライン決済ならSnapセッションを作る
		if method.IsOnline() {
			session, gerr := u.gateway.CreateTransaction(ctx, order, items)
			if gerr != nil {
				//ゲートウェイ障害で注文を失わない。CODへフォールバック
				u.logger.Warn("payment session failed, falling back to COD",
					zap.String("order_number", orderNumber),
					zap.Error(gerr))

				if err := r.Orders().UpdatePaymentMethod(ctx, orderID, model.PaymentMethodCOD); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				ev := model.OrderEvent{
					OrderID:    orderID,
					EventType:  model.OrderEventGatewayFallback,
					BeforeJSON: fmt.Sprintf(`{"payment_method":%q}`, method),
					AfterJSON:  fmt.Sprintf(`{"payment_method":%q,"error":%q}`, model.PaymentMethodCOD, truncate(gerr.Error(), 200)),
					CreatedAt:  time.Now(),
				}
				if err := r.OrderEvents().Create(ctx, ev); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				method = model.PaymentMethodCOD
			} else {
				if err := r.Orders().SetPaymentToken(ctx, orderID, session.Token); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out.SnapToken = session.Token
				out.RedirectURL = session.RedirectURL
			}
		}

		out.OrderNumber = orderNumber
		out.OrderDBID = orderID
		out.CustomerName = order.CustomerName
		out.Total = order.Total
		out.PaymentMethod = string(method)
		out.Status = string(model.OrderStatusPending)
		out.PaymentStatus = string(model.PaymentStatusPending)
		out.CreatedAt = now
		return nil
	})

	if err != nil {
		return PlaceOrderOutput{}, err
	}
	return out, nil
}

// 在庫が減らせなかった理由をログに残す（商品なし or 在庫不足）
func (u *OrderUsecase) logStockSkip(ctx context.Context, r repo.TxRepos, orderNumber string, it PlaceOrderItemInput) {
	_, err := r.Products().FindByID(ctx, it.ProductID)
	if err == repo.ErrNotFound {
		u.logger.Warn("stock decrement skipped: unknown product",
			zap.String("order_number", orderNumber),
			zap.Int64("product_id", it.ProductID))
		return
	}
	u.logger.Warn("stock decrement skipped: insufficient stock",
		zap.String("order_number", orderNumber),
		zap.Int64("product_id", it.ProductID),
		zap.Int64("quantity", it.Quantity))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	//マルチバイト文字の途中で切らない
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// 内部IDか注文番号のどちらでも受け付ける
func findOrderByRef(ctx context.Context, r repo.TxRepos, ref string) (model.Order, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return r.Orders().FindByID(ctx, id)
	}
	return r.Orders().FindByOrderNumber(ctx, ref)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, ref string) (OrderOutput, error) {
	if strings.TrimSpace(ref) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrderByRef(ctx, r, ref)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type GatewayStatusOutput struct {
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
}

type OrderStatusOutput struct {
	OrderNumber         string               `json:"order_id"`
	CustomerName        string               `json:"customer_name"`
	Total               int64                `json:"total_amount"`
	PaymentMethod       string               `json:"payment_method"`
	Status              string               `json:"status"`
	PaymentStatus       string               `json:"payment_status"`
	CreatedAt           time.Time            `json:"created_at"`
	LiveStatusAvailable bool                 `json:"live_status_available"`
	Gateway             *GatewayStatusOutput `json:"gateway,omitempty"`
}

// 永続化済みのステータスを返す。オンライン決済ならゲートウェイにも
// 問い合わせて現在の状態を添える（失敗しても保存済みの状態は返す）
func (u *OrderUsecase) CheckStatus(ctx context.Context, ref string) (OrderStatusOutput, error) {
	if strings.TrimSpace(ref) == "" {
		return OrderStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var o model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := findOrderByRef(ctx, r, ref)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o = found
		return nil
	})
	if err != nil {
		return OrderStatusOutput{}, err
	}

	out := OrderStatusOutput{
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
	}

	if o.PaymentMethod.IsOnline() {
		gs, gerr := u.gateway.CheckTransaction(ctx, o.OrderNumber)
		if gerr != nil {
			u.logger.Warn("live status unavailable",
				zap.String("order_number", o.OrderNumber),
				zap.Error(gerr))
		} else {
			out.LiveStatusAvailable = true
			out.Gateway = &GatewayStatusOutput{
				TransactionStatus: gs.TransactionStatus,
				FraudStatus:       gs.FraudStatus,
				TransactionID:     gs.TransactionID,
				PaymentType:       gs.PaymentType,
			}
		}
	}

	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.CustomerAddress,
		PaymentMethod: string(o.PaymentMethod),
		Total:         o.Total,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
