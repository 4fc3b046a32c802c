package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"toko/internal/config"
	"toko/internal/domain/model"
	"toko/internal/usecase"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"
)

// Midtrans（Snap + Core API）を使ったPaymentGateway実装
type MidtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
	baseURL    string
	logger     *zap.Logger
}

func NewMidtransGateway(cfg config.Config, logger *zap.Logger) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.MidtransProduction {
		env = midtrans.Production
	}

	g := &MidtransGateway{
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
	g.snapClient.New(cfg.MidtransServerKey, env)
	g.coreClient.New(cfg.MidtransServerKey, env)
	return g
}

func (g *MidtransGateway) CreateTransaction(ctx context.Context, order model.Order, items []model.OrderItem) (usecase.PaymentSession, error) {
	itemDetails := make([]midtrans.ItemDetails, 0, len(items))
	for _, it := range items {
		itemDetails = append(itemDetails, midtrans.ItemDetails{
			ID:    strconv.FormatInt(it.ProductID, 10),
			Name:  truncateItemName(it.Name),
			Price: it.Price,
			Qty:   int32(it.Quantity),
		})
	}

	first, last := splitName(order.CustomerName)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderNumber,
			GrossAmt: order.Total,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			//メールは必須なので電話番号から仮のものを組み立てる
			Email: fmt.Sprintf("%s@customer.invalid", order.CustomerPhone),
			Phone: order.CustomerPhone,
		},
		Items: &itemDetails,
		EnabledPayments: []snap.SnapPaymentType{
			snap.PaymentTypeCreditCard,
			snap.PaymentTypeGopay,
			snap.PaymentTypeShopeepay,
			snap.PaymentTypeBankTransfer,
			snap.SnapPaymentType(coreapi.PaymentTypeQris),
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/order-success?order_id=%s", g.baseURL, order.OrderNumber),
		},
	}

	resp, snapErr := g.snapClient.CreateTransaction(req)
	if snapErr != nil {
		return usecase.PaymentSession{}, snapErr
	}

	return usecase.PaymentSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (g *MidtransGateway) CheckTransaction(ctx context.Context, orderNumber string) (usecase.GatewayStatus, error) {
	resp, apiErr := g.coreClient.CheckTransaction(orderNumber)
	if apiErr != nil {
		return usecase.GatewayStatus{}, apiErr
	}

	return usecase.GatewayStatus{
		OrderNumber:       resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		TransactionID:     resp.TransactionID,
		PaymentType:       resp.PaymentType,
		GrossAmount:       parseGrossAmount(resp.GrossAmount),
	}, nil
}

// "20000.00" のような金額文字列を最小通貨単位のint64へ
func parseGrossAmount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// Midtransのitem nameは50文字まで。マルチバイト文字の途中で切らない
func truncateItemName(name string) string {
	if utf8.RuneCountInString(name) <= 50 {
		return name
	}
	return string([]rune(name)[:50])
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) <= 1 {
		return name, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
