package validator

import (
	"errors"
	"regexp"
	"strings"

	"toko/internal/domain/model"
	"toko/internal/usecase"
)

// 国内携帯番号: 08始まり + 数字8〜13桁
var phoneRe = regexp.MustCompile(`^08[0-9]{8,13}$`)

type orderValidator struct{}

// Usecaseは interface を依存注入
func NewOrderValidator() usecase.OrderValidator {
	return &orderValidator{}
}

// 注文リクエストの入力を検証
func (v *orderValidator) ValidatePlaceOrder(in usecase.PlaceOrderInput) error {
	// 必須チェック
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return errors.New("address is required")
	}

	// 電話番号の形式
	if !phoneRe.MatchString(strings.TrimSpace(in.Phone)) {
		return errors.New("invalid phone format, use 08xxxxxxxxxx")
	}

	// 支払い方法
	switch model.PaymentMethod(in.Payment) {
	case model.PaymentMethodCOD, model.PaymentMethodMidtrans:
		// OK
	default:
		return errors.New("invalid payment method")
	}

	// 明細
	if len(in.Items) == 0 {
		return errors.New("items are required")
	}
	var sum int64
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return errors.New("invalid product_id")
		}
		if it.Price <= 0 {
			return errors.New("invalid item price")
		}
		if it.Quantity <= 0 {
			return errors.New("invalid item quantity")
		}
		sum += it.Price * it.Quantity
	}

	// 合計は明細の合計と一致すること
	if in.Total <= 0 {
		return errors.New("invalid total")
	}
	if in.Total != sum {
		return errors.New("total does not match items")
	}

	return nil
}
