package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"toko/internal/config"
	"toko/internal/middleware"
	"toko/internal/repository"
	"toko/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	return id, ok
}

type OrderHandler struct {
	orderUC   *usecase.OrderUsecase
	paymentUC *usecase.PaymentUsecase
	adminUC   *usecase.AdminOrderUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, paymentUC *usecase.PaymentUsecase, adminUC *usecase.AdminOrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, paymentUC: paymentUC, adminUC: adminUC}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//注文・通知・照会は公開（ゲスト注文あり、webhookはゲートウェイから）
	e.POST("/orders", h.create)
	e.POST("/orders/payment-notification", h.paymentNotification)
	e.GET("/orders/payment-config", h.paymentConfig(cfg))
	e.GET("/orders/:id", h.detail)
	e.GET("/orders/:id/status", h.status)

	//管理者のみ
	admin := e.Group("", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/admin/orders", h.adminList)
	admin.GET("/admin/orders/:id", h.adminDetail)
}

// フロントがSnap.jsを初期化するための公開設定
func (h *OrderHandler) paymentConfig(cfg config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"client_key": cfg.MidtransClientKey,
			"production": cfg.MidtransProduction,
		})
	}
}

func (h *OrderHandler) create(c echo.Context) error {
	var req usecase.PlaceOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//認証済みならuser_idを紐付ける（任意）
	var userID *int64
	if id, ok := getUserIDFromContext(c); ok && id > 0 {
		userID = &id
	}

	out, err := h.orderUC.PlaceOrder(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// webhookで受け取るMidtrans通知
type notificationRequest struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
}

func (h *OrderHandler) paymentNotification(c echo.Context) error {
	//生ペイロードを監査ログ用にそのまま渡したいので自前で読む
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification"})
	}

	var req notificationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification"})
	}

	//fraud_statusが無い通知はacceptとして扱う
	fraud := req.FraudStatus
	if fraud == "" {
		fraud = "accept"
	}

	in := usecase.NotificationInput{
		OrderNumber:       req.OrderID,
		TransactionStatus: req.TransactionStatus,
		FraudStatus:       fraud,
		TransactionID:     req.TransactionID,
		PaymentType:       req.PaymentType,
		GrossAmount:       parseAmount(req.GrossAmount),
		RawPayload:        raw,
	}
	if err := h.paymentUC.HandleNotification(c.Request().Context(), in); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "notification processed",
	})
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.orderUC.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) status(c echo.Context) error {
	out, err := h.orderUC.CheckStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.adminUC.UpdateStatus(c.Request().Context(), userID, id, usecase.AdminUpdateOrderStatusInput{Status: req.Status}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "status updated",
	})
}

func (h *OrderHandler) adminDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.adminUC.Detail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) adminList(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	f := repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
		}
		f.UserID = &x
	}

	out, err := h.adminUC.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// "20000.00" のような金額文字列をint64へ
func parseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
