package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"travelbook/entity"
	"travelbook/metrics"
	"travelbook/payment"
)

type postCheckoutRequest struct {
	BookingID    string  `json:"booking_id" validate:"required"`
	Method       string  `json:"method" validate:"required,oneof=razorpay stripe wallet cod"`
	CouponCode   string  `json:"coupon_code"`
	WalletAmount float64 `json:"wallet_amount" validate:"gte=0"`
}

type postCheckoutResponse struct {
	Payment paymentResponse   `json:"payment"`
	Booking bookingResponse   `json:"booking"`
	Gateway map[string]string `json:"gateway,omitempty"`
}

func (s *Server) PostCheckout(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var request postCheckoutRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	result, err := s.orchestrator.CreatePaymentOrder(c.Request().Context(), payment.CheckoutRequest{
		BookingID:    request.BookingID,
		UserID:       uid,
		Method:       entity.PaymentMethod(request.Method),
		CouponCode:   request.CouponCode,
		WalletAmount: request.WalletAmount,
	})
	if err != nil {
		metrics.PaymentsCreated.With(prometheus.Labels{"method": request.Method, "status": "failed"}).Inc()
		return err
	}
	metrics.PaymentsCreated.With(prometheus.Labels{"method": request.Method, "status": string(result.Payment.Status)}).Inc()

	return c.JSON(http.StatusCreated, postCheckoutResponse{
		Payment: toPaymentResponse(result.Payment),
		Booking: toBookingResponse(result.Booking),
		Gateway: result.Gateway,
	})
}

type postRefundRequest struct {
	BookingID string  `json:"booking_id" validate:"required"`
	PaymentID string  `json:"payment_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Reason    string  `json:"reason" validate:"required"`
}

func (s *Server) PostRefund(c echo.Context) error {
	if err := s.requireAdmin(c); err != nil {
		return err
	}
	actor := c.Request().Header.Get("X-User-ID")

	var request postRefundRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	refund, err := s.orchestrator.CreateRefund(c.Request().Context(), payment.RefundRequest{
		BookingID: request.BookingID,
		PaymentID: request.PaymentID,
		Amount:    request.Amount,
		Reason:    request.Reason,
		ActorID:   actor,
	})
	if err != nil {
		return err
	}

	kind := "full"
	if refund.Status == entity.RefundPartial {
		kind = "partial"
	}
	metrics.RefundsCreated.With(prometheus.Labels{"kind": kind}).Inc()

	return c.JSON(http.StatusCreated, toRefundResponse(refund))
}

func (s *Server) GetPaymentHistory(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	payments, err := s.paymentsRepo.HistoryByUser(c.Request().Context(), uid, 50)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(payments, func(p entity.Payment, _ int) paymentResponse {
		return toPaymentResponse(p)
	}))
}
