package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"travelbook/booking"
	"travelbook/entity"
	"travelbook/payment"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateBookingRequest) (entity.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (entity.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, to entity.BookingStatus, note, actor string) (entity.Booking, error)
	AssignGuide(ctx context.Context, bookingID, guideID, actor string) (entity.Booking, error)
}

type PaymentsRepository interface {
	HistoryByUser(ctx context.Context, userID string, limit int) ([]entity.Payment, error)
}

type WalletLedger interface {
	Adjust(ctx context.Context, adj entity.WalletAdjustment) (entity.WalletTransaction, error)
	Balance(ctx context.Context, userID string) (float64, string, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]entity.WalletTransaction, error)
}

// WebhookSecrets holds the per-provider signing secrets used to authenticate
// incoming webhooks.
type WebhookSecrets struct {
	Stripe   string
	Razorpay string
}

type Server struct {
	addr           string
	e              *echo.Echo
	orchestrator   *payment.Orchestrator
	bookings       BookingService
	paymentsRepo   PaymentsRepository
	wallet         WalletLedger
	webhookSecrets WebhookSecrets
	adminToken     string
}

func NewServer(
	addr string,
	orchestrator *payment.Orchestrator,
	bookingService BookingService,
	paymentsRepo PaymentsRepository,
	wallet WalletLedger,
	webhookSecrets WebhookSecrets,
	adminToken string,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("travelbook"))
	e.Validator = &requestValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler(e)

	server := &Server{
		addr:           addr,
		e:              e,
		orchestrator:   orchestrator,
		bookings:       bookingService,
		paymentsRepo:   paymentsRepo,
		wallet:         wallet,
		webhookSecrets: webhookSecrets,
		adminToken:     adminToken,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/bookings", server.PostBooking)
	e.GET("/bookings", server.GetBookings)
	e.GET("/bookings/:id", server.GetBooking)
	e.PATCH("/bookings/:id/status", server.PatchBookingStatus)
	e.POST("/bookings/:id/guide", server.PostAssignGuide)

	e.POST("/payments/checkout", server.PostCheckout)
	e.POST("/payments/refunds", server.PostRefund)
	e.GET("/payments/history", server.GetPaymentHistory)
	e.POST("/payments/webhooks/stripe", server.PostStripeWebhook)
	e.POST("/payments/webhooks/razorpay", server.PostRazorpayWebhook)

	e.GET("/wallet", server.GetWallet)
	e.POST("/wallet/adjust", server.PostWalletAdjust)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.e.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	logrus.WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type requestValidator struct {
	validator *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// userID extracts the caller identity. Session handling lives at the edge
// proxy; this service trusts the forwarded header.
func userID(c echo.Context) (string, error) {
	id := c.Request().Header.Get("X-User-ID")
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-ID header")
	}
	return id, nil
}

func (s *Server) requireAdmin(c echo.Context) error {
	if s.adminToken == "" || c.Request().Header.Get("X-Admin-Token") != s.adminToken {
		return echo.NewHTTPError(http.StatusForbidden, "admin token required")
	}
	return nil
}

func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		status := http.StatusInternalServerError
		message := "internal error"

		var couponErr entity.InvalidCouponError
		var transitionErr entity.InvalidTransitionError

		switch {
		case errors.Is(err, entity.ErrNotFound):
			status, message = http.StatusNotFound, "not found"
		case errors.As(err, &couponErr):
			status, message = http.StatusBadRequest, couponErr.Reason
		case errors.Is(err, entity.ErrInvalidAmount):
			status, message = http.StatusBadRequest, "invalid amount"
		case errors.Is(err, entity.ErrInsufficientBalance):
			status, message = http.StatusBadRequest, "insufficient wallet balance"
		case errors.As(err, &transitionErr):
			status, message = http.StatusConflict, transitionErr.Error()
		case errors.Is(err, entity.ErrConflict):
			status, message = http.StatusConflict, "conflict"
		case errors.Is(err, entity.ErrGatewayTimeout):
			status, message = http.StatusGatewayTimeout, "payment gateway timeout"
		case errors.Is(err, entity.ErrGatewayRejected):
			status, message = http.StatusBadGateway, "payment gateway rejected the request"
		default:
			logrus.WithError(err).Error("Unhandled HTTP error")
		}

		e.DefaultHTTPErrorHandler(echo.NewHTTPError(status, message), c)
	}
}
