package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbook/entity"
	"travelbook/gateway"
)

type BookingsRepository interface {
	Get(ctx context.Context, bookingID string) (entity.Booking, error)
	Update(ctx context.Context, bookingID string, updateFn func(booking *entity.Booking) error) error
}

type PaymentsRepository interface {
	Store(ctx context.Context, payment entity.Payment) error
	Get(ctx context.Context, paymentID string) (entity.Payment, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (entity.Payment, error)
	Update(ctx context.Context, paymentID string, updateFn func(payment *entity.Payment) error) error
}

type RefundsRepository interface {
	Store(ctx context.Context, refund entity.Refund) error
}

type CouponsRepository interface {
	GetByCode(ctx context.Context, code string) (entity.Coupon, error)
	Redeem(ctx context.Context, code string) error
}

type TaxConfigsRepository interface {
	GetActive(ctx context.Context) (*entity.TaxConfig, error)
}

type WalletLedger interface {
	Adjust(ctx context.Context, adj entity.WalletAdjustment) (entity.WalletTransaction, error)
}

type WebhookEventsRepository interface {
	StoreOnce(ctx context.Context, provider, eventID, eventType string) (bool, error)
}

type RazorpayGateway interface {
	CreateOrder(ctx context.Context, request gateway.RazorpayOrderRequest) (gateway.RazorpayOrder, error)
}

type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (gateway.StripePaymentIntent, error)
}

// Orchestrator drives the money side of a booking: checkout, webhook
// reconciliation and refunds. Bookings, payments and refunds are persisted
// synchronously; provider refund calls and post-payment document generation
// run asynchronously off the buses.
type Orchestrator struct {
	bookings      BookingsRepository
	payments      PaymentsRepository
	refunds       RefundsRepository
	coupons       CouponsRepository
	taxConfigs    TaxConfigsRepository
	wallet        WalletLedger
	webhookEvents WebhookEventsRepository
	razorpay      RazorpayGateway
	stripe        StripeGateway
	eventBus      *cqrs.EventBus
	commandBus    *cqrs.CommandBus
}

func NewOrchestrator(
	bookings BookingsRepository,
	payments PaymentsRepository,
	refunds RefundsRepository,
	coupons CouponsRepository,
	taxConfigs TaxConfigsRepository,
	wallet WalletLedger,
	webhookEvents WebhookEventsRepository,
	razorpay RazorpayGateway,
	stripe StripeGateway,
	eventBus *cqrs.EventBus,
	commandBus *cqrs.CommandBus,
) *Orchestrator {
	if bookings == nil {
		panic("missing bookings repository")
	}
	if payments == nil {
		panic("missing payments repository")
	}
	if refunds == nil {
		panic("missing refunds repository")
	}
	if coupons == nil {
		panic("missing coupons repository")
	}
	if taxConfigs == nil {
		panic("missing tax configs repository")
	}
	if wallet == nil {
		panic("missing wallet ledger")
	}
	if webhookEvents == nil {
		panic("missing webhook events repository")
	}
	if razorpay == nil {
		panic("missing razorpay gateway")
	}
	if stripe == nil {
		panic("missing stripe gateway")
	}
	if eventBus == nil {
		panic("missing event bus")
	}
	if commandBus == nil {
		panic("missing command bus")
	}

	return &Orchestrator{
		bookings:      bookings,
		payments:      payments,
		refunds:       refunds,
		coupons:       coupons,
		taxConfigs:    taxConfigs,
		wallet:        wallet,
		webhookEvents: webhookEvents,
		razorpay:      razorpay,
		stripe:        stripe,
		eventBus:      eventBus,
		commandBus:    commandBus,
	}
}

type CheckoutRequest struct {
	BookingID    string
	UserID       string
	Method       entity.PaymentMethod
	CouponCode   string
	WalletAmount float64
}

// CheckoutResult carries what the client needs to continue the payment:
// the recomputed booking, the payment attempt and provider handles (razorpay
// order id / stripe client secret).
type CheckoutResult struct {
	Booking entity.Booking
	Payment entity.Payment
	Gateway map[string]string
}

// CreatePaymentOrder reprices the booking with the active tax config, an
// optional coupon and an optional wallet offset, persists the updated fare,
// records a payment attempt and opens the order on the selected provider.
func (o *Orchestrator) CreatePaymentOrder(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	b, err := o.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if req.UserID != "" && b.UserID != req.UserID {
		return CheckoutResult{}, entity.ErrNotFound
	}
	if b.Status != entity.BookingStatusPending {
		return CheckoutResult{}, fmt.Errorf("booking %s is %s: %w", b.BookingID, b.Status, entity.ErrConflict)
	}

	taxConfig, err := o.taxConfigs.GetActive(ctx)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("could not load tax config: %w", err)
	}

	var couponDiscount float64
	couponCode := entity.NormalizeCouponCode(req.CouponCode)
	if couponCode != "" {
		coupon, err := o.coupons.GetByCode(ctx, couponCode)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return CheckoutResult{}, entity.InvalidCouponError{Reason: entity.ReasonCouponNotFound}
			}
			return CheckoutResult{}, fmt.Errorf("could not load coupon: %w", err)
		}

		validation := coupon.Validate(b.Total, time.Now().UTC())
		if !validation.Valid {
			return CheckoutResult{}, entity.InvalidCouponError{Reason: validation.Reason}
		}
		couponDiscount = validation.DiscountAmount
	}

	if req.WalletAmount < 0 {
		return CheckoutResult{}, entity.ErrInvalidAmount
	}
	if req.WalletAmount > 0 && req.Method == entity.MethodWallet {
		// a wallet payment already settles the whole fare from the balance;
		// accepting an extra offset would charge less than the booking total
		return CheckoutResult{}, fmt.Errorf("wallet offset cannot be combined with the wallet method: %w", entity.ErrInvalidAmount)
	}

	fare := entity.CalculateFareBreakdown(b.BaseFare, couponDiscount, req.WalletAmount, b.Currency, taxConfig)

	err = o.bookings.Update(ctx, b.BookingID, func(booking *entity.Booking) error {
		booking.FareBreakdown = fare
		booking.CouponCode = sql.NullString{String: couponCode, Valid: couponCode != ""}
		booking.CouponDiscount = sql.NullFloat64{Float64: couponDiscount, Valid: couponCode != ""}
		booking.WalletUsed = req.WalletAmount > 0
		booking.AppendTimeline("checkout_initiated", fmt.Sprintf("Checkout via %s", req.Method), b.UserID)
		b = *booking
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	p := entity.Payment{
		PaymentID: uuid.NewString(),
		BookingID: b.BookingID,
		UserID:    b.UserID,
		Method:    req.Method,
		Provider:  string(req.Method),
		Amount:    fare.PayableAmount,
		Currency:  fare.Currency,
		Status:    entity.PaymentStatePending,
		Attempts:  1,
		Breakdown: fare,
		Metadata:  entity.Metadata{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	gatewayPayload := map[string]string{}
	settleNow := false

	switch req.Method {
	case entity.MethodRazorpay:
		order, err := o.razorpay.CreateOrder(ctx, gateway.RazorpayOrderRequest{
			AmountMinor: fare.MinorUnits(),
			Currency:    fare.Currency,
			Receipt:     b.BookingCode,
			Notes: map[string]string{
				"booking_id": b.BookingID,
			},
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		p.ProviderOrderID = sql.NullString{String: order.ID, Valid: true}
		gatewayPayload["order_id"] = order.ID

	case entity.MethodStripe:
		intent, err := o.stripe.CreatePaymentIntent(ctx, fare.MinorUnits(), fare.Currency, map[string]string{
			"booking_id": b.BookingID,
			"payment_id": p.PaymentID,
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		p.ProviderOrderID = sql.NullString{String: intent.ID, Valid: true}
		gatewayPayload["payment_intent_id"] = intent.ID
		gatewayPayload["client_secret"] = intent.ClientSecret

	case entity.MethodWallet:
		_, err := o.wallet.Adjust(ctx, entity.WalletAdjustment{
			UserID:    b.UserID,
			Amount:    fare.PayableAmount,
			Type:      entity.WalletDebit,
			Reason:    "Booking payment",
			BookingID: b.BookingID,
			Reference: p.PaymentID,
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		// the balance already moved; the payment is stored pending and
		// finalized below so the confirmation cascade runs exactly once
		settleNow = true

	case entity.MethodCOD:
		// collected offline; the payment stays pending until settled manually

	default:
		return CheckoutResult{}, fmt.Errorf("unsupported payment method %q: %w", req.Method, entity.ErrInvalidAmount)
	}

	if err := o.payments.Store(ctx, p); err != nil {
		return CheckoutResult{}, fmt.Errorf("could not store payment: %w", err)
	}

	// partial wallet offset applied to a gateway payment is debited up front
	if req.WalletAmount > 0 && req.Method != entity.MethodWallet {
		_, err := o.wallet.Adjust(ctx, entity.WalletAdjustment{
			UserID:    b.UserID,
			Amount:    fare.WalletAmount,
			Type:      entity.WalletDebit,
			Reason:    "Booking wallet offset",
			BookingID: b.BookingID,
			Reference: p.PaymentID,
		})
		if err != nil {
			return CheckoutResult{}, err
		}
	}

	if settleNow {
		if err := o.MarkPaymentSuccess(ctx, p.PaymentID, "", nil); err != nil {
			return CheckoutResult{}, err
		}
		p, err = o.payments.Get(ctx, p.PaymentID)
		if err != nil {
			return CheckoutResult{}, err
		}
	}

	b, err = o.bookings.Get(ctx, b.BookingID)
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{Booking: b, Payment: p, Gateway: gatewayPayload}, nil
}

// MarkPaymentSuccess finalizes a captured payment: payment goes to paid, the
// booking to confirmed, the coupon redemption counter is consumed and
// BookingConfirmed is published. Calling it again for an already paid payment
// is a no-op, which makes webhook replays safe.
func (o *Orchestrator) MarkPaymentSuccess(ctx context.Context, paymentID, providerPaymentID string, metadata entity.Metadata) error {
	p, err := o.payments.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status == entity.PaymentStatePaid {
		return nil
	}

	err = o.payments.Update(ctx, paymentID, func(payment *entity.Payment) error {
		payment.Status = entity.PaymentStatePaid
		if providerPaymentID != "" {
			payment.ProviderPaymentID = sql.NullString{String: providerPaymentID, Valid: true}
		}
		payment.Metadata = payment.Metadata.Merge(metadata)
		return nil
	})
	if err != nil {
		return err
	}

	var b entity.Booking
	err = o.bookings.Update(ctx, p.BookingID, func(booking *entity.Booking) error {
		booking.PaymentStatus = entity.PaymentStatePaid
		if booking.Status == entity.BookingStatusPending {
			if err := booking.Transition(entity.BookingStatusConfirmed, "Payment captured", "system"); err != nil {
				return err
			}
		}
		b = *booking
		return nil
	})
	if err != nil {
		return err
	}

	if b.CouponCode.Valid {
		if err := o.coupons.Redeem(ctx, b.CouponCode.String); err != nil {
			// the money already moved; an exhausted coupon at this point is
			// an operational anomaly, not a reason to fail the payment
			var couponErr entity.InvalidCouponError
			if !errors.As(err, &couponErr) {
				return fmt.Errorf("could not redeem coupon: %w", err)
			}
			logrus.WithField("booking_id", b.BookingID).
				WithField("coupon_code", b.CouponCode.String).
				Warn("Coupon redemption rejected after capture")
		}
	}

	return o.eventBus.Publish(ctx, entity.BookingConfirmed{
		Header:      entity.NewEventHeaderWithIdempotencyKey(p.PaymentID),
		BookingID:   b.BookingID,
		BookingCode: b.BookingCode,
		UserID:      b.UserID,
		PaymentID:   p.PaymentID,
		Amount:      p.Amount,
		Currency:    p.Currency,
	})
}

// MarkPaymentFailed records a failed capture attempt and hands any wallet
// offset held at checkout back to the balance. The booking status is left
// untouched, so the user can retry checkout.
func (o *Orchestrator) MarkPaymentFailed(ctx context.Context, paymentID, reason string) error {
	p, err := o.payments.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status == entity.PaymentStatePaid {
		// a late failure event for an already captured payment carries no news
		return nil
	}
	if p.Status == entity.PaymentStateFailed {
		// already recorded and the offset already released
		return nil
	}

	err = o.payments.Update(ctx, paymentID, func(payment *entity.Payment) error {
		payment.Status = entity.PaymentStateFailed
		payment.Metadata = payment.Metadata.Merge(entity.Metadata{"failure_reason": reason})
		return nil
	})
	if err != nil {
		return err
	}

	err = o.bookings.Update(ctx, p.BookingID, func(booking *entity.Booking) error {
		booking.PaymentStatus = entity.PaymentStateFailed
		booking.AppendTimeline("payment_failed", reason, "system")
		return nil
	})
	if err != nil {
		return err
	}

	// the offset was debited up front at checkout; a retried checkout holds
	// it again, so the failed attempt must give it back
	if p.Method != entity.MethodWallet && p.Breakdown.WalletAmount > 0 {
		_, err := o.wallet.Adjust(ctx, entity.WalletAdjustment{
			UserID:    p.UserID,
			Amount:    p.Breakdown.WalletAmount,
			Type:      entity.WalletCredit,
			Reason:    "Failed payment wallet offset release",
			BookingID: p.BookingID,
			Reference: p.PaymentID,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// ProviderEvent is a webhook event already verified and parsed by the HTTP
// layer, normalized across providers.
type ProviderEvent struct {
	Provider    string
	EventID     string
	Type        string
	OrderID     string
	PaymentID   string
	AmountMinor int64
}

// Reconcile applies a provider webhook event exactly once. Duplicate event ids
// are swallowed; unknown event types are acknowledged and ignored.
func (o *Orchestrator) Reconcile(ctx context.Context, event ProviderEvent) error {
	fresh, err := o.webhookEvents.StoreOnce(ctx, event.Provider, event.EventID, event.Type)
	if err != nil {
		return fmt.Errorf("could not record webhook event: %w", err)
	}
	if !fresh {
		logrus.WithField("provider", event.Provider).
			WithField("event_id", event.EventID).
			Info("Duplicate webhook event ignored")
		return nil
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment.captured":
		p, err := o.payments.GetByProviderOrderID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("no payment for provider order %s: %w", event.OrderID, err)
		}
		return o.MarkPaymentSuccess(ctx, p.PaymentID, event.PaymentID, entity.Metadata{
			"webhook_event_id": event.EventID,
		})

	case "payment_intent.payment_failed", "payment.failed":
		p, err := o.payments.GetByProviderOrderID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("no payment for provider order %s: %w", event.OrderID, err)
		}
		return o.MarkPaymentFailed(ctx, p.PaymentID, event.Type)

	case "charge.refunded", "refund.processed":
		p, err := o.payments.GetByProviderOrderID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("no payment for provider order %s: %w", event.OrderID, err)
		}
		amount := float64(event.AmountMinor) / 100
		if amount <= 0 {
			amount = p.Amount
		}
		return o.applyProviderRefund(ctx, p.PaymentID, amount)

	default:
		logrus.WithField("provider", event.Provider).
			WithField("type", event.Type).
			Debug("Unhandled webhook event type")
		return nil
	}
}

// applyProviderRefund reflects a refund confirmed by the provider onto the
// payment and its booking.
func (o *Orchestrator) applyProviderRefund(ctx context.Context, paymentID string, amount float64) error {
	var p entity.Payment
	err := o.payments.Update(ctx, paymentID, func(payment *entity.Payment) error {
		payment.RefundedAmount = amount
		if amount >= payment.Amount {
			payment.Status = entity.PaymentStateRefunded
		} else {
			payment.Status = entity.PaymentStatePartiallyRefunded
		}
		p = *payment
		return nil
	})
	if err != nil {
		return err
	}

	full := p.Status == entity.PaymentStateRefunded

	return o.bookings.Update(ctx, p.BookingID, func(booking *entity.Booking) error {
		booking.PaymentStatus = p.Status
		if full && entity.CanTransition(booking.Status, entity.BookingStatusRefunded) {
			return booking.Transition(entity.BookingStatusRefunded, "Refund settled by provider", "system")
		}
		booking.AppendTimeline("refund_settled", "Refund settled by provider", "system")
		return nil
	})
}

type RefundRequest struct {
	BookingID string
	PaymentID string
	Amount    float64
	Reason    string
	ActorID   string
}

// CreateRefund persists an approved refund record and schedules the provider
// refund. A zero amount means refunding whatever is still unrefunded; repeated
// partials are capped at that remainder. Only the refund that exhausts the
// payment moves the booking itself to refunded; earlier partials just flip the
// payment status.
func (o *Orchestrator) CreateRefund(ctx context.Context, req RefundRequest) (entity.Refund, error) {
	b, err := o.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return entity.Refund{}, err
	}

	p, err := o.payments.Get(ctx, req.PaymentID)
	if err != nil {
		return entity.Refund{}, err
	}
	if p.BookingID != b.BookingID {
		return entity.Refund{}, fmt.Errorf("payment %s does not belong to booking %s: %w", p.PaymentID, b.BookingID, entity.ErrConflict)
	}
	if p.Status != entity.PaymentStatePaid && p.Status != entity.PaymentStatePartiallyRefunded {
		return entity.Refund{}, fmt.Errorf("payment %s is %s: %w", p.PaymentID, p.Status, entity.ErrConflict)
	}

	remaining := p.Amount - p.RefundedAmount
	amount := req.Amount
	if amount <= 0 {
		amount = remaining
	}
	if amount > remaining {
		return entity.Refund{}, entity.ErrInvalidAmount
	}
	full := amount >= remaining

	now := time.Now().UTC()
	refund := entity.Refund{
		RefundID:        uuid.NewString(),
		BookingID:       b.BookingID,
		PaymentID:       p.PaymentID,
		UserID:          b.UserID,
		AmountRequested: amount,
		AmountApproved:  amount,
		Reason:          req.Reason,
		Status:          entity.RefundApproved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	refund.AppendTimeline(string(entity.RefundRequested), req.Reason, req.ActorID)
	refund.AppendTimeline(string(entity.RefundApproved), "Auto-approved", req.ActorID)
	if !full {
		refund.Status = entity.RefundPartial
	}

	if err := o.refunds.Store(ctx, refund); err != nil {
		return entity.Refund{}, fmt.Errorf("could not store refund: %w", err)
	}

	err = o.payments.Update(ctx, p.PaymentID, func(payment *entity.Payment) error {
		payment.RefundedAmount += amount
		if payment.RefundedAmount >= payment.Amount {
			payment.Status = entity.PaymentStateRefunded
		} else {
			payment.Status = entity.PaymentStatePartiallyRefunded
		}
		p = *payment
		return nil
	})
	if err != nil {
		return entity.Refund{}, err
	}

	err = o.bookings.Update(ctx, b.BookingID, func(booking *entity.Booking) error {
		booking.PaymentStatus = p.Status
		note := fmt.Sprintf("Refund %.2f %s approved", amount, p.Currency)
		if full && entity.CanTransition(booking.Status, entity.BookingStatusRefunded) {
			return booking.Transition(entity.BookingStatusRefunded, note, req.ActorID)
		}
		booking.AppendTimeline("refund_approved", note, req.ActorID)
		return nil
	})
	if err != nil {
		return entity.Refund{}, err
	}

	// money already held in the wallet always comes back first
	if full && b.WalletUsed && b.WalletAmount > 0 {
		_, err := o.wallet.Adjust(ctx, entity.WalletAdjustment{
			UserID:    b.UserID,
			Amount:    b.WalletAmount,
			Type:      entity.WalletCredit,
			Reason:    "Booking refund wallet offset",
			BookingID: b.BookingID,
			ActorID:   req.ActorID,
			Reference: refund.RefundID,
		})
		if err != nil {
			return entity.Refund{}, err
		}
	}

	switch p.Method {
	case entity.MethodRazorpay, entity.MethodStripe:
		if !p.ProviderPaymentID.Valid && !p.ProviderOrderID.Valid {
			return entity.Refund{}, fmt.Errorf("payment %s has no provider reference: %w", p.PaymentID, entity.ErrConflict)
		}
		providerPaymentID := p.ProviderPaymentID.String
		if providerPaymentID == "" {
			providerPaymentID = p.ProviderOrderID.String
		}
		err = o.commandBus.Send(ctx, entity.RefundProviderPayment{
			Header:            entity.NewEventHeaderWithIdempotencyKey(refund.RefundID),
			RefundID:          refund.RefundID,
			BookingID:         b.BookingID,
			BookingCode:       b.BookingCode,
			UserID:            b.UserID,
			PaymentID:         p.PaymentID,
			Provider:          p.Provider,
			ProviderPaymentID: providerPaymentID,
			AmountMinor:       int64(math.Round(amount * 100)),
			Currency:          p.Currency,
			Reason:            req.Reason,
			Full:              full,
		})
		if err != nil {
			return entity.Refund{}, fmt.Errorf("could not schedule provider refund: %w", err)
		}

	default:
		// wallet and cod refunds settle internally: credit the wallet back
		_, err := o.wallet.Adjust(ctx, entity.WalletAdjustment{
			UserID:    b.UserID,
			Amount:    amount,
			Type:      entity.WalletCredit,
			Reason:    "Booking refund",
			BookingID: b.BookingID,
			ActorID:   req.ActorID,
			Reference: refund.RefundID,
		})
		if err != nil {
			return entity.Refund{}, err
		}

		err = o.eventBus.Publish(ctx, entity.BookingRefunded{
			Header:      entity.NewEventHeaderWithIdempotencyKey(refund.RefundID),
			BookingID:   b.BookingID,
			BookingCode: b.BookingCode,
			UserID:      b.UserID,
			PaymentID:   p.PaymentID,
			RefundID:    refund.RefundID,
			Amount:      amount,
			Currency:    p.Currency,
			Full:        full,
		})
		if err != nil {
			return entity.Refund{}, err
		}
	}

	return refund, nil
}
