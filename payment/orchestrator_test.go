package payment_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/entity"
	"travelbook/gateway"
	"travelbook/payment"
	"travelbook/pubsub/bus"
)

type bookingsMock struct {
	lock     sync.Mutex
	bookings map[string]entity.Booking
}

func (m *bookingsMock) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return entity.Booking{}, entity.ErrNotFound
	}
	return b, nil
}

func (m *bookingsMock) Update(ctx context.Context, bookingID string, updateFn func(*entity.Booking) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return entity.ErrNotFound
	}
	if err := updateFn(&b); err != nil {
		return err
	}
	m.bookings[bookingID] = b
	return nil
}

type paymentsMock struct {
	lock     sync.Mutex
	payments map[string]entity.Payment
}

func (m *paymentsMock) Store(ctx context.Context, p entity.Payment) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.payments[p.PaymentID] = p
	return nil
}

func (m *paymentsMock) Get(ctx context.Context, paymentID string) (entity.Payment, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return entity.Payment{}, entity.ErrNotFound
	}
	return p, nil
}

func (m *paymentsMock) GetByProviderOrderID(ctx context.Context, providerOrderID string) (entity.Payment, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, p := range m.payments {
		if p.ProviderOrderID.String == providerOrderID {
			return p, nil
		}
	}
	return entity.Payment{}, entity.ErrNotFound
}

func (m *paymentsMock) Update(ctx context.Context, paymentID string, updateFn func(*entity.Payment) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return entity.ErrNotFound
	}
	if err := updateFn(&p); err != nil {
		return err
	}
	m.payments[paymentID] = p
	return nil
}

type refundsMock struct {
	lock    sync.Mutex
	refunds map[string]entity.Refund
}

func (m *refundsMock) Store(ctx context.Context, r entity.Refund) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.refunds[r.RefundID] = r
	return nil
}

type couponsMock struct {
	lock    sync.Mutex
	coupons map[string]entity.Coupon
}

func (m *couponsMock) GetByCode(ctx context.Context, code string) (entity.Coupon, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	c, ok := m.coupons[entity.NormalizeCouponCode(code)]
	if !ok {
		return entity.Coupon{}, entity.ErrNotFound
	}
	return c, nil
}

func (m *couponsMock) Redeem(ctx context.Context, code string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	c, ok := m.coupons[entity.NormalizeCouponCode(code)]
	if !ok {
		return entity.ErrNotFound
	}
	if c.UsageLimit.Valid && c.Redemptions >= c.UsageLimit.Int64 {
		return entity.InvalidCouponError{Reason: entity.ReasonUsageLimitReached}
	}
	c.Redemptions++
	m.coupons[c.Code] = c
	return nil
}

type taxConfigsMock struct {
	cfg *entity.TaxConfig
}

func (m *taxConfigsMock) GetActive(ctx context.Context) (*entity.TaxConfig, error) {
	return m.cfg, nil
}

type walletMock struct {
	lock     sync.Mutex
	balances map[string]float64
	history  []entity.WalletAdjustment
}

func (m *walletMock) Adjust(ctx context.Context, adj entity.WalletAdjustment) (entity.WalletTransaction, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if adj.Amount <= 0 {
		return entity.WalletTransaction{}, entity.ErrInvalidAmount
	}
	balance := m.balances[adj.UserID]
	switch adj.Type {
	case entity.WalletCredit:
		balance += adj.Amount
	case entity.WalletDebit:
		balance -= adj.Amount
		if balance < 0 {
			return entity.WalletTransaction{}, entity.ErrInsufficientBalance
		}
	}
	m.balances[adj.UserID] = balance
	m.history = append(m.history, adj)
	return entity.WalletTransaction{
		TransactionID: uuid.NewString(),
		UserID:        adj.UserID,
		Type:          adj.Type,
		Amount:        adj.Amount,
		BalanceAfter:  balance,
	}, nil
}

type webhookEventsMock struct {
	lock sync.Mutex
	seen map[string]bool
}

func (m *webhookEventsMock) StoreOnce(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	key := provider + "/" + eventID
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

// capturingPublisher records everything published, keyed by topic.
type capturingPublisher struct {
	lock   sync.Mutex
	topics map[string][]*message.Message
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.topics == nil {
		p.topics = map[string][]*message.Message{}
	}
	p.topics[topic] = append(p.topics[topic], messages...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) count(topic string) int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.topics[topic])
}

type fixture struct {
	orchestrator *payment.Orchestrator
	bookings     *bookingsMock
	payments     *paymentsMock
	refunds      *refundsMock
	coupons      *couponsMock
	wallet       *walletMock
	razorpay     *gateway.RazorpayMock
	stripe       *gateway.StripeMock
	publisher    *capturingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	publisher := &capturingPublisher{}

	eventBus, err := bus.NewEventBus(publisher)
	require.NoError(t, err)
	commandBus, err := bus.NewCommandBus(publisher)
	require.NoError(t, err)

	f := &fixture{
		bookings:  &bookingsMock{bookings: map[string]entity.Booking{}},
		payments:  &paymentsMock{payments: map[string]entity.Payment{}},
		refunds:   &refundsMock{refunds: map[string]entity.Refund{}},
		coupons:   &couponsMock{coupons: map[string]entity.Coupon{}},
		wallet:    &walletMock{balances: map[string]float64{}},
		razorpay:  &gateway.RazorpayMock{},
		stripe:    &gateway.StripeMock{},
		publisher: publisher,
	}

	f.orchestrator = payment.NewOrchestrator(
		f.bookings,
		f.payments,
		f.refunds,
		f.coupons,
		&taxConfigsMock{cfg: &entity.TaxConfig{GSTPercentage: 5}},
		f.wallet,
		&webhookEventsMock{seen: map[string]bool{}},
		f.razorpay,
		f.stripe,
		eventBus,
		commandBus,
	)

	return f
}

func (f *fixture) seedBooking(baseFare float64) entity.Booking {
	b := entity.Booking{
		BookingID:     uuid.NewString(),
		BookingCode:   "BK-TEST1",
		UserID:        uuid.NewString(),
		BookingType:   entity.BookingTypePackage,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatePending,
		FareBreakdown: entity.CalculateFareBreakdown(baseFare, 0, 0, "INR", &entity.TaxConfig{GSTPercentage: 5}),
	}
	f.bookings.bookings[b.BookingID] = b
	return b
}

func (f *fixture) seedCoupon(code string, flat float64) {
	code = entity.NormalizeCouponCode(code)
	f.coupons.coupons[code] = entity.Coupon{
		Code:          code,
		DiscountType:  entity.DiscountFlat,
		DiscountValue: flat,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		UsageLimit:    sql.NullInt64{Int64: 10, Valid: true},
		IsActive:      true,
	}
}

func TestCreatePaymentOrder_razorpayWithCouponAndWallet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.seedCoupon("FLAT100", 100)
	f.wallet.balances[b.UserID] = 500

	result, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:    b.BookingID,
		UserID:       b.UserID,
		Method:       entity.MethodRazorpay,
		CouponCode:   "flat100",
		WalletAmount: 200,
	})
	require.NoError(t, err)

	// 1000 + 50 gst - 100 coupon = 950 total, minus 200 wallet = 750 payable
	assert.Equal(t, 950.0, result.Booking.Total)
	assert.Equal(t, 750.0, result.Payment.Amount)
	assert.Equal(t, entity.PaymentStatePending, result.Payment.Status)
	assert.True(t, result.Payment.ProviderOrderID.Valid)
	assert.NotEmpty(t, result.Gateway["order_id"])

	// wallet offset is held immediately
	assert.Equal(t, 300.0, f.wallet.balances[b.UserID])

	order, ok := f.razorpay.Orders[result.Payment.ProviderOrderID.String]
	require.True(t, ok)
	assert.Equal(t, int64(75000), order.AmountMinor)
}

func TestCreatePaymentOrder_invalidCoupon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)

	_, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:  b.BookingID,
		UserID:     b.UserID,
		Method:     entity.MethodRazorpay,
		CouponCode: "NOPE",
	})

	var couponErr entity.InvalidCouponError
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, entity.ReasonCouponNotFound, couponErr.Reason)
}

func TestCreatePaymentOrder_unknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.CreatePaymentOrder(context.Background(), payment.CheckoutRequest{
		BookingID: uuid.NewString(),
		Method:    entity.MethodRazorpay,
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCreatePaymentOrder_walletMethodConfirmsImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.seedCoupon("FLAT100", 100)
	f.wallet.balances[b.UserID] = 2000

	result, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:  b.BookingID,
		UserID:     b.UserID,
		Method:     entity.MethodWallet,
		CouponCode: "FLAT100",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatePaid, result.Payment.Status)
	assert.Equal(t, entity.BookingStatusConfirmed, result.Booking.Status)
	assert.Equal(t, entity.PaymentStatePaid, result.Booking.PaymentStatus)
	assert.Equal(t, 2000.0-950.0, f.wallet.balances[b.UserID])

	// coupon consumed exactly once on finalization
	assert.Equal(t, int64(1), f.coupons.coupons["FLAT100"].Redemptions)
	assert.Equal(t, 1, f.publisher.count("events.BookingConfirmed"))
}

func TestCreatePaymentOrder_walletMethodRejectsOffset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.wallet.balances[b.UserID] = 2000

	_, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:    b.BookingID,
		UserID:       b.UserID,
		Method:       entity.MethodWallet,
		WalletAmount: 200,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)

	// nothing moved and nothing was recorded
	assert.Equal(t, 2000.0, f.wallet.balances[b.UserID])
	assert.Empty(t, f.payments.payments)
}

func TestCreatePaymentOrder_walletInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.wallet.balances[b.UserID] = 10

	_, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID: b.BookingID,
		UserID:    b.UserID,
		Method:    entity.MethodWallet,
	})
	assert.ErrorIs(t, err, entity.ErrInsufficientBalance)
}

func checkoutRazorpay(t *testing.T, f *fixture, b entity.Booking) payment.CheckoutResult {
	t.Helper()

	result, err := f.orchestrator.CreatePaymentOrder(context.Background(), payment.CheckoutRequest{
		BookingID: b.BookingID,
		UserID:    b.UserID,
		Method:    entity.MethodRazorpay,
	})
	require.NoError(t, err)
	return result
}

func TestReconcile_paymentCaptured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	result := checkoutRazorpay(t, f, b)

	event := payment.ProviderEvent{
		Provider:  "razorpay",
		EventID:   "evt_1",
		Type:      "payment.captured",
		OrderID:   result.Payment.ProviderOrderID.String,
		PaymentID: "pay_1",
	}
	require.NoError(t, f.orchestrator.Reconcile(ctx, event))

	p, err := f.payments.Get(ctx, result.Payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatePaid, p.Status)
	assert.Equal(t, "pay_1", p.ProviderPaymentID.String)

	updated, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, updated.Status)
	assert.Equal(t, 1, f.publisher.count("events.BookingConfirmed"))
}

func TestReconcile_replayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	result := checkoutRazorpay(t, f, b)

	event := payment.ProviderEvent{
		Provider:  "razorpay",
		EventID:   "evt_replayed",
		Type:      "payment.captured",
		OrderID:   result.Payment.ProviderOrderID.String,
		PaymentID: "pay_1",
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, f.orchestrator.Reconcile(ctx, event))
	}

	assert.Equal(t, 1, f.publisher.count("events.BookingConfirmed"))
}

func TestReconcile_sameTypeDifferentEventID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	result := checkoutRazorpay(t, f, b)

	for _, id := range []string{"evt_a", "evt_b"} {
		require.NoError(t, f.orchestrator.Reconcile(ctx, payment.ProviderEvent{
			Provider:  "razorpay",
			EventID:   id,
			Type:      "payment.captured",
			OrderID:   result.Payment.ProviderOrderID.String,
			PaymentID: "pay_1",
		}))
	}

	// second capture sees the payment already paid and does nothing
	assert.Equal(t, 1, f.publisher.count("events.BookingConfirmed"))
}

func TestReconcile_paymentFailedReleasesWalletOffset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.wallet.balances[b.UserID] = 1000

	result, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:    b.BookingID,
		UserID:       b.UserID,
		Method:       entity.MethodRazorpay,
		WalletAmount: 200,
	})
	require.NoError(t, err)
	require.Equal(t, 800.0, f.wallet.balances[b.UserID])

	require.NoError(t, f.orchestrator.Reconcile(ctx, payment.ProviderEvent{
		Provider: "razorpay",
		EventID:  "evt_fail_1",
		Type:     "payment.failed",
		OrderID:  result.Payment.ProviderOrderID.String,
	}))

	// the held offset comes back so a retry starts from the full balance
	assert.Equal(t, 1000.0, f.wallet.balances[b.UserID])

	// a second failure event for the same payment must not credit twice
	require.NoError(t, f.orchestrator.Reconcile(ctx, payment.ProviderEvent{
		Provider: "razorpay",
		EventID:  "evt_fail_2",
		Type:     "payment.failed",
		OrderID:  result.Payment.ProviderOrderID.String,
	}))
	assert.Equal(t, 1000.0, f.wallet.balances[b.UserID])

	retry, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID:    b.BookingID,
		UserID:       b.UserID,
		Method:       entity.MethodRazorpay,
		WalletAmount: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, 800.0, f.wallet.balances[b.UserID])

	require.NoError(t, f.orchestrator.Reconcile(ctx, payment.ProviderEvent{
		Provider:  "razorpay",
		EventID:   "evt_capture_1",
		Type:      "payment.captured",
		OrderID:   retry.Payment.ProviderOrderID.String,
		PaymentID: "pay_retry",
	}))

	// exactly one offset is held across the failed attempt and the retry
	assert.Equal(t, 800.0, f.wallet.balances[b.UserID])

	updated, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, updated.Status)
}

func TestReconcile_unknownEventTypeIgnored(t *testing.T) {
	f := newFixture(t)

	err := f.orchestrator.Reconcile(context.Background(), payment.ProviderEvent{
		Provider: "stripe",
		EventID:  "evt_x",
		Type:     "customer.created",
	})
	assert.NoError(t, err)
}

func capturedPayment(t *testing.T, f *fixture, b entity.Booking) entity.Payment {
	t.Helper()

	result := checkoutRazorpay(t, f, b)
	require.NoError(t, f.orchestrator.Reconcile(context.Background(), payment.ProviderEvent{
		Provider:  "razorpay",
		EventID:   uuid.NewString(),
		Type:      "payment.captured",
		OrderID:   result.Payment.ProviderOrderID.String,
		PaymentID: "pay_" + uuid.NewString()[:8],
	}))

	p, err := f.payments.Get(context.Background(), result.Payment.PaymentID)
	require.NoError(t, err)
	return p
}

func TestCreateRefund_full(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)

	refund, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Reason:    "Trip cancelled",
		ActorID:   "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RefundApproved, refund.Status)
	assert.Equal(t, p.Amount, refund.AmountApproved)

	updatedPayment, err := f.payments.Get(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStateRefunded, updatedPayment.Status)
	assert.Equal(t, p.Amount, updatedPayment.RefundedAmount)

	updatedBooking, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusRefunded, updatedBooking.Status)
	assert.Equal(t, entity.PaymentStateRefunded, updatedBooking.PaymentStatus)

	// provider refund happens asynchronously
	assert.Equal(t, 1, f.publisher.count("commands.RefundProviderPayment"))
}

func TestCreateRefund_partialKeepsBookingStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)

	refund, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Amount:    100,
		Reason:    "Goodwill",
		ActorID:   "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundPartial, refund.Status)

	updatedPayment, err := f.payments.Get(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatePartiallyRefunded, updatedPayment.Status)
	assert.Equal(t, 100.0, updatedPayment.RefundedAmount)

	updatedBooking, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, updatedBooking.Status, "partial refund must not cascade the booking status")
	assert.Equal(t, entity.PaymentStatePartiallyRefunded, updatedBooking.PaymentStatus)
}

func TestCreateRefund_repeatedPartialsCappedAtRemainder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)
	require.Equal(t, 1050.0, p.Amount)

	_, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Amount:    700,
		Reason:    "Goodwill",
	})
	require.NoError(t, err)

	// a second 700 exceeds the 350 still unrefunded
	_, err = f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Amount:    700,
		Reason:    "Goodwill again",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)

	updatedPayment, err := f.payments.Get(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, updatedPayment.RefundedAmount)
	assert.Equal(t, entity.PaymentStatePartiallyRefunded, updatedPayment.Status)
	assert.Equal(t, 1, f.publisher.count("commands.RefundProviderPayment"))
}

func TestCreateRefund_partialThenRemainderCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)

	_, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Amount:    700,
		Reason:    "Goodwill",
	})
	require.NoError(t, err)

	// zero amount refunds whatever is left, not the original total
	refund, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Reason:    "Trip cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, 350.0, refund.AmountApproved)
	assert.Equal(t, entity.RefundApproved, refund.Status)

	updatedPayment, err := f.payments.Get(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, 1050.0, updatedPayment.RefundedAmount)
	assert.Equal(t, entity.PaymentStateRefunded, updatedPayment.Status)

	updatedBooking, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusRefunded, updatedBooking.Status)
	assert.Equal(t, 2, f.publisher.count("commands.RefundProviderPayment"))
}

func TestCreateRefund_overPaymentAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)

	_, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: p.PaymentID,
		Amount:    p.Amount + 1,
		Reason:    "too much",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)
}

func TestCreateRefund_pendingPaymentRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	result := checkoutRazorpay(t, f, b)

	_, err := f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: result.Payment.PaymentID,
		Reason:    "not captured yet",
	})
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestCreateRefund_walletPaymentCreditsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	f.wallet.balances[b.UserID] = 2000

	result, err := f.orchestrator.CreatePaymentOrder(ctx, payment.CheckoutRequest{
		BookingID: b.BookingID,
		UserID:    b.UserID,
		Method:    entity.MethodWallet,
	})
	require.NoError(t, err)
	require.Equal(t, 950.0, f.wallet.balances[b.UserID])

	_, err = f.orchestrator.CreateRefund(ctx, payment.RefundRequest{
		BookingID: b.BookingID,
		PaymentID: result.Payment.PaymentID,
		Reason:    "Trip cancelled",
	})
	require.NoError(t, err)

	assert.Equal(t, 2000.0, f.wallet.balances[b.UserID])
	assert.Equal(t, 1, f.publisher.count("events.BookingRefunded"))
	assert.Equal(t, 0, f.publisher.count("commands.RefundProviderPayment"))
}

func TestReconcile_chargeRefunded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(1000)
	p := capturedPayment(t, f, b)

	require.NoError(t, f.orchestrator.Reconcile(ctx, payment.ProviderEvent{
		Provider:    "razorpay",
		EventID:     "evt_refund",
		Type:        "refund.processed",
		OrderID:     p.ProviderOrderID.String,
		AmountMinor: int64(p.Amount * 100),
	}))

	updatedPayment, err := f.payments.Get(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStateRefunded, updatedPayment.Status)

	updatedBooking, err := f.bookings.Get(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusRefunded, updatedBooking.Status)
}
