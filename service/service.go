package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"travelbook/booking"
	"travelbook/db"
	"travelbook/gateway"
	"travelbook/http"
	"travelbook/payment"
	"travelbook/pubsub"
	"travelbook/pubsub/bus"
	"travelbook/pubsub/command"
	"travelbook/pubsub/event"
)

type RazorpayService interface {
	CreateOrder(ctx context.Context, request gateway.RazorpayOrderRequest) (gateway.RazorpayOrder, error)
	CreateRefund(ctx context.Context, request gateway.RazorpayRefundRequest) (gateway.RazorpayRefund, error)
}

type StripeService interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (gateway.StripePaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (gateway.StripeRefund, error)
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
}

func New(
	addr string,
	database *sqlx.DB,
	redisClient *redis.Client,
	razorpayService RazorpayService,
	stripeService StripeService,
	documentsService event.DocumentsService,
	financeService event.FinanceSheetAPI,
	webhookSecrets http.WebhookSecrets,
	adminToken string,
) Service {
	bookingsRepo := db.NewBookingsPostgresRepository(database)
	paymentsRepo := db.NewPaymentsPostgresRepository(database)
	refundsRepo := db.NewRefundsPostgresRepository(database)
	couponsRepo := db.NewCouponsPostgresRepository(database)
	taxConfigsRepo := db.NewTaxConfigsPostgresRepository(database)
	walletLedger := db.NewWalletPostgresLedger(database)
	webhookEventsRepo := db.NewWebhookEventsPostgresRepository(database)

	watermillLogger := pubsub.NewLogrusAdapter(logrus.NewEntry(logrus.StandardLogger()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	commandBus, err := bus.NewCommandBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create command bus: %w", err))
	}

	eventsHandler := event.NewHandler(
		eventBus,
		documentsService,
		financeService,
		bookingsRepo,
	)

	commandsHandler := command.NewHandler(
		eventBus,
		razorpayService,
		stripeService,
		refundsRepo,
	)

	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	commandProcessorConfig := command.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		eventProcessorConfig,
		eventsHandler,
		commandProcessorConfig,
		commandsHandler,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	bookingService := booking.NewService(bookingsRepo, taxConfigsRepo)

	orchestrator := payment.NewOrchestrator(
		bookingsRepo,
		paymentsRepo,
		refundsRepo,
		couponsRepo,
		taxConfigsRepo,
		walletLedger,
		webhookEventsRepo,
		razorpayService,
		stripeService,
		eventBus,
		commandBus,
	)

	httpServer := http.NewServer(
		addr,
		orchestrator,
		bookingService,
		paymentsRepo,
		walletLedger,
		webhookSecrets,
		adminToken,
	)

	return Service{
		db:              database,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the service shouldn't look healthy before the router consumes
		<-s.watermillRouter.Running()

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}
