package event

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"travelbook/entity"
	"travelbook/gateway"
)

type DocumentsService interface {
	RenderInvoice(ctx context.Context, request gateway.InvoiceRequest) (gateway.InvoiceResponse, error)
	RenderTicket(ctx context.Context, request gateway.TicketRequest) (gateway.TicketResponse, error)
}

type FinanceSheetAPI interface {
	AppendRow(ctx context.Context, sheetName string, row []string) error
}

type BookingsRepository interface {
	Update(ctx context.Context, bookingID string, updateFn func(booking *entity.Booking) error) error
}

type Handler struct {
	eventBus         *cqrs.EventBus
	documentsService DocumentsService
	financeService   FinanceSheetAPI
	bookingsRepo     BookingsRepository
}

func NewHandler(
	eventBus *cqrs.EventBus,
	documentsService DocumentsService,
	financeService FinanceSheetAPI,
	bookingsRepo BookingsRepository,
) Handler {
	if eventBus == nil {
		panic("missing eventBus")
	}
	if documentsService == nil {
		panic("missing documentsService")
	}
	if financeService == nil {
		panic("missing financeService")
	}
	if bookingsRepo == nil {
		panic("missing bookingsRepo")
	}

	return Handler{
		eventBus:         eventBus,
		documentsService: documentsService,
		financeService:   financeService,
		bookingsRepo:     bookingsRepo,
	}
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return "events." + params.EventName, nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: "svc-travelbook." + params.HandlerName,
			}, watermillLogger)
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: watermillLogger,
	}
}
