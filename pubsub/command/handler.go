package command

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

type RazorpayService interface {
	CreateRefund(ctx context.Context, request gateway.RazorpayRefundRequest) (gateway.RazorpayRefund, error)
}

type StripeService interface {
	CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (gateway.StripeRefund, error)
}

type RefundsRepository interface {
	Update(ctx context.Context, refundID string, updateFn func(refund *entity.Refund) error) error
}

type Handler struct {
	eventBus        *cqrs.EventBus
	razorpayService RazorpayService
	stripeService   StripeService
	refundsRepo     RefundsRepository
}

func NewHandler(
	eventBus *cqrs.EventBus,
	razorpayService RazorpayService,
	stripeService StripeService,
	refundsRepo RefundsRepository,
) Handler {
	if eventBus == nil {
		panic("missing eventBus")
	}
	if razorpayService == nil {
		panic("missing razorpayService")
	}
	if stripeService == nil {
		panic("missing stripeService")
	}
	if refundsRepo == nil {
		panic("missing refundsRepo")
	}

	return Handler{
		eventBus:        eventBus,
		razorpayService: razorpayService,
		stripeService:   stripeService,
		refundsRepo:     refundsRepo,
	}
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.CommandProcessorConfig {
	return cqrs.CommandProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.CommandProcessorGenerateSubscribeTopicParams) (string, error) {
			return "commands." + params.CommandName, nil
		},
		SubscriberConstructor: func(params cqrs.CommandProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: "svc-travelbook.commands." + params.HandlerName,
			}, watermillLogger)
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: watermillLogger,
	}
}
