package command

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"travelbook/entity"
	"travelbook/gateway"
)

func (h Handler) RefundProviderPaymentHandler() cqrs.CommandHandler {
	return cqrs.NewCommandHandler(
		"RefundProviderPaymentHandler",
		func(ctx context.Context, command *entity.RefundProviderPayment) error {
			logrus.WithField("refund_id", command.RefundID).
				WithField("provider", command.Provider).
				Info("Requesting provider refund")

			var providerRefundID string
			switch entity.PaymentMethod(command.Provider) {
			case entity.MethodRazorpay:
				resp, err := h.razorpayService.CreateRefund(ctx, gateway.RazorpayRefundRequest{
					PaymentID:   command.ProviderPaymentID,
					AmountMinor: command.AmountMinor,
					Notes: map[string]string{
						"refund_id":  command.RefundID,
						"booking_id": command.BookingID,
					},
				})
				if err != nil {
					return fmt.Errorf("razorpay refund failed: %w", err)
				}
				providerRefundID = resp.ID

			case entity.MethodStripe:
				resp, err := h.stripeService.CreateRefund(ctx, command.ProviderPaymentID, command.AmountMinor)
				if err != nil {
					return fmt.Errorf("stripe refund failed: %w", err)
				}
				providerRefundID = resp.ID

			default:
				return fmt.Errorf("unknown refund provider: %s", command.Provider)
			}

			err := h.refundsRepo.Update(ctx, command.RefundID, func(refund *entity.Refund) error {
				if command.Full {
					refund.Status = entity.RefundCompleted
				}
				refund.AppendTimeline("provider_refund_requested", providerRefundID, "system")
				return nil
			})
			if err != nil {
				return err
			}

			return h.eventBus.Publish(ctx, entity.BookingRefunded{
				Header:      entity.NewEventHeaderWithIdempotencyKey(command.Header.IdempotencyKey),
				BookingID:   command.BookingID,
				BookingCode: command.BookingCode,
				UserID:      command.UserID,
				PaymentID:   command.PaymentID,
				RefundID:    command.RefundID,
				Amount:      float64(command.AmountMinor) / 100,
				Currency:    command.Currency,
				Full:        command.Full,
			})
		},
	)
}
