package bus

import (
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewCommandBus sends commands on per-command streams ("commands.<Name>"),
// JSON-encoded under the bare struct name so handlers subscribe by type.
func NewCommandBus(pub message.Publisher) (*cqrs.CommandBus, error) {
	config := cqrs.CommandBusConfig{
		GeneratePublishTopic: func(params cqrs.CommandBusGeneratePublishTopicParams) (string, error) {
			return "commands." + params.CommandName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
	}
	return cqrs.NewCommandBusWithConfig(pub, config)
}
