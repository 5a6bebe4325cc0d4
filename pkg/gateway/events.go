package gateway

import (
	"encoding/json"
	"errors"
)

// ErrMalformedPayload means the webhook body was missing the nested fields
// its declared event type requires. The event is dropped; the gateway
// redelivers on its side if it cares.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Webhook events, parsed once at the boundary into one of these variants.
// Unknown event types come back as UnknownEvent so new gateway features
// never break the endpoint.
type (
	PaymentCaptured struct {
		OrderID   string
		PaymentID string
	}
	PaymentFailed struct {
		OrderID string
	}
	OrderPaid struct {
		OrderID string
	}
	UnknownEvent struct {
		Type string
	}
)

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payment struct {
		Entity struct {
			ID      string `json:"id"`
			OrderID string `json:"order_id"`
		} `json:"entity"`
	} `json:"payment"`
	Order struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
	} `json:"order"`
}

// ParseWebhookEvent decodes a raw webhook body into a typed event. Callers
// must verify the body's signature before parsing.
func ParseWebhookEvent(body []byte) (any, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}
	switch env.Event {
	case "payment.captured":
		if env.Payment.Entity.OrderID == "" || env.Payment.Entity.ID == "" {
			return nil, ErrMalformedPayload
		}
		return PaymentCaptured{OrderID: env.Payment.Entity.OrderID, PaymentID: env.Payment.Entity.ID}, nil
	case "payment.failed":
		if env.Payment.Entity.OrderID == "" {
			return nil, ErrMalformedPayload
		}
		return PaymentFailed{OrderID: env.Payment.Entity.OrderID}, nil
	case "order.paid":
		if env.Order.Entity.ID == "" {
			return nil, ErrMalformedPayload
		}
		return OrderPaid{OrderID: env.Order.Entity.ID}, nil
	default:
		return UnknownEvent{Type: env.Event}, nil
	}
}
