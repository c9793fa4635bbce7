package invalidation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
)

// MessagePublisher sends a message to a broker exchange.
type MessagePublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// Publisher forwards signals to other service instances through a broker.
type Publisher struct {
	mq       MessagePublisher
	exchange string
	origin   string
	logTags  log.Fields
}

// NewPublisher creates a Publisher stamping signals with origin.
func NewPublisher(mq MessagePublisher, exchange, origin string) *Publisher {
	return &Publisher{
		mq:       mq,
		exchange: exchange,
		origin:   origin,
		logTags:  log.Fields{"package": "gudang", "module": "invalidation", "component": "publisher"},
	}
}

// RoutingKey is the broker routing key of a signal.
func RoutingKey(signal Signal) string {
	return fmt.Sprintf("views.%s", signal.Operation)
}

// Invalidate publishes the signal. A broker failure is logged; the local
// invalidation already happened and the mutation stands.
func (p *Publisher) Invalidate(ctx context.Context, signal Signal) {
	signal.Origin = p.origin
	logger := log.WithFields(p.logTags).WithField("signal", signal.ID)

	body, err := json.Marshal(signal)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal invalidation signal")
		return
	}
	if err := p.mq.Publish(ctx, p.exchange, RoutingKey(signal), body); err != nil {
		logger.WithError(err).Warn("Failed to publish invalidation signal")
		return
	}
	logger.Debug("Published invalidation signal")
}

// Receiver applies signals published by other instances.
type Receiver struct {
	origin string
	target Coordinator
}

// NewReceiver creates a Receiver that ignores signals stamped with origin.
func NewReceiver(origin string, target Coordinator) *Receiver {
	return &Receiver{origin: origin, target: target}
}

// Apply decodes one broker message and forwards it to the target.
func (r *Receiver) Apply(ctx context.Context, body []byte) error {
	var signal Signal
	if err := json.Unmarshal(body, &signal); err != nil {
		return fmt.Errorf("failed to decode invalidation signal: %w", err)
	}
	if signal.Origin == r.origin {
		return nil
	}
	r.target.Invalidate(ctx, signal)
	return nil
}
