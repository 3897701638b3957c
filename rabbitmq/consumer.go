// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"aventrada-server/commons"
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume delivers messages to handler one at a time until ctx is done or
// the broker closes the channel.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := c.channel.Consume(c.config.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				commons.Logger.Warn("Message channel closed")
				return nil
			}
			c.handleMessage(ctx, msg, handler)
		case <-ctx.Done():
			commons.Logger.Info("Stop signal received")
			return nil
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, msg amqp.Delivery, handler Handler) {
	attempt := Attempt(msg.Headers)
	commons.Logger.Debugf("Received job (attempt %d): %d bytes", attempt, len(msg.Body))

	err := handler(msg.Body)
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			commons.Logger.Errorf("Ack failed: %v", ackErr)
		}
		return
	}

	if !ShouldRetry(attempt, c.config.MaxAttempts) {
		commons.Logger.Errorf("Dropping job after %d attempts: %v", attempt, err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			commons.Logger.Errorf("Nack failed: %v", nackErr)
		}
		return
	}

	commons.Logger.Warnf("Job failed (attempt %d of %d), requeueing: %v", attempt, c.config.MaxAttempts, err)
	if pubErr := c.publish(ctx, msg.Body, attempt+1); pubErr != nil {
		commons.Logger.Errorf("Requeue failed, returning job to broker: %v", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		commons.Logger.Errorf("Ack failed: %v", ackErr)
	}
}

// Attempt reads the attempt counter header, treating a missing header as the first attempt.
func Attempt(headers amqp.Table) int {
	switch v := headers[AttemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	default:
		return 1
	}
}

func ShouldRetry(attempt, maxAttempts int) bool {
	return attempt < maxAttempts
}
