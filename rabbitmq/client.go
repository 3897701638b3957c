// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"aventrada-server/commons"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotConfigured = errors.New("RABBITMQ_URL is not set")

func ConfigFromEnv() Config {
	return Config{
		AMQPURL:     commons.GetEnv("RABBITMQ_URL"),
		QueueName:   commons.GetEnv("EMAIL_JOB_QUEUE", DefaultQueue),
		MaxAttempts: commons.GetEnvInt("EMAIL_JOB_MAX_ATTEMPTS", 5),
	}
}

// Dial connects and declares the durable job queue.
func Dial(config Config) (*Client, error) {
	if config.AMQPURL == "" {
		return nil, ErrNotConfigured
	}
	if config.QueueName == "" {
		config.QueueName = DefaultQueue
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}

	conn, err := amqp.Dial(config.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel: %w", err)
	}

	if _, err := ch.QueueDeclare(config.QueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	commons.Logger.Infof("RabbitMQ queue ready: %s", config.QueueName)
	return &Client{config: config, conn: conn, channel: ch}, nil
}

func (c *Client) QueueName() string {
	return c.config.QueueName
}

// PublishJSON sends body as a persistent JSON message on the job queue.
func (c *Client) PublishJSON(ctx context.Context, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return c.publish(ctx, payload, 1)
}

func (c *Client) publish(ctx context.Context, payload []byte, attempt int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.channel.PublishWithContext(ctx, "", c.config.QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{AttemptHeader: int32(attempt)},
		Body:         payload,
	})
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
