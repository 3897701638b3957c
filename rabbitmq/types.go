// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue = "email_jobs"
	// AttemptHeader counts deliveries of a job across republishes.
	AttemptHeader = "x-attempt"
)

type Config struct {
	AMQPURL     string
	QueueName   string
	MaxAttempts int
}

type Client struct {
	config  Config
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// Handler processes one message body. A nil error acks the delivery.
type Handler func(body []byte) error
