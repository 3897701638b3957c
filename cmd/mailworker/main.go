// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"aventrada-server/commons"
	"aventrada-server/db"
	"aventrada-server/notifications"
	"aventrada-server/rabbitmq"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := rabbitmq.ConfigFromEnv()
	flag.StringVar(&cfg.AMQPURL, "url", cfg.AMQPURL, "AMQP URL (defaults to RABBITMQ_URL)")
	flag.StringVar(&cfg.QueueName, "queue", cfg.QueueName, "Queue name")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Deliveries before a job is dropped")
	// Read by commons.LoadEnvFile before the flag defaults above are computed.
	flag.String("env-file", "", "Path to an env file to load")
	flag.Parse()

	commons.InitLogger()
	db.InitDB()

	notifications.Default = notifications.NewSenderFromEnv(db.Conn)

	client, err := rabbitmq.Dial(cfg)
	if err != nil {
		commons.Logger.Fatalf("Consumer init failed: %v", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commons.Logger.Infof("Mail worker is running on queue %s. Press Ctrl+C to exit.", client.QueueName())

	err = client.Consume(ctx, func(body []byte) error {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return notifications.HandleEmailJob(jobCtx, body)
	})
	if err != nil {
		commons.Logger.Fatalf("Consumer stopped with error: %v", err)
	}

	commons.Logger.Info("Mail worker stopped.")
}
