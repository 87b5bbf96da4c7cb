package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/splitpal/splitpal/internal/config"
	"github.com/splitpal/splitpal/internal/email"
	"github.com/splitpal/splitpal/internal/notify"
	"github.com/splitpal/splitpal/internal/storage/sqlite"
	"github.com/splitpal/splitpal/pkg/logging"
)

// The notifier drains the notification queue and emails every participant of
// each newly recorded expense or settlement.
func main() {
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("notifier exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required for the notifier")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	broker, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer broker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := email.NewSESClient(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}
	sender := email.NewSender(client, cfg.EmailFrom)

	deliveries, err := broker.Consume()
	if err != nil {
		return err
	}

	w := &worker{store: store, sender: sender}
	slog.Info("notifier consuming", "queue", cfg.AMQPQueue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := w.handle(ctx, delivery.Body); err != nil {
				slog.Error("failed to handle event", "error", err)
				// Requeue once on failure; redelivered messages are dropped
				// so a poison message cannot wedge the queue.
				delivery.Nack(false, !delivery.Redelivered)
				continue
			}
			delivery.Ack(false)
		}
	}
}

type worker struct {
	store  *sqlite.SQLiteStore
	sender *email.Sender
}

func (w *worker) handle(ctx context.Context, body []byte) error {
	env, err := notify.DecodeEnvelope(body)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Kind {
	case notify.KindExpenseCreated:
		var event notify.ExpenseCreated
		if err := json.Unmarshal(env.Payload, &event); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Kind, err)
		}
		return w.expenseCreated(ctx, event)
	case notify.KindSettlementCreated:
		var event notify.SettlementCreated
		if err := json.Unmarshal(env.Payload, &event); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Kind, err)
		}
		return w.settlementCreated(ctx, event)
	default:
		slog.Warn("skipping unknown event kind", "kind", env.Kind)
		return nil
	}
}

func (w *worker) expenseCreated(ctx context.Context, event notify.ExpenseCreated) error {
	payer, err := w.store.GetUserByID(ctx, event.PaidBy)
	if err != nil {
		return fmt.Errorf("resolve payer: %w", err)
	}

	subject := fmt.Sprintf("New expense: %s", event.Description)
	body := fmt.Sprintf("%s paid %s for %q and split it with you.",
		payer.Name, event.Amount, event.Description)

	for _, id := range event.Participants {
		if id == event.PaidBy {
			continue
		}
		if err := w.notify(ctx, id, subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (w *worker) settlementCreated(ctx context.Context, event notify.SettlementCreated) error {
	payer, err := w.store.GetUserByID(ctx, event.PaidBy)
	if err != nil {
		return fmt.Errorf("resolve payer: %w", err)
	}

	subject := "Payment recorded"
	body := fmt.Sprintf("%s recorded a payment of %s to you.", payer.Name, event.Amount)
	return w.notify(ctx, event.ReceivedBy, subject, body)
}

func (w *worker) notify(ctx context.Context, userID, subject, body string) error {
	user, err := w.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if err := w.sender.Send(ctx, user.Email, subject, body); err != nil {
		return err
	}
	slog.Info("notification sent", "to", maskEmail(user.Email), "subject", subject)
	return nil
}

func maskEmail(addr string) string {
	for i, r := range addr {
		if r == '@' {
			if i <= 1 {
				return "*" + addr[i:]
			}
			return addr[:1] + "***" + addr[i:]
		}
	}
	return "***"
}
