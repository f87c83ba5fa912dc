// Package service publishes domain events to RabbitMQ. Publishing is
// best-effort: failures are logged and the notifier falls back to a
// synchronous database insert so a broker outage never loses a
// notification.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/velimirb/transfer-window/internal/model"
	"github.com/velimirb/transfer-window/internal/queue"
	"github.com/velimirb/transfer-window/internal/repository"
)

// Notifier delivers user notifications produced by domain actions.
type Notifier struct {
	Notifs *repository.NotificationRepo
}

func NewNotifier(notifs *repository.NotificationRepo) *Notifier {
	return &Notifier{Notifs: notifs}
}

// Send queues a notification for a user. When the broker is
// unreachable the row is written directly instead.
func (n *Notifier) Send(ctx context.Context, userID uint64, typ, message string) {
	ev := queue.NotificationEvent{
		UserID:  userID,
		Type:    typ,
		Message: message,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := publishNotification(ctx, ev); err != nil {
		row := model.Notification{UserID: userID, Type: typ, Message: message}
		if dbErr := n.Notifs.Create(ctx, &row); dbErr != nil {
			log.Printf("notifier: fallback insert failed for user %d: %v", userID, dbErr)
		}
	}
}

// SendAll fans one message out to several users.
func (n *Notifier) SendAll(ctx context.Context, userIDs []uint64, typ, message string) {
	for _, id := range userIDs {
		n.Send(ctx, id, typ, message)
	}
}

// publishNotification publishes a single event to the durable
// notification queue. Messages are persistent so they survive broker
// restarts.
func publishNotification(ctx context.Context, ev queue.NotificationEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
