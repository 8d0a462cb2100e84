package consumer

import (
	"context"
	"encoding/json"

	"github.com/Ross1116/sitespace-app-sub000/internal/logger"
	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/Ross1116/sitespace-app-sub000/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingConsumer applies booking change events published by the backend to
// the local snapshot, then pokes the refresh hook so loaded calendars pick up
// the change.
type BookingConsumer struct {
	snapshots      repository.SnapshotRepository
	defaultProject string
	onChange       func()
	log            *logger.Logger
}

func NewBookingConsumer(snapshots repository.SnapshotRepository, defaultProject string, onChange func(), log *logger.Logger) *BookingConsumer {
	return &BookingConsumer{
		snapshots:      snapshots,
		defaultProject: defaultProject,
		onChange:       onChange,
		log:            log,
	}
}

// Start listens for messages and upserts bookings into the local snapshot.
func (bc *BookingConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			bc.handleMessage(msg)
		}
		bc.log.Info("booking consumer channel closed, stopping")
	}()
}

func (bc *BookingConsumer) handleMessage(msg amqp.Delivery) {
	var raw models.RawBooking
	if err := json.Unmarshal(msg.Body, &raw); err != nil {
		bc.log.Warnf("booking message unmarshal failed: %v", err)
		_ = msg.Nack(false, false)
		return
	}
	if raw.BookingKey == "" {
		bc.log.Warn("booking message without booking_key, dropping")
		_ = msg.Nack(false, false)
		return
	}

	project := bc.defaultProject
	if raw.Project != nil && raw.Project.ID != "" {
		project = raw.Project.ID
	}

	if err := bc.snapshots.Upsert(context.Background(), project, raw); err != nil {
		bc.log.Errorf("snapshot upsert for booking %s failed: %v", raw.BookingKey, err)
		_ = msg.Nack(false, true) // requeue
		return
	}

	bc.log.Infow("booking change applied", "booking", raw.BookingKey, "routing_key", msg.RoutingKey)
	_ = msg.Ack(false)

	if bc.onChange != nil {
		bc.onChange()
	}
}
