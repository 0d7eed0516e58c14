package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"checkout-backend/internal/domain"
	"github.com/segmentio/kafka-go"
)

// OrderSettled is published after an order wins a terminal transition.
type OrderSettled struct {
	OrderID         string             `json:"orderId"`
	SessionID       string             `json:"sessionId"`
	Status          domain.OrderStatus `json:"status"`
	TotalCents      int64              `json:"totalCents"`
	PaymentIntentID string             `json:"paymentIntentId"`
	SettledAt       time.Time          `json:"settledAt"`
}

// Publisher emits settled-order events. The zero-broker publisher is a no-op
// so deployments without Kafka run unchanged.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokersCSV, topic string) *Publisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Publisher) OrderSettled(ctx context.Context, evt OrderSettled) error {
	if !p.Enabled() {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
