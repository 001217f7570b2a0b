package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MikeRez0/ypshop/internal/adapter/config"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publishing happens after the order is committed, in the request path, so
// an unreachable broker must fail fast.
const (
	publishTimeout   = 2 * time.Second
	writeTimeout     = time.Second
	writeMaxAttempts = 2
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(conf *config.Events, logger *zap.Logger) (*KafkaPublisher, error) {
	brokers := conf.BrokerList()
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        conf.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
		MaxAttempts:  writeMaxAttempts,
	}
	return &KafkaPublisher{writer: writer, logger: logger}, nil
}

// Publish keys messages by customer so one customer's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.CustomerID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}

	p.logger.Debug("Event published",
		zap.String("type", string(event.Type)),
		zap.Uint64("order", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Discard drops events; used when no brokers are configured.
type Discard struct{}

func (Discard) Publish(context.Context, *domain.OrderEvent) error { return nil }
