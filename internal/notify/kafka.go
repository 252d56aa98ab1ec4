package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// messageWriter - часть kafka.Writer, используемая диспетчером.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMessage - формат сообщения в топике уведомлений.
type KafkaMessage struct {
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// KafkaDispatcher публикует уведомления в топик Kafka. Ключ сообщения - ID пользователя,
// поэтому уведомления одного пользователя попадают в одну партицию.
type KafkaDispatcher struct {
	writer messageWriter
}

// NewKafkaDispatcher создает диспетчер для брокеров и топика.
func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (d *KafkaDispatcher) Notify(ctx context.Context, userID string, p Payload) error {
	body, err := json.Marshal(KafkaMessage{
		UserID:    userID,
		Type:      p.Type,
		Title:     p.Title,
		Message:   p.Message,
		Data:      p.Data,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err = d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(userID), Value: body}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close закрывает writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
