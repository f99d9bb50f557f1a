// Package message converts between broker messages and value.Message, and
// publishes generated messages to Kafka or MQTT brokers.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/getmockd/contractd/pkg/logging"
	"github.com/getmockd/contractd/pkg/value"
)

// ErrPublishTimeout is returned when a broker does not confirm a publish in time.
var ErrPublishTimeout = errors.New("publish timed out")

// FromSarama converts a consumed Kafka record. Keys and payloads are read
// with value.Parse; a record without a key has a nil Key.
func FromSarama(msg *sarama.ConsumerMessage) value.Message {
	out := value.Message{Target: msg.Topic, Value: parseBytes(msg.Value)}
	if len(msg.Key) > 0 {
		out.Key = parseBytes(msg.Key)
	}
	return out
}

// ToSarama converts a message into a Kafka producer record.
func ToSarama(msg value.Message) (*sarama.ProducerMessage, error) {
	payload, err := encode(msg.Value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	record := &sarama.ProducerMessage{
		Topic: msg.Target,
		Value: sarama.ByteEncoder(payload),
	}
	if msg.Key != nil {
		key, err := encode(msg.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding key: %w", err)
		}
		record.Key = sarama.ByteEncoder(key)
	}
	return record, nil
}

// FromMQTT converts a received MQTT message. MQTT has no keys.
func FromMQTT(msg mqtt.Message) value.Message {
	return value.Message{Target: msg.Topic(), Value: parseBytes(msg.Payload())}
}

func parseBytes(b []byte) value.Value {
	v, err := value.Parse(string(b))
	if err != nil {
		return value.String(b)
	}
	return v
}

// encode renders a value as a wire payload: composites as JSON, scalars as
// their text.
func encode(v value.Value) ([]byte, error) {
	switch v.(type) {
	case nil:
		return nil, nil
	case *value.Object, value.List:
		return value.MarshalJSON(v)
	}
	return []byte(v.String()), nil
}

// Publisher sends messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg value.Message) error
}

// KafkaPublisher publishes through a sarama synchronous producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	log      *slog.Logger
}

// NewKafkaPublisher wraps producer. A nil logger discards output.
func NewKafkaPublisher(producer sarama.SyncProducer, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = logging.Nop()
	}
	return &KafkaPublisher{producer: producer, log: log}
}

// Publish sends msg and waits for the broker's acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, msg value.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := ToSarama(msg)
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(record)
	if err != nil {
		return fmt.Errorf("kafka publish to %s: %w", msg.Target, err)
	}
	p.log.Debug("published kafka message", "topic", msg.Target, "partition", partition, "offset", offset)
	return nil
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// MQTTClient is the publishing side of an MQTT client; mqtt.Client satisfies it.
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes through a paho client.
type MQTTPublisher struct {
	client  MQTTClient
	qos     byte
	timeout time.Duration
	log     *slog.Logger
	closer  func()
}

// NewMQTTPublisher wraps client. A nil logger discards output.
func NewMQTTPublisher(client MQTTClient, qos byte, timeout time.Duration, log *slog.Logger) *MQTTPublisher {
	if log == nil {
		log = logging.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTPublisher{client: client, qos: qos, timeout: timeout, log: log}
}

// Publish sends msg to the topic named by its target. Keys are dropped.
func (p *MQTTPublisher) Publish(ctx context.Context, msg value.Message) error {
	payload, err := encode(msg.Value)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	token := p.client.Publish(msg.Target, p.qos, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: mqtt topic %s", ErrPublishTimeout, msg.Target)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", msg.Target, err)
	}
	p.log.Debug("published mqtt message", "topic", msg.Target, "qos", p.qos)
	return nil
}

// Close disconnects a client opened by DialMQTT. Publishers wrapping a
// caller's client leave it connected.
func (p *MQTTPublisher) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*MQTTPublisher)(nil)
)
