package message

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttDisconnectQuiesce is how long Close waits for in-flight MQTT work, in
// milliseconds.
const mqttDisconnectQuiesce = 250

// DialKafka connects a synchronous producer to brokers. Publishes wait for
// every in-sync replica.
func DialKafka(brokers []string, clientID string, log *slog.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka %v: %w", brokers, err)
	}
	return NewKafkaPublisher(producer, log), nil
}

// DialMQTT connects to broker, for example "tcp://localhost:1883", and
// returns a publisher that owns the connection.
func DialMQTT(broker, clientID string, qos byte, timeout time.Duration, log *slog.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("%w: connecting to mqtt %s", ErrPublishTimeout, broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt %s: %w", broker, err)
	}

	p := NewMQTTPublisher(client, qos, timeout, log)
	p.closer = func() { client.Disconnect(mqttDisconnectQuiesce) }
	return p, nil
}
