package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/Astemirdum/bookbuster/pkg/circuit_breaker"
)

const LendingTopic = "lending"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_TOPIC" default:"lending"`
}

func (c Config) Enabled() bool { return len(c.Addrs) > 0 }

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

// Publisher sends a message keyed by key; v is encoded as JSON.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close() error
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

func NewPublisher(producer sarama.SyncProducer, topic string) Publisher {
	if topic == "" {
		topic = LendingTopic
	}
	return &publisher{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (p *publisher) Publish(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

type nopPublisher struct{}

// NopPublisher drops every message. It stands in when no brokers are configured.
func NopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

func (nopPublisher) Close() error { return nil }
