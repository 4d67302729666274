// 設定されたブローカーへドメインイベントを送る。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderdesk/internal/config"
)

const producer = "orderdesk"

// エンコード済みのイベントをブローカーへ運ぶ
type Transport interface {
	Send(ctx context.Context, name string, body []byte) error
	Close() error
}

// payloadをEnvelopeに包んでTransportへ渡す
type Publisher struct {
	transport Transport
	now       func() time.Time
}

func NewPublisher(t Transport) *Publisher {
	return &Publisher{transport: t, now: time.Now}
}

// EVENT_BROKERでTransportを選ぶ
func New(cfg config.Config, log *slog.Logger) (*Publisher, error) {
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		t, err := NewRabbitTransport(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			return nil, err
		}
		return NewPublisher(t), nil
	case config.BrokerNATS:
		t, err := NewNATSTransport(cfg.NATSURL, cfg.EventsExchange)
		if err != nil {
			return nil, err
		}
		return NewPublisher(t), nil
	case config.BrokerNone:
		return NewPublisher(NewLogTransport(log)), nil
	}
	return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
}

func (p *Publisher) Publish(ctx context.Context, name, key string, payload any) error {
	env := NewEnvelope(producer, name, key, payload, p.now())
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := p.transport.Send(ctx, name, body); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.transport.Close()
}

// ログに出すだけ（EVENT_BROKER=none）
type LogTransport struct {
	log *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, name string, body []byte) error {
	t.log.DebugContext(ctx, "event", slog.String("event", name), slog.String("body", string(body)))
	return nil
}

func (t *LogTransport) Close() error { return nil }
