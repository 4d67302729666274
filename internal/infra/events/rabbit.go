package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// durableなtopic exchangeへ送る。routing keyはイベント名
type RabbitTransport struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbitTransport(url, exchange string) (*RabbitTransport, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	//exchangeは接続時に宣言する
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitTransport{conn: conn, ch: ch, exchange: exchange}, nil
}

func (t *RabbitTransport) Send(ctx context.Context, name string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return t.ch.PublishWithContext(
		pubCtx,
		t.exchange,
		name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         name,
			Body:         body,
		},
	)
}

func (t *RabbitTransport) Close() error {
	if err := t.ch.Close(); err != nil {
		_ = t.conn.Close()
		return err
	}
	return t.conn.Close()
}
