package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// subjectは "<prefix>.<イベント名>"
type NATSTransport struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSTransport(url, prefix string) (*NATSTransport, error) {
	conn, err := nats.Connect(url, nats.Name("orderdesk"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSTransport{conn: conn, prefix: prefix}, nil
}

func (t *NATSTransport) Subject(name string) string {
	if t.prefix == "" {
		return name
	}
	return t.prefix + "." + name
}

func (t *NATSTransport) Send(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.conn.Publish(t.Subject(name), body)
}

func (t *NATSTransport) Close() error {
	return t.conn.Drain()
}
