package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
)

// NatsPublisher is satisfied by *nats.Conn.
type NatsPublisher interface {
	Publish(subj string, data []byte) error
}

// NatsNotifier publishes on <subject>.<audience>, e.g. transactions.status.admin.
type NatsNotifier struct {
	conn    NatsPublisher
	subject string
}

func NewNatsConn(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("ramp-reconciler"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func NewNatsNotifier(conn NatsPublisher, subject string) *NatsNotifier {
	return &NatsNotifier{conn: conn, subject: subject}
}

func (n *NatsNotifier) Notify(ctx context.Context, msg notifier.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := n.subject + "." + string(msg.Audience)
	if err = n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}
