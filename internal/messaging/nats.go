package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"registration-service/common/metrics"

	"github.com/nats-io/nats.go"
)

const (
	systemNATS = "nats"

	// KeyHeader carries the event key on NATS messages.
	KeyHeader = "Event-Key"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewNATSPublisher(url, subject string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("registration-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		timeout: orDefaultTimeout(timeout),
		metrics: m,
		logger:  logger,
	}, nil
}

// Publish sends value as JSON on the configured subject and waits for the
// server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, key string, value any) error {
	start := time.Now()
	err := p.publish(ctx, key, value)
	p.metrics.Messaging.RecordPublish(ctx, systemNATS, p.subject, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish to NATS", "subject", p.subject, "key", key, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message published to NATS", "subject", p.subject, "key", key)
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Header.Set(KeyHeader, key)
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	return nil
}

// Ping reports whether the connection to the server is up.
func (p *NATSPublisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("NATS connection is %s", p.conn.Status())
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

func orDefaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}
