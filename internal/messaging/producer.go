package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	commonmetrics "portfolio-service/common/metrics"
	"portfolio-service/internal/contact"
)

// Producer publishes stored submissions to a NATS subject.
type Producer struct {
	conn    *nats.Conn
	subject string
	metrics *commonmetrics.Metrics
	logger  *slog.Logger
	closed  chan struct{}
}

func NewProducer(url string, subject string, m *commonmetrics.Metrics, logger *slog.Logger) (*Producer, error) {
	closed := make(chan struct{})
	var closeOnce sync.Once
	nc, err := nats.Connect(url,
		nats.Name("portfolio-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			closeOnce.Do(func() { close(closed) })
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		metrics: m,
		logger:  logger,
		closed:  closed,
	}, nil
}

// NotifySubmitted satisfies contact.Notifier.
func (p *Producer) NotifySubmitted(ctx context.Context, event contact.SubmittedEvent) error {
	return p.SendMessage(ctx, event)
}

func (p *Producer) SendMessage(ctx context.Context, value any) error {
	start := time.Now()

	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	err = p.conn.Publish(p.subject, valueBytes)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", p.subject)
	return nil
}

// Close drains the connection and waits until every published message has
// been handed to the server, or until ctx is done.
func (p *Producer) Close(ctx context.Context) error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	select {
	case <-p.closed:
		p.logger.Info("NATS connection closed")
		return nil
	case <-ctx.Done():
		p.conn.Close()
		return fmt.Errorf("waiting for NATS drain: %w", ctx.Err())
	}
}
