// Package notify announces rendered pages on a NATS subject so downstream
// consumers (search indexers, CDN purgers) can react to a build.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
)

// Status is the result of a page within a build.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// PageEvent is published once per page and build.
type PageEvent struct {
	BuildID   string    `json:"build_id"`
	Page      string    `json:"page"`
	Status    Status    `json:"status"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends page events.
type Publisher interface {
	PublishPage(ctx context.Context, ev PageEvent) error
	Close() error
}

// NoopPublisher drops every event (default when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishPage(context.Context, PageEvent) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes page events as JSON messages.
type NATSPublisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("apidoc"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, ferrors.NotifyError("connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Retryable().
			Build()
	}
	logger.Info("NATS publisher connected", logfields.URL(url), logfields.Subject(subject))
	return newPublisher(nc, subject, logger), nil
}

func newPublisher(c conn, subject string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject, logger: logger}
}

// PublishPage sends one event. A zero timestamp is set to now.
func (p *NATSPublisher) PublishPage(ctx context.Context, ev PageEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "marshal page event").Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.NotifyError("publish page event").
			WithCause(err).
			WithContext("page", ev.Page).
			WithContext("subject", p.subject).
			Build()
	}
	p.logger.Debug("Published page event",
		logfields.Page(ev.Page),
		logfields.Subject(p.subject),
		slog.String("status", string(ev.Status)))
	return nil
}

// Flush waits until the server has acknowledged every published message.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.NotifyError("flush NATS connection").WithCause(err).Build()
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
