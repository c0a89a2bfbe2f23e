// Package notify publishes download outcome events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"github.com/nats-io/nats.go"
)

// Event types.
const (
	TypeDownload    = "download"
	TypeRunFinished = "run.finished"
)

// Event is the JSON payload published for each outcome.
type Event struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Document   string    `json:"document,omitempty"`
	URL        string    `json:"url,omitempty"`
	LocalPath  string    `json:"local_path,omitempty"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Downloaded int       `json:"downloaded,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Conn is the subset of *nats.Conn used by NATSPublisher.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events as JSON on "<subject>.<type>".
type NATSPublisher struct {
	conn    Conn
	subject string
}

// Connect dials the NATS server and returns a publisher.
func Connect(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("linklocal"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", url).Build()
	}

	slog.Info("NATS publisher initialized", "url", url, "subject", subject)
	return NewNATSPublisher(conn, subject), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// Subject returns the subject an event of the given type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.subject + "." + eventType
}

// Publish marshals and publishes ev. The timestamp is set when empty.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to marshal event").Build()
	}

	if err := p.conn.Publish(p.Subject(ev.Type), data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to publish event").
			WithContext("subject", p.Subject(ev.Type)).Build()
	}

	if ev.Type == TypeRunFinished {
		if err := p.conn.FlushWithContext(ctx); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to flush events").Build()
		}
	}

	slog.Debug("Published event", "type", ev.Type, "url", ev.URL, "run_id", ev.RunID)
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
