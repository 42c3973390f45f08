// Package bus wraps the NATS connection used to receive transcripts from
// the WHIZZ platform and to announce finished verdicts.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects exchanged with the rest of the platform.
const (
	SubjectTranscriptReceived = "whizz.transcript.received"
	SubjectVerdictCreated     = "whizz.verdict.created"
)

// TranscriptEvent is the payload of whizz.transcript.received.
type TranscriptEvent struct {
	ConversationID string `json:"conversation_id"`
	Transcript     string `json:"transcript"`
	Source         string `json:"source"`
	// Engine optionally forces "openai" or "local"; empty means the
	// service default.
	Engine string `json:"engine,omitempty"`
}

// VerdictEvent is the payload published on whizz.verdict.created.
type VerdictEvent struct {
	ConversationID string `json:"conversation_id"`
	VerdictID      string `json:"verdict_id"`
	Engine         string `json:"engine"`
	ActionRequired bool   `json:"acao_necessaria"`
	FailureType    string `json:"tipo_falha"`
	TransferReason string `json:"motivo_transbordo"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
