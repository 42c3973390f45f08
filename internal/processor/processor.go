// Package processor orchestrates the service-mode pipeline: transcript
// event in, verdict out, persisted and announced.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"veredito/internal/bus"
	"veredito/internal/verdict"
)

// Classifier scores one transcript.
type Classifier func(ctx context.Context, transcript string) verdict.Verdict

// VerdictWriter persists verdicts. Satisfied by *store.Store.
type VerdictWriter interface {
	WriteVerdict(ctx context.Context, conversationID, engine string, v verdict.Verdict) (uuid.UUID, error)
}

// Publisher announces events. Satisfied by *bus.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

type Processor struct {
	engines       map[string]Classifier
	defaultEngine string
	store         VerdictWriter
	bus           Publisher
	logger        *slog.Logger
}

func New(engines map[string]Classifier, defaultEngine string, st VerdictWriter, pub Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		engines:       engines,
		defaultEngine: defaultEngine,
		store:         st,
		bus:           pub,
		logger:        logger,
	}
}

// HandleTranscript is the NATS handler for whizz.transcript.received.
// Every dropped event leaves a logged reason.
func (p *Processor) HandleTranscript(subject string, data []byte) {
	ctx := context.Background()

	var evt bus.TranscriptEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "error", err)
		return
	}

	if strings.TrimSpace(evt.Transcript) == "" {
		p.logger.Warn("dropping event with empty transcript", "conversation_id", evt.ConversationID)
		return
	}

	engine := evt.Engine
	if engine == "" {
		engine = p.defaultEngine
	}
	classify, ok := p.engines[engine]
	if !ok {
		p.logger.Error("unknown engine requested", "engine", engine, "conversation_id", evt.ConversationID)
		return
	}

	p.logger.Info("processing transcript",
		"conversation_id", evt.ConversationID,
		"source", evt.Source,
		"engine", engine,
	)

	v := classify(ctx, evt.Transcript).Normalize()

	var id uuid.UUID
	if p.store != nil {
		var err error
		id, err = p.store.WriteVerdict(ctx, evt.ConversationID, engine, v)
		if err != nil {
			p.logger.Error("failed to persist verdict", "conversation_id", evt.ConversationID, "error", err)
		}
	}

	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectVerdictCreated, bus.VerdictEvent{
			ConversationID: evt.ConversationID,
			VerdictID:      id.String(),
			Engine:         engine,
			ActionRequired: v.ActionRequired,
			FailureType:    v.FailureType,
			TransferReason: v.TransferReason,
		}); err != nil {
			p.logger.Error("failed to publish verdict", "conversation_id", evt.ConversationID, "error", err)
		}
	}

	p.logger.Info("transcript processed",
		"conversation_id", evt.ConversationID,
		"engine", engine,
		"action_required", v.ActionRequired,
		"failure_type", v.FailureType,
	)
}
