package processor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"veredito/internal/bus"
	"veredito/internal/verdict"
)

type fakeStore struct {
	calls []struct {
		conversationID string
		engine         string
		v              verdict.Verdict
	}
	err error
}

func (f *fakeStore) WriteVerdict(ctx context.Context, conversationID, engine string, v verdict.Verdict) (uuid.UUID, error) {
	f.calls = append(f.calls, struct {
		conversationID string
		engine         string
		v              verdict.Verdict
	}{conversationID, engine, v})
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return uuid.New(), nil
}

type fakeBus struct {
	published []struct {
		subject string
		data    any
	}
}

func (f *fakeBus) Publish(subject string, data any) error {
	f.published = append(f.published, struct {
		subject string
		data    any
	}{subject, data})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(st *fakeStore, pb *fakeBus) *Processor {
	engines := map[string]Classifier{
		"local": func(_ context.Context, _ string) verdict.Verdict {
			return verdict.Verdict{
				ActionRequired: true,
				FailureType:    "Looping do bot",
				TransferReason: "Looping eterno",
				Description:    "detectado em teste",
				SuggestedFix:   "Revisar a conversa e acionar a equipe de atendimento humano.",
			}
		},
		"openai": func(_ context.Context, _ string) verdict.Verdict {
			return verdict.Verdict{FailureType: "N/A", TransferReason: "N/A"}
		},
	}
	return New(engines, "local", st, pb, testLogger())
}

func event(t *testing.T, evt bus.TranscriptEvent) []byte {
	t.Helper()
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func TestHandleTranscript_StoresAndPublishes(t *testing.T) {
	st := &fakeStore{}
	pb := &fakeBus{}
	p := newTestProcessor(st, pb)

	p.HandleTranscript(bus.SubjectTranscriptReceived, event(t, bus.TranscriptEvent{
		ConversationID: "conv-42",
		Transcript:     "Cliente: o bot repete tudo\nBot: como posso ajudar?",
	}))

	if len(st.calls) != 1 {
		t.Fatalf("store calls = %d, want 1", len(st.calls))
	}
	if st.calls[0].conversationID != "conv-42" || st.calls[0].engine != "local" {
		t.Errorf("stored %q/%q", st.calls[0].conversationID, st.calls[0].engine)
	}

	if len(pb.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pb.published))
	}
	if pb.published[0].subject != bus.SubjectVerdictCreated {
		t.Errorf("subject = %q", pb.published[0].subject)
	}
	evt, ok := pb.published[0].data.(bus.VerdictEvent)
	if !ok {
		t.Fatalf("payload type %T", pb.published[0].data)
	}
	if evt.ConversationID != "conv-42" || !evt.ActionRequired || evt.FailureType != "Looping do bot" {
		t.Errorf("event = %+v", evt)
	}
}

func TestHandleTranscript_EngineOverride(t *testing.T) {
	st := &fakeStore{}
	p := newTestProcessor(st, &fakeBus{})

	p.HandleTranscript(bus.SubjectTranscriptReceived, event(t, bus.TranscriptEvent{
		ConversationID: "conv-1",
		Transcript:     "Cliente: qual o status do pedido?",
		Engine:         "openai",
	}))

	if len(st.calls) != 1 || st.calls[0].engine != "openai" {
		t.Fatalf("store calls = %+v, want one openai call", st.calls)
	}
}

func TestHandleTranscript_EmptyTranscriptDropped(t *testing.T) {
	st := &fakeStore{}
	pb := &fakeBus{}
	p := newTestProcessor(st, pb)

	p.HandleTranscript(bus.SubjectTranscriptReceived, event(t, bus.TranscriptEvent{
		ConversationID: "conv-2",
		Transcript:     "   ",
	}))

	if len(st.calls) != 0 || len(pb.published) != 0 {
		t.Error("empty transcript must not be classified")
	}
}

func TestHandleTranscript_UnknownEngineDropped(t *testing.T) {
	st := &fakeStore{}
	p := newTestProcessor(st, &fakeBus{})

	p.HandleTranscript(bus.SubjectTranscriptReceived, event(t, bus.TranscriptEvent{
		ConversationID: "conv-3",
		Transcript:     "Cliente: alguma coisa por aqui",
		Engine:         "mystery",
	}))

	if len(st.calls) != 0 {
		t.Error("unknown engine must not reach the store")
	}
}

func TestHandleTranscript_MalformedPayloadDropped(t *testing.T) {
	st := &fakeStore{}
	p := newTestProcessor(st, &fakeBus{})

	p.HandleTranscript(bus.SubjectTranscriptReceived, []byte("{not json"))

	if len(st.calls) != 0 {
		t.Error("malformed payload must not be classified")
	}
}

func TestHandleTranscript_StoreFailureStillPublishes(t *testing.T) {
	st := &fakeStore{err: context.DeadlineExceeded}
	pb := &fakeBus{}
	p := newTestProcessor(st, pb)

	p.HandleTranscript(bus.SubjectTranscriptReceived, event(t, bus.TranscriptEvent{
		ConversationID: "conv-4",
		Transcript:     "Cliente: o sistema está com erro de novo",
	}))

	if len(pb.published) != 1 {
		t.Fatalf("published = %d, want verdict announced despite store failure", len(pb.published))
	}
}

func TestHandleTranscript_NoStoreNoBus(t *testing.T) {
	p := New(map[string]Classifier{
		"local": func(context.Context, string) verdict.Verdict { return verdict.Verdict{} },
	}, "local", nil, nil, testLogger())

	// Must not panic without optional sinks.
	p.HandleTranscript(bus.SubjectTranscriptReceived, []byte(`{"conversation_id":"c","transcript":"Cliente: olá, tudo bem com vocês?"}`))
}
