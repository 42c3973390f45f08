package batch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"veredito/internal/ingest"
	"veredito/internal/verdict"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(classify Classifier, cfg Config) (*Runner, *[]time.Duration) {
	r := NewRunner(classify, cfg, testLogger())
	var sleeps []time.Duration
	r.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return r, &sleeps
}

func convs(n int) []ingest.Conversation {
	out := make([]ingest.Conversation, n)
	for i := range out {
		out[i] = ingest.Conversation{ID: i + 1, Transcript: "Cliente: conversa de teste numero suficiente"}
	}
	return out
}

func staticClassifier(v verdict.Verdict) Classifier {
	return func(context.Context, string) verdict.Verdict { return v }
}

func TestRun_DelayBetweenCallsButNotAfterLast(t *testing.T) {
	r, sleeps := newTestRunner(staticClassifier(verdict.Verdict{}), Config{Delay: 5 * time.Second})

	rows, sum, err := r.Run(context.Background(), convs(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 3 || sum.Processed != 3 {
		t.Errorf("rows=%d processed=%d, want 3", len(rows), sum.Processed)
	}
	if len(*sleeps) != 2 {
		t.Errorf("slept %d times, want 2 (no pause after final item)", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 5*time.Second {
			t.Errorf("sleep = %s, want 5s", d)
		}
	}
}

func TestRun_ZeroDelayNeverSleeps(t *testing.T) {
	r, sleeps := newTestRunner(staticClassifier(verdict.Verdict{}), Config{})

	if _, _, err := r.Run(context.Background(), convs(4)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(*sleeps))
	}
}

func TestRun_LimitCapsWork(t *testing.T) {
	calls := 0
	classify := func(context.Context, string) verdict.Verdict {
		calls++
		return verdict.Verdict{}
	}
	r, _ := newTestRunner(classify, Config{Limit: 2})

	rows, sum, err := r.Run(context.Background(), convs(5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 2 || len(rows) != 2 || sum.Processed != 2 {
		t.Errorf("calls=%d rows=%d processed=%d, want 2 each", calls, len(rows), sum.Processed)
	}
}

func TestRun_SummaryCounts(t *testing.T) {
	verdicts := []verdict.Verdict{
		{ActionRequired: true, FailureType: "Looping do bot"},
		{FailureType: "N/A"},
		{ActionRequired: true, FailureType: "Erro na API"},
	}
	i := 0
	classify := func(context.Context, string) verdict.Verdict {
		v := verdicts[i]
		i++
		return v
	}
	r, _ := newTestRunner(classify, Config{})

	_, sum, err := r.Run(context.Background(), convs(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 3 {
		t.Errorf("processed = %d", sum.Processed)
	}
	if sum.ActionRequired != 2 {
		t.Errorf("action required = %d, want 2", sum.ActionRequired)
	}
	if sum.Errors != 1 {
		t.Errorf("errors = %d, want 1", sum.Errors)
	}
}

func TestRun_ContextCancelReturnsPartialRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	classify := func(context.Context, string) verdict.Verdict {
		calls++
		if calls == 2 {
			cancel()
		}
		return verdict.Verdict{}
	}
	r, _ := newTestRunner(classify, Config{})

	rows, sum, err := r.Run(ctx, convs(5))
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(rows) != 2 || sum.Processed != 2 {
		t.Errorf("rows=%d processed=%d, want 2 finished before cancel", len(rows), sum.Processed)
	}
}
