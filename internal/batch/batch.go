// Package batch runs a classifier sequentially over a set of ingested
// conversations, pacing remote calls to stay under provider rate limits.
package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"veredito/internal/ingest"
	"veredito/internal/report"
	"veredito/internal/verdict"
)

// Classifier scores one transcript. Both engines satisfy this shape.
type Classifier func(ctx context.Context, transcript string) verdict.Verdict

// Config holds the run parameters.
type Config struct {
	// Delay is slept after each classification except the last. Zero
	// disables pacing, which is what the local engine uses.
	Delay time.Duration
	// Limit caps the number of conversations processed; zero means all.
	Limit int
}

// Summary is the per-run accounting.
type Summary struct {
	Processed      int
	ActionRequired int
	Errors         int
}

type Runner struct {
	classify Classifier
	cfg      Config
	logger   *slog.Logger
	sleep    func(time.Duration)
}

func NewRunner(classify Classifier, cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		classify: classify,
		cfg:      cfg,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Run classifies the conversations in order. Interruption via ctx returns
// the rows finished so far together with ctx.Err().
func (r *Runner) Run(ctx context.Context, convs []ingest.Conversation) ([]report.Row, Summary, error) {
	if r.cfg.Limit > 0 && len(convs) > r.cfg.Limit {
		convs = convs[:r.cfg.Limit]
	}

	var rows []report.Row
	var sum Summary

	for i, conv := range convs {
		if err := ctx.Err(); err != nil {
			r.logger.Info("batch interrupted", "processed", sum.Processed, "remaining", len(convs)-i)
			return rows, sum, err
		}

		r.logger.Info("classifying conversation", "id", conv.ID, "progress", i+1, "total", len(convs))

		v := r.classify(ctx, conv.Transcript).Normalize()
		rows = append(rows, report.Row{
			ConversationID: conv.ID,
			Verdict:        v,
			Transcript:     conv.Transcript,
		})

		sum.Processed++
		if v.ActionRequired {
			sum.ActionRequired++
		}
		if strings.HasPrefix(v.FailureType, "Erro") {
			sum.Errors++
		}

		if r.cfg.Delay > 0 && i < len(convs)-1 {
			r.sleep(r.cfg.Delay)
		}
	}

	r.logger.Info("batch complete",
		"processed", sum.Processed,
		"action_required", sum.ActionRequired,
		"errors", sum.Errors,
	)
	return rows, sum, nil
}
