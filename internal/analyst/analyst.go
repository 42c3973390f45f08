// Package analyst implements the remote-model classification path: prompt
// construction, the completion call with rate-limit retry, and the
// normalization of the model's loosely-typed JSON into a canonical Verdict.
//
// The one contract that matters to callers: Classify never returns an
// error. Provider failures, parse failures and rate-limit exhaustion all
// terminate in a well-formed Verdict carrying a diagnostic failure type, so
// a batch of thousands of transcripts survives any single bad item.
package analyst

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"veredito/internal/verdict"
)

const (
	minTranscriptLen = 10
	maxErrorLen      = 200
	maxSnippetLen    = 150
	temperature      = 0.1
)

type Analyst struct {
	provider Provider
	model    string
	logger   *slog.Logger

	// sleep is swapped out in tests to assert the backoff schedule.
	sleep func(time.Duration)
}

func New(provider Provider, model string, logger *slog.Logger) *Analyst {
	return &Analyst{
		provider: provider,
		model:    model,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Classify runs one transcript through the remote model and returns the
// canonical verdict. Blocking: the call and any backoff sleeps happen on
// the caller's goroutine.
func (a *Analyst) Classify(ctx context.Context, transcript string) verdict.Verdict {
	if a.provider == nil || a.model == "" {
		return verdict.Verdict{
			ActionRequired: true,
			FailureType:    "Erro de configuração",
			TransferReason: verdict.NA,
			Description:    "Provedor de completions ou modelo não configurado.",
			SuggestedFix:   "Configure a API key e o modelo antes de iniciar a análise.",
		}
	}

	if len(strings.TrimSpace(transcript)) < minTranscriptLen {
		return verdict.Verdict{
			ActionRequired: false,
			FailureType:    "Conversa muito curta",
			TransferReason: verdict.NA,
			Description:    "Conversa sem conteúdo suficiente para análise",
			SuggestedFix:   verdict.NA,
		}
	}

	req := CompletionRequest{
		Model:       a.model,
		System:      systemInstruction,
		Prompt:      BuildPrompt(transcript),
		Temperature: temperature,
		JSONMode:    true,
	}

	raw, errVerdict, ok := a.complete(ctx, req)
	if !ok {
		return errVerdict
	}

	if strings.TrimSpace(raw) == "" {
		return verdict.Verdict{
			ActionRequired: true,
			FailureType:    "Erro na API",
			TransferReason: verdict.NA,
			Description:    "O modelo não retornou uma resposta válida",
			SuggestedFix:   defaultFix,
		}
	}

	obj, parsed := ExtractJSON(raw)
	if !parsed {
		return verdict.Verdict{
			ActionRequired: true,
			FailureType:    "Erro ao processar resposta",
			TransferReason: verdict.NA,
			Description:    "Erro ao extrair JSON. Resposta: " + truncate(raw, maxSnippetLen),
			SuggestedFix:   defaultFix,
		}
	}

	return normalizeResponse(obj)
}

// complete drives the retry state machine around the provider call. The
// third return value is false when the errVerdict should be surfaced.
func (a *Analyst) complete(ctx context.Context, req CompletionRequest) (string, verdict.Verdict, bool) {
	r := newRetrier()
	for attempt := 0; ; attempt++ {
		raw, err := a.provider.Complete(ctx, req)
		state, wait := r.next(attempt, err)

		switch state {
		case stateSuccess:
			return raw, verdict.Verdict{}, true

		case stateBackoff:
			a.logger.Warn("rate limited, backing off",
				"attempt", attempt+1,
				"wait", wait.String(),
			)
			a.sleep(wait)

		case stateExhausted:
			a.logger.Error("rate limit retries exhausted", "attempts", maxAttempts)
			return "", verdict.Verdict{
				ActionRequired: true,
				FailureType:    "Rate limit excedido",
				TransferReason: verdict.NA,
				Description: "Rate limit da API excedido após 5 tentativas. Soluções: " +
					"1) Aumente o delay entre requisições, " +
					"2) Adicione créditos/quota na sua conta, " +
					"3) Aguarde alguns minutos e tente novamente.",
				SuggestedFix: "Reduzir a taxa de requisições e reexecutar a análise.",
			}, false

		case stateNonRetryable:
			a.logger.Error("provider call failed", "error", err)
			return "", verdict.Verdict{
				ActionRequired: true,
				FailureType:    "Erro na análise",
				TransferReason: verdict.NA,
				Description:    "Erro na análise: " + truncate(err.Error(), maxErrorLen),
				SuggestedFix:   verdict.NA,
			}, false
		}
	}
}

// truncate caps s at n runes; responses and error chains are pt-BR text,
// so byte slicing could split a rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
