// Package rules is the local rule engine: a deterministic, dependency-free
// classifier that scores a conversation with regex heuristics instead of a
// model call. It exists as a fallback and for offline/cheap triage, and
// mirrors the remote analyst's output contract through
// verdict.LocalVerdict.
package rules

import (
	"fmt"
	"strings"

	"veredito/internal/verdict"
)

const minTranscriptLen = 10

// Reason labels assigned by the first-match priority ladder.
const (
	ReasonCustomerRequest = "Solicitação do cliente"
	ReasonLooping         = "Looping eterno"
	ReasonDivergence      = "Divergência de status"
	ReasonTechnical       = "Erro técnico"
	ReasonFrustrated      = "Cliente frustrado"
)

// signals holds the independent boolean checks computed over one
// transcript before any priority rule is applied.
type signals struct {
	asksForHuman    bool
	looping         bool
	technicalError  bool
	frustrated      bool
	divergence      bool
	transferSeen    bool
	externalLink    bool
	prematureRating bool
}

// Classify scores one transcript. Pure and synchronous; any internal panic
// is converted into an explicit "Erro" verdict, so the function never
// fails past its boundary.
func Classify(transcript string) (out verdict.LocalVerdict) {
	defer func() {
		if r := recover(); r != nil {
			out = errorVerdict(fmt.Sprintf("%v", r))
		}
	}()

	if len(strings.TrimSpace(transcript)) < minTranscriptLen {
		return verdict.LocalVerdict{
			TransferNeeded:      verdict.No,
			TransferOccurred:    verdict.No,
			AgentActedCorrectly: verdict.Yes,
			TransferReason:      verdict.NA,
			MappedProblem:       "Conversa muito curta",
			NeedsAttention:      verdict.No,
			Observation:         "Conversa sem conteúdo suficiente para análise",
		}
	}

	lower := strings.ToLower(transcript)
	lines := strings.Split(transcript, "\n")
	sig := detect(lower, lines)

	needed, reason := transferNeed(sig)
	occurred := transferOccurred(sig)
	correct := agentActedCorrectly(sig)
	problem := mappedProblem(lower, sig)
	attention := needsAttention(sig, correct, needed)

	return verdict.LocalVerdict{
		TransferNeeded:      needed,
		TransferOccurred:    occurred,
		AgentActedCorrectly: correct,
		TransferReason:      reason,
		MappedProblem:       problem,
		NeedsAttention:      attention,
		Observation:         observation(lower, lines, sig, needed, reason, occurred, correct, problem, attention),
	}
}

func detect(lower string, lines []string) signals {
	return signals{
		asksForHuman:    asksForHuman.matches(lower),
		looping:         looping.matches(lower),
		technicalError:  technicalError.matches(lower),
		frustrated:      customerFrustrated.matches(lower),
		divergence:      statusDivergence.matches(lower),
		transferSeen:    transferAnnounced.matches(lower),
		externalLink:    externalLink.matches(lower),
		prematureRating: prematureRatingRequest(lines),
	}
}

// transferNeed applies the fixed first-match priority ladder. Only one
// reason is ever assigned even when several signals fire.
func transferNeed(sig signals) (needed, reason string) {
	switch {
	case sig.asksForHuman:
		return verdict.Yes, ReasonCustomerRequest
	case sig.looping:
		return verdict.Yes, ReasonLooping
	case sig.divergence:
		return verdict.Yes, ReasonDivergence
	case sig.technicalError:
		return verdict.Yes, ReasonTechnical
	case sig.frustrated:
		return verdict.Yes, ReasonFrustrated
	default:
		return verdict.No, verdict.NA
	}
}

// transferOccurred is true only when the bot announced a handoff AND the
// text carries no external-link/SAC reference. Pointing the customer at a
// link is not a transfer to the human queue.
func transferOccurred(sig signals) string {
	if sig.transferSeen && !sig.externalLink {
		return verdict.Yes
	}
	return verdict.No
}

func agentActedCorrectly(sig signals) string {
	if sig.looping || sig.technicalError || sig.divergence || sig.prematureRating {
		return verdict.No
	}
	return verdict.Yes
}

// prematureRatingRequest flags the bot asking for a 1-5 rating right after
// the customer typed descriptive free text (more than 20 chars within the
// preceding 3 lines), an intent-recognition failure.
func prematureRatingRequest(lines []string) bool {
	for i, line := range lines {
		low := strings.ToLower(line)
		if !ratingRequest.matches(low) || !isBotLine(low) {
			continue
		}
		start := i - 3
		if start < 0 {
			start = 0
		}
		for j := start; j < i; j++ {
			if strings.Contains(strings.ToLower(lines[j]), customerMarker) && len(lines[j]) > 20 {
				return true
			}
		}
		return false
	}
	return false
}

// mappedProblem runs the second first-match ladder over independent
// keyword categories, falling back to the already-computed signals.
func mappedProblem(lower string, sig signals) string {
	switch {
	case delayedOrder.matches(lower):
		return "Pedido atrasado"
	case wrongRecipient.matches(lower):
		return "Pedido entregue para outro"
	case exchangeQuestion.matches(lower):
		return "Dúvida Vale Troca"
	case toolFailure.matches(lower):
		return "Falha em acionar tools"
	case sig.looping:
		return "Looping do bot"
	case sig.technicalError:
		return "Erro técnico"
	case sig.divergence:
		return "Divergência de informações"
	default:
		return "Tudo certo"
	}
}

func needsAttention(sig signals, correct, needed string) string {
	if sig.looping || sig.technicalError || (correct == verdict.No && needed == verdict.Yes) {
		return verdict.Yes
	}
	return verdict.No
}

func isBotLine(lower string) bool {
	for _, marker := range botLineMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func errorVerdict(msg string) verdict.LocalVerdict {
	return verdict.LocalVerdict{
		TransferNeeded:      verdict.Err,
		TransferOccurred:    verdict.Err,
		AgentActedCorrectly: verdict.Err,
		TransferReason:      "Erro na análise: " + truncate(msg, 100),
		MappedProblem:       "Erro no processamento",
		NeedsAttention:      verdict.Yes,
		Observation:         "Erro ao analisar conversa: " + truncate(msg, 150),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
