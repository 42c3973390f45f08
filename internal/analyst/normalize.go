package analyst

import (
	"fmt"
	"strings"

	"veredito/internal/verdict"
)

// Model responses are duck-typed JSON: booleans arrive as strings, keys go
// missing, older prompt revisions used the Portuguese field names. Each
// field resolves through a primary key, a legacy fallback key and a
// default, in that order.

const defaultFix = "Revisar a conversa e acionar a equipe de atendimento humano."

var affirmatives = map[string]bool{
	"true": true, "yes": true, "sim": true, "1": true,
}

// normalizeResponse coerces a parsed model object into a canonical Verdict.
func normalizeResponse(obj map[string]any) verdict.Verdict {
	required := coerceBool(firstOf(obj, "had_need_to_transfer", "acao_necessaria"))

	v := verdict.Verdict{
		ActionRequired: required,
		FailureType:    stringField(obj, verdict.NA, "failure_type", "tipo_falha"),
		TransferReason: stringField(obj, verdict.NA, "transfer_reason", "motivo_transbordo"),
		Description:    stringField(obj, "Sem descrição", "description", "descricao"),
		SuggestedFix:   stringField(obj, verdict.NA, "suggested_fix", "acao_sugerida"),
	}

	if required {
		if v.FailureType == verdict.NA {
			v.FailureType = "Transbordo necessário"
		}
		if v.SuggestedFix == verdict.NA {
			v.SuggestedFix = defaultFix
		}
	} else {
		v.FailureType = verdict.NA
		// The policy forbids inventing a transfer reason when no transfer
		// happened; enforce it here instead of trusting the model.
		v.TransferReason = verdict.NA
	}

	return v.Normalize()
}

func firstOf(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if val, ok := obj[k]; ok && val != nil {
			return val
		}
	}
	return nil
}

func coerceBool(val any) bool {
	switch b := val.(type) {
	case bool:
		return b
	case string:
		return affirmatives[strings.ToLower(strings.TrimSpace(b))]
	case float64:
		return b != 0
	default:
		return false
	}
}

func stringField(obj map[string]any, def string, keys ...string) string {
	val := firstOf(obj, keys...)
	if val == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", val))
	if s == "" || strings.EqualFold(s, "null") {
		return def
	}
	return s
}
