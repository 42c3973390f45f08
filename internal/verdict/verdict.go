// Package verdict defines the canonical classification records emitted for
// every analyzed conversation. Both engines (remote analyst and local rule
// engine) terminate in one of these records; neither ever surfaces an error
// to its caller, so downstream tabular consumers can rely on every field
// being populated.
package verdict

import "strings"

// Field values follow the pt-BR vocabulary of the audited WHIZZ PÓS-VENDAS
// agent. "N/A" is the universal not-applicable marker.
const (
	NA  = "N/A"
	Yes = "Sim"
	No  = "Não"
	Err = "Erro"
)

// Verdict is the flat record produced per conversation. JSON tags match the
// column names of the exported QA reports.
type Verdict struct {
	ActionRequired bool   `json:"acao_necessaria"`
	FailureType    string `json:"tipo_falha"`
	TransferReason string `json:"motivo_transbordo"`
	Description    string `json:"descricao"`
	SuggestedFix   string `json:"acao_sugerida"`
}

// LocalVerdict is the richer record computed by the rule engine. The
// Sim/Não fields are strings rather than booleans because the engine also
// degrades to "Erro" when an internal failure is caught.
type LocalVerdict struct {
	TransferNeeded      string `json:"necessidade_transbordo"`
	TransferOccurred    string `json:"transferencia"`
	AgentActedCorrectly string `json:"agente_agiu_corretamente"`
	TransferReason      string `json:"motivo_transbordo"`
	MappedProblem       string `json:"problema_mapeado"`
	NeedsAttention      string `json:"precisa_atencao"`
	Observation         string `json:"observacao"`
}

// ToVerdict maps the rule-engine record onto the canonical shape so both
// engines feed the same consumers. A transfer reason is carried over only
// when the engine actually flagged a transfer need, which preserves the
// never-fabricate invariant across the conversion.
func (lv LocalVerdict) ToVerdict() Verdict {
	v := Verdict{
		ActionRequired: lv.NeedsAttention == Yes,
		FailureType:    NA,
		TransferReason: NA,
		Description:    lv.Observation,
		SuggestedFix:   NA,
	}
	if lv.TransferNeeded == Yes {
		v.TransferReason = lv.TransferReason
	}
	if lv.NeedsAttention == Yes {
		v.FailureType = lv.MappedProblem
		v.SuggestedFix = "Revisar a conversa e acionar a equipe de atendimento humano."
	}
	if lv.TransferNeeded == Err {
		v.ActionRequired = true
		v.FailureType = "Erro no processamento"
	}
	return v
}

// Normalize fills blank fields with NA so no exported column is ever empty.
func (v Verdict) Normalize() Verdict {
	v.FailureType = orNA(v.FailureType)
	v.TransferReason = orNA(v.TransferReason)
	v.Description = orNA(v.Description)
	v.SuggestedFix = orNA(v.SuggestedFix)
	return v
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}
