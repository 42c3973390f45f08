package rules

import (
	"fmt"
	"strings"

	"veredito/internal/verdict"
)

// problemNarratives maps each mapped-problem label to its report sentence.
var problemNarratives = map[string]string{
	"Pedido atrasado":            "PROBLEMA MAPEADO: PEDIDO ATRASADO - Cliente está aguardando entrega que excede o prazo esperado",
	"Pedido entregue para outro": "PROBLEMA MAPEADO: PEDIDO ENTREGUE EM ENDEREÇO/DESTINATÁRIO INCORRETO - situação de logística",
	"Dúvida Vale Troca":          "PROBLEMA MAPEADO: DÚVIDA SOBRE PROCESSO DE TROCA/DEVOLUÇÃO - cliente precisa de orientação sobre política de troca",
	"Falha em acionar tools":     "PROBLEMA MAPEADO: FALHA TÉCNICA - Bot não conseguiu acionar ferramentas/integrações necessárias para resolver a demanda",
	"Looping do bot":             "PROBLEMA MAPEADO: LOOPING DO BOT - Bot ficou preso em ciclo de respostas repetitivas, não avançando no atendimento",
	"Erro técnico":               "PROBLEMA MAPEADO: ERRO TÉCNICO - Falha no sistema ou no funcionamento do bot",
	"Divergência de informações": "PROBLEMA MAPEADO: DIVERGÊNCIA DE INFORMAÇÕES - Dados fornecidos pelo bot não correspondem à situação real do cliente",
}

// observation assembles the pipe-joined narrative from whichever signals
// fired, falling back to one of three templated summaries when no itemized
// detail applies.
func observation(lower string, lines []string, sig signals, needed, reason, occurred, correct, problem, attention string) string {
	var details []string

	if needed == verdict.Yes {
		td := []string{"TRANSBORDO NECESSÁRIO - Motivo: " + reason}

		if sig.asksForHuman {
			td = append(td, "Cliente solicitou explicitamente atendimento humano")
		}
		if sig.looping {
			td = append(td, loopDetail(lines))
		}
		if sig.divergence {
			td = append(td, divergenceDetail(lower))
		}
		if sig.technicalError {
			td = append(td, technicalDetail(lower))
		}
		if sig.frustrated {
			td = append(td, "Cliente demonstrou FRUSTRAÇÃO/INSATISFAÇÃO evidente durante a interação")
		}

		details = append(details, strings.Join(td, " | "))
	}

	if occurred == verdict.Yes {
		details = append(details, "Bot realizou TRANSFERÊNCIA para fila humana (ação correta)")
	} else if needed == verdict.Yes {
		if sig.externalLink {
			details = append(details, "PROBLEMA: Cliente precisava de transbordo, mas bot apenas direcionou para LINK EXTERNO/SAC ao invés de transferir para a fila humana diretamente")
		} else {
			details = append(details, "PROBLEMA: Cliente necessitava de transbordo mas NÃO FOI TRANSFERIDO pelo bot")
		}
	}

	if correct == verdict.No {
		var botProblems []string
		if sig.looping {
			botProblems = append(botProblems, "Bot entrou em LOOPING - repetiu mesmas respostas/mensagens, demonstrando falha no fluxo conversacional")
		}
		if sig.technicalError {
			botProblems = append(botProblems, "Bot apresentou ERRO TÉCNICO durante o atendimento")
		}
		if sig.prematureRating {
			botProblems = append(botProblems, "Bot solicitou AVALIAÇÃO (nota 1-5) quando cliente havia digitado TEXTO DESCRITIVO - falha no reconhecimento de intent/fluxo")
		}
		if sig.divergence {
			botProblems = append(botProblems, "Bot forneceu INFORMAÇÕES DIVERGENTES da realidade relatada pelo cliente")
		}
		// The generic sentence accompanies the rating detail; only the
		// three flow failures above suppress it.
		if !sig.looping && !sig.technicalError && !sig.divergence {
			botProblems = append(botProblems, "Bot não agiu de forma adequada para a situação do cliente")
		}
		details = append(details, "BOT AGIU INCORRETAMENTE: "+strings.Join(botProblems, " | "))
	}

	if narrative, ok := problemNarratives[problem]; ok {
		details = append(details, narrative)
	}

	if attention == verdict.Yes {
		details = append(details, "PRECISA ATENÇÃO ESPECIAL - Bug grave, looping ou falha crítica detectada")
	}

	if len(details) > 0 {
		return strings.Join(details, " | ")
	}

	// No itemized detail fired; fall back to a templated summary.
	switch {
	case needed == verdict.Yes:
		action := "não transferiu para fila humana"
		if occurred == verdict.Yes {
			action = "transferiu corretamente"
		}
		return fmt.Sprintf("Transbordo necessário: %s. Problema identificado: %s. Bot %s.", reason, problem, action)
	case problem != "Tudo certo":
		return fmt.Sprintf("Problema identificado: %s. Bot agiu corretamente durante o atendimento, mas há questão específica a resolver relacionada ao problema mapeado.", problem)
	default:
		return "Conversa processada normalmente. Bot forneceu informações adequadas, atendeu corretamente e cliente não demonstrou necessidade de transbordo ou problemas críticos."
	}
}

// loopDetail tries to quantify loop severity by counting consecutive
// bot-authored lines that share more than 5 words.
func loopDetail(lines []string) string {
	var botLines []string
	for _, line := range lines {
		if isBotLine(strings.ToLower(line)) {
			botLines = append(botLines, line)
		}
	}

	if len(botLines) <= 3 {
		return "Bot entrou em looping - padrões de repetição detectados. Cliente mencionou que bot não está entendendo ou repete respostas."
	}

	similar := 0
	for i := 0; i < len(botLines)-1; i++ {
		if len(strings.Fields(botLines[i])) <= 5 {
			continue
		}
		if sharedWords(botLines[i], botLines[i+1]) > 5 {
			similar++
		}
	}

	if similar > 0 {
		return fmt.Sprintf("Bot entrou em looping: detectadas %d respostas repetitivas/conflitantes. Cliente relatou que o bot 'não entende' ou repete a mesma informação.", similar+1)
	}
	return "Bot entrou em looping - respostas repetitivas detectadas na conversa. Cliente indicou que bot repete mesma informação ou não avança no atendimento."
}

func divergenceDetail(lower string) string {
	switch {
	case notReceived.matches(lower):
		return "Cliente relatou que NÃO RECEBEU o pedido, mas sistema/bot indicou como entregue - DIVERGÊNCIA CRÍTICA detectada"
	case wrongProduct.matches(lower):
		return "Cliente recebeu PRODUTO/PEDIDO DIFERENTE do que solicitou - divergência entre pedido e entrega"
	case wrongInfo.matches(lower):
		return "Cliente contestou informações do bot dizendo que estão ERRADAS - divergência de dados/fatos"
	default:
		return "Divergência entre a situação relatada pelo cliente e as informações do bot"
	}
}

func technicalDetail(lower string) string {
	switch {
	case brokenLink.matches(lower):
		return "ERRO TÉCNICO: Cliente relatou que link/formulário indicado pelo bot NÃO FUNCIONA. Bot direcionou para recurso inacessível."
	case systemError.matches(lower):
		return "ERRO TÉCNICO detectado no sistema/bot durante a conversa"
	default:
		return "Falha técnica ou erro na operação do bot detectado"
	}
}

func sharedWords(a, b string) int {
	wordsA := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		wordsA[w] = true
	}
	shared := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if wordsA[w] && !seen[w] {
			shared++
			seen[w] = true
		}
	}
	return shared
}
