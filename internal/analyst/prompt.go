package analyst

import (
	"fmt"
	"strings"
)

// systemInstruction is sent as the system message on every call. The prompt
// body already carries the full policy; this line exists to keep the model
// from wrapping the JSON in prose.
const systemInstruction = `Você é um Auditor de Qualidade de Atendimento Automatizado (QA). Retorne APENAS JSON válido, sem texto adicional.`

// ReasonCodes is the closed enumeration of standardized transfer-reason
// codes the model must choose from. OUTROS is the catch-all.
var ReasonCodes = []string{
	"STATUS_PEDIDO_ATRASADO",
	"STATUS_PEDIDO_EXTRAVIADO",
	"STATUS_PEDIDO_NAO_RECEBIDO",
	"STATUS_DIVERGENTE",
	"ENTREGA_ENDERECO_INCORRETO",
	"ENTREGA_DESTINATARIO_INCORRETO",
	"PROBLEMA_TRANSPORTADORA",
	"TROCA_DEVOLUCAO_DUVIDA",
	"TROCA_DEVOLUCAO_FALHA_PROCESSO",
	"VALE_TROCA_NAO_RECEBIDO",
	"VALE_TROCA_DUVIDA",
	"REEMBOLSO_PENDENTE",
	"REEMBOLSO_NAO_RECEBIDO",
	"CODIGO_POSTAGEM_INDISPONIVEL",
	"PRODUTO_COM_DEFEITO",
	"CANCELAMENTO_SOLICITADO",
	"ALTERACAO_PEDIDO_SOLICITADA",
	"DUVIDA_PRE_VENDA",
	"SOLICITACAO_ATENDENTE",
	"CLIENTE_INSATISFEITO",
	"FALHA_IA_LOOP_OU_ALUCINACAO",
	"FALHA_IA_NAO_ENTENDEU_CLIENTE",
	"FALHA_IA_FERRAMENTA_INDISPONIVEL",
	"FALHA_TRANSBORDO_NAO_REALIZADO",
	"OUTROS",
}

const promptTemplate = `# Role

Você é um Auditor de Qualidade de Atendimento Automatizado (QA). Sua função é analisar conversas entre clientes e o agente de IA "WHIZZ PÓS-VENDAS". Você avalia o agente; você NUNCA é o agente.

# Escopo do Agente

Atribuições do agente (dentro do escopo):
- Consultar status do pedido.
- Orientar trocas e devoluções.
- Consultar ou emitir código de postagem e vale-trocas.

Fora do escopo do agente (recusar NÃO é falha):
- Cancelamentos de pedido.
- Alterações de pedido (endereço, itens, pagamento).
- Resolução ativa de atrasos de entrega.
- Dúvidas de pré-venda.

Se o agente recusou corretamente uma demanda fora do escopo, isso NÃO é uma falha do agente.

# Protocolo de Análise (siga internamente, NÃO inclua na resposta)

1. Verifique se houve de fato um transbordo (transferência para atendente humano) na conversa.
2. APENAS se houve transbordo, classifique a causa usando um dos motivos padronizados abaixo.
3. Decida se a causa foi uma falha evitável do agente ou uma limitação operacional legítima.
4. Marque "had_need_to_transfer": true SOMENTE para falhas evitáveis do agente.

# Regra de Prioridade

Se o cliente não recebeu o reembolso/vale, o agente informou corretamente o prazo de espera e o cliente insistiu, fazendo o agente repetir a mesma orientação: isso NÃO é loop e NÃO requer ação, mesmo que pareça repetição.

# Motivos Padronizados (use exatamente um destes códigos em "transfer_reason")

%s

# Formato de Resposta

Retorne APENAS um objeto JSON válido com os campos:

{
    "had_need_to_transfer": true ou false,
    "transfer_reason": "CODIGO_PADRONIZADO" ou null (null quando NÃO houve transbordo),
    "failure_type": "string" (resumo curto da falha, ou "N/A"),
    "description": "string" (explicação do problema encontrado ou confirmação de que não há problema),
    "suggested_fix": "string" (sugestão de correção, ou "N/A")
}

NUNCA atribua um "transfer_reason" se não houve transbordo na conversa.

CONVERSA A SER ANALISADA:
%s

IMPORTANTE: Retorne APENAS o JSON, sem nenhum texto adicional antes ou depois, sem cercas de código.`

// BuildPrompt renders the full instruction prompt for one transcript.
// Deterministic and side-effect free; the transcript is appended verbatim.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(ReasonCodes, "\n"), transcript)
}
