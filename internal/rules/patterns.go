package rules

import "regexp"

// category is one named semantic signal: a set of alternative regular
// expressions matched against the lower-cased transcript. A category fires
// when any of its patterns matches.
type category []*regexp.Regexp

func compile(patterns ...string) category {
	c := make(category, len(patterns))
	for i, p := range patterns {
		c[i] = regexp.MustCompile(p)
	}
	return c
}

func (c category) matches(text string) bool {
	for _, re := range c {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Signal categories. All matching happens on the lower-cased full text, so
// the patterns are written lower-case.
var (
	asksForHuman = compile(
		`falar\s+com\s+(?:uma?\s+)?(?:atendente|humano|pessoa|operador)`,
		`quero\s+(?:falar\s+)?com\s+(?:uma?\s+)?(?:atendente|humano|pessoa)`,
		`preciso\s+de\s+(?:uma?\s+)?(?:atendente|humano|pessoa)`,
		`atendente\s+(?:humano|pessoa)`,
		`transferir\s+para\s+(?:um\s+)?(?:atendente|humano|pessoa)`,
	)

	looping = compile(
		`(?:repete|repetiu|repetindo|loop)`,
		`mesma\s+(?:coisa|mensagem|resposta)`,
		`já\s+(?:falei|disse|respondi)`,
		`não\s+entende`,
	)

	technicalError = compile(
		`erro`,
		`não\s+funcionou`,
		`não\s+está\s+funcionando`,
		`bug`,
		`problema\s+técnico`,
		`falha`,
	)

	customerFrustrated = compile(
		`irritado|irritada`,
		`estou\s+bravo|estou\s+brava`,
		`não\s+resolveu`,
		`incompetente`,
		`horrível|péssimo`,
	)

	statusDivergence = compile(
		`não\s+recebi`,
		`não\s+foi\s+entregue`,
		`está\s+errado`,
		`não\s+é\s+isso`,
		`diferente\s+do\s+que\s+comprei`,
		`pedido\s+errado`,
	)

	// Bot announcing a handoff to the human queue. An external link or SAC
	// reference is explicitly NOT a transfer even when phrased similarly.
	transferAnnounced = compile(
		`transferindo\s+para\s+(?:um\s+)?(?:atendente|humano|equipe)`,
		`vou\s+transferir\s+você`,
		`conectando\s+com\s+(?:um\s+)?atendente`,
	)

	externalLink = compile(
		`https?://`,
		`www\.`,
		`\.com\.br`,
		`formulário|formulario`,
		`sac|contato`,
		`troque\.app`,
	)

	ratingRequest = compile(`(?:avaliar|nota|avalie|de\s+1\s+a\s+5)`)

	// Mapped-problem keyword ladders.
	delayedOrder     = compile(`pedido\s+atrasado|atrasado|demora`)
	wrongRecipient   = compile(`entregue\s+para\s+outro|endereço\s+errado|destinatário`)
	exchangeQuestion = compile(`troca|vale\s+troca|devolução`)
	toolFailure      = compile(`ferramenta|tool|integração`)

	// Divergence sub-cases used only for the narrative observation.
	notReceived  = compile(`não\s+recebi|não\s+foi\s+entregue`)
	wrongProduct = compile(`pedido\s+errado|produto\s+errado|diferente\s+do\s+que\s+comprei`)
	wrongInfo    = compile(`está\s+errado|não\s+é\s+isso|informação\s+errada`)

	// Technical-error sub-cases, likewise narrative-only.
	brokenLink  = compile(`link\s+não\s+funciona|site\s+não\s+abre|não\s+consegui\s+acessar`)
	systemError = compile(`erro\s+técnico|bug|falha\s+do\s+sistema|sistema\s+não\s+funciona`)
)

// botLineMarkers identify bot-authored lines; customerMarker identifies
// customer lines. Transcripts prefix lines with a speaker token by
// convention, but no schema is enforced, so this stays a substring check.
var botLineMarkers = []string{"bot", "atendente", "whizz"}

const customerMarker = "cliente"
