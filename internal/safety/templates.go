package safety

// crisisTemplate is a two-part canned reply: an immediate de-escalation
// line and a follow-up line pointing at alternatives and support.
type crisisTemplate struct {
	immediate    string
	alternatives string
}

var suicideTemplate = crisisTemplate{
	immediate:    "Мне очень жаль, что тебе так тяжело. Ты не один, и твоя жизнь важна.",
	alternatives: "Пожалуйста, поговори прямо сейчас со взрослым, которому доверяешь, или позвони на линию доверия 116 111 — там помогут бесплатно и анонимно.",
}

var selfHarmTemplate = crisisTemplate{
	immediate:    "Я слышу, что тебе сейчас очень больно. Причинять себе вред — не выход, и ты заслуживаешь поддержки.",
	alternatives: "Попробуй рассказать о своих чувствах человеку, которому доверяешь, или специалисту — линия доверия 116 111 работает круглосуточно.",
}

var abuseTemplate = crisisTemplate{
	immediate:    "То, что с тобой происходит, — не твоя вина, и ты не обязан справляться с этим в одиночку.",
	alternatives: "Расскажи об этом взрослому, которому доверяешь, — учителю, родственнику или школьному психологу. В опасной ситуации звони 112.",
}

// ResponseFor returns the canned two-part reply for a crisis type.
// Unrecognized types deliberately fall back to the suicide template,
// the most protective one.
func ResponseFor(ctype CrisisType) string {
	var t crisisTemplate
	switch ctype {
	case CrisisSelfHarm:
		t = selfHarmTemplate
	case CrisisAbuse:
		t = abuseTemplate
	case CrisisSuicide:
		t = suicideTemplate
	default:
		t = suicideTemplate
	}
	return t.immediate + " " + t.alternatives
}

// RecommendationFor returns the user-facing recommendation used by the
// crisis-check endpoint.
func RecommendationFor(ctype CrisisType) string {
	switch ctype {
	case CrisisSuicide:
		return "Немедленно обратитесь за помощью к взрослому или по телефону экстренных служб"
	case CrisisSelfHarm:
		return "Важно поговорить с кем-то, кому вы доверяете, или обратиться к специалисту"
	case CrisisAbuse:
		return "Расскажите о происходящем взрослому, которому доверяете, или в службу защиты детей"
	default:
		return "Если вы чувствуете себя в опасности, обратитесь за помощью"
	}
}
