package advisor

import (
	"strings"

	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

// Intent is the kind of help a message asks for.
type Intent string

// Intents.
const (
	IntentSkinConsultation Intent = "skin_consultation"
	IntentProductRequest   Intent = "product_recommendation"
	IntentSmallTalk        Intent = "small_talk"
)

// ParseIntent maps a model label to an Intent.
func ParseIntent(label string) (Intent, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, in := range []Intent{IntentSkinConsultation, IntentProductRequest, IntentSmallTalk} {
		if strings.Contains(label, string(in)) {
			return in, true
		}
	}
	return "", false
}

var productKeywords = []string{"推荐", "产品", "买", "购买", "用什么", "哪款", "recommend", "product"}

// GuessIntent is the keyword fallback used when the model is unavailable.
func GuessIntent(message string) Intent {
	switch {
	case tagging.ContainsAny(message, productKeywords):
		return IntentProductRequest
	case tagging.DetectSkinType(message) != "",
		len(tagging.DetectConcerns(message)) > 0,
		strings.Contains(message, "皮肤"),
		strings.Contains(message, "肤"):
		return IntentSkinConsultation
	default:
		return IntentSmallTalk
	}
}

// WantsProducts reports whether the intent calls for recommendations.
func (i Intent) WantsProducts() bool { return i != IntentSmallTalk }
