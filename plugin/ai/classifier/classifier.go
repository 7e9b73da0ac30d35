package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/inaratravel/concierge/plugin/ai"
)

// Intent is the three-way outcome of a confirm/deny turn.
type Intent string

const (
	IntentAffirm Intent = "AFFIRM"
	IntentNegate Intent = "NEGATE"
	IntentOther  Intent = "OTHER"
)

// confirmPrompt asks a provider's classify model to read the user's reply to
// a handoff offer. The wording instructs it to answer with exactly one label.
const confirmPrompt = `Anda adalah classifier. User baru saja ditawari bantuan oleh admin ("...bagaimana?").
Tugas Anda adalah membaca balasan user dan menentukan niatnya.
FOKUS pada niat utama untuk 'melanjutkan', abaikan komentar tambahan seperti "menarik", "keren", "bagus".

- Jika user setuju/menerima tawaran (misal: "ya", "boleh", "ok", "tolong bantu", "siap", "lanjutkan", "urus saja", "okeh, menarik, silakan"), balas HANYA dengan kata: AFFIRM
- Jika user menolak tawaran (misal: "tidak", "nanti saja", "tidak usah", "gausah"), balas HANYA dengan kata: NEGATE
- Jika user bertanya hal lain / tidak jelas / ragu-ragu (misal: "kenapa?", "adminnya siapa?", "memang bisa?", "biayanya berapa?"), balas HANYA dengan kata: OTHER`

// maxKeywordTokens bounds the keyword-only path for confirm/deny turns.
// Longer replies carry too much context for bare word matching.
const maxKeywordTokens = 4

// Classifier combines rule tables with AI-backed intent classification.
type Classifier struct {
	gateway ai.CompletionGateway
}

// New creates a classifier over the given completion gateway.
func New(gateway ai.CompletionGateway) *Classifier {
	return &Classifier{gateway: gateway}
}

// ShouldEscalate checks whether a NORMAL-state turn needs a human handoff.
// Either signal source is sufficient: the user's message matching a trigger
// keyword, or the draft reply already offering a handoff. Returns the
// operator-facing reason on a match.
func (c *Classifier) ShouldEscalate(message, draftReply string) (bool, string) {
	messageLower := strings.ToLower(message)

	for _, rule := range messageRules {
		if !strings.Contains(messageLower, rule.keyword) {
			continue
		}
		var reason string
		switch rule.trigger {
		case TriggerComplaint:
			reason = fmt.Sprintf("User komplain (kata kunci: %q)", rule.keyword)
		case TriggerCustomRequest:
			reason = fmt.Sprintf("User meminta paket khusus (kata kunci: %q)", rule.keyword)
		default:
			reason = fmt.Sprintf("User meminta penanganan khusus (kata kunci: %q)", rule.keyword)
		}
		slog.Info("escalation triggered by message keyword", "keyword", rule.keyword, "trigger", rule.trigger)
		return true, reason
	}

	// Draft-reply scan only counts for messages longer than a short greeting,
	// so a bare "halo" never rides on a boilerplate draft phrase.
	if len(strings.Fields(messageLower)) > 2 {
		draftLower := strings.ToLower(draftReply)
		for _, phrase := range draftOfferPhrases {
			if strings.Contains(draftLower, phrase) {
				slog.Info("escalation triggered by draft reply", "phrase", phrase)
				return true, fmt.Sprintf("AI menawarkan eskalasi (frasa: %q)", phrase)
			}
		}
	}

	return false, ""
}

// DraftOffersHandoff reports whether the draft reply already mentions the
// admin team, so the orchestrator does not append a second offer.
func DraftOffersHandoff(draft string) bool {
	lower := strings.ToLower(draft)
	return strings.Contains(lower, "admin") || strings.Contains(lower, "tim kami")
}

// ConfirmIntent classifies the user's reply to a pending handoff offer.
// Cheap keyword matching resolves common short replies; only ambiguous input
// pays for an AI call. Provider exhaustion resolves to OTHER, never AFFIRM.
func (c *Classifier) ConfirmIntent(ctx context.Context, message string) Intent {
	if intent, ok := matchConfirmKeywords(message); ok {
		return intent
	}

	label := c.gateway.ClassifyLabel(ctx, confirmPrompt, message, string(IntentOther))
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, string(IntentAffirm)):
		return IntentAffirm
	case strings.Contains(upper, string(IntentNegate)):
		return IntentNegate
	}
	return IntentOther
}

// matchConfirmKeywords resolves short replies by vocabulary alone.
// Inconclusive when the reply is long, matches both axes, or matches neither.
func matchConfirmKeywords(message string) (Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if len(strings.Fields(lower)) > maxKeywordTokens {
		return IntentOther, false
	}

	affirm := matchesAny(lower, affirmWords)
	negate := matchesAny(lower, negateWords)
	switch {
	case affirm && !negate:
		return IntentAffirm, true
	case negate && !affirm:
		return IntentNegate, true
	}
	return IntentOther, false
}

// matchesAny matches multiword keywords as substrings and single words as
// whole tokens, so "ya" never fires inside "saya".
func matchesAny(lower string, keywords []string) bool {
	var tokens []string
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if tokens == nil {
			tokens = strings.FieldsFunc(lower, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
		}
		for _, tok := range tokens {
			if tok == kw {
				return true
			}
		}
	}
	return false
}
