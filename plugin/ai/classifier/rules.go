// Package classifier decides whether a turn needs a human handoff and reads
// the user's answer to a handoff offer.
package classifier

// EscalationTrigger is the category of a matched escalation rule.
type EscalationTrigger string

const (
	// TriggerHumanRequest: the user explicitly asked for a human agent.
	TriggerHumanRequest EscalationTrigger = "human_request"
	// TriggerComplaint: complaint or refund language.
	TriggerComplaint EscalationTrigger = "complaint"
	// TriggerCustomRequest: bespoke package vocabulary the catalog cannot serve.
	TriggerCustomRequest EscalationTrigger = "custom_request"
	// TriggerDraftOffer: the generated draft reply already offered a handoff.
	TriggerDraftOffer EscalationTrigger = "draft_offer"
)

// escalationRule maps one keyword to its trigger category. Keeping every
// trigger keyword in a single table per axis makes the vocabulary auditable
// without reading the orchestrator.
type escalationRule struct {
	keyword string
	trigger EscalationTrigger
}

// messageRules match against the user's message, lowercased.
var messageRules = []escalationRule{
	// Direct requests for a human.
	{"admin", TriggerHumanRequest},
	{"customer service", TriggerHumanRequest},
	{"bicara", TriggerHumanRequest},
	{"langsung", TriggerHumanRequest},
	{"manusia", TriggerHumanRequest},

	// Complaint language.
	{"komplain", TriggerComplaint},
	{"kecewa", TriggerComplaint},
	{"marah", TriggerComplaint},
	{"tidak puas", TriggerComplaint},
	{"refund", TriggerComplaint},
	{"batal", TriggerComplaint},
	{"keluhan", TriggerComplaint},
	{"masalah serius", TriggerComplaint},
	{"tidak profesional", TriggerComplaint},
	{"tertipu", TriggerComplaint},
	{"penipuan", TriggerComplaint},

	// Custom or bespoke request vocabulary.
	{"paket khusus", TriggerCustomRequest},
	{"custom package", TriggerCustomRequest},
	{"keluarga", TriggerCustomRequest},
	{"rombongan", TriggerCustomRequest},
	{"mobil pribadi", TriggerCustomRequest},
}

// draftOfferPhrases match against the generated draft reply, lowercased.
// They catch the model volunteering a handoff on its own.
var draftOfferPhrases = []string{
	"meneruskan ke admin",
	"tim kami akan membantu",
	"hubungi admin",
	"permintaan khusus",
	"dikoordinasikan lebih lanjut",
	"tim kami ya",
}

// Affirmation and negation vocabulary for confirm/deny turns. Short common
// replies are resolved here without an AI call.
var affirmWords = []string{
	"ya", "iya", "boleh", "ok", "oke", "okeh", "baik", "siap",
	"silakan", "lanjutkan", "tolong", "mau", "setuju", "urus saja", "gas",
}

var negateWords = []string{
	"tidak", "nggak", "enggak", "gak", "ga usah", "gausah",
	"jangan", "nanti", "belum", "skip",
}
