package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inaratravel/concierge/plugin/ai"
)

func TestShouldEscalate_MessageKeywords(t *testing.T) {
	c := New(ai.NewMockGateway(""))

	tests := []struct {
		name     string
		message  string
		escalate bool
	}{
		{name: "asks for human", message: "saya mau bicara dengan manusia", escalate: true},
		{name: "asks for admin", message: "tolong sambungkan ke admin", escalate: true},
		{name: "complaint", message: "saya kecewa dengan pelayanan kemarin", escalate: true},
		{name: "refund", message: "bagaimana cara refund pembayaran saya?", escalate: true},
		{name: "fraud accusation", message: "ini penipuan ya?", escalate: true},
		{name: "custom package", message: "bisa buat paket khusus untuk kantor?", escalate: true},
		{name: "plain question", message: "jam berapa keberangkatan dari Jakarta?", escalate: false},
		{name: "greeting", message: "assalamualaikum", escalate: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := c.ShouldEscalate(tt.message, "jawaban biasa")
			assert.Equal(t, tt.escalate, got)
			if tt.escalate {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestShouldEscalate_DraftPhrases(t *testing.T) {
	c := New(ai.NewMockGateway(""))

	draft := "Maaf Kak, untuk itu saya akan meneruskan ke admin agar dibantu lebih lanjut."

	escalate, reason := c.ShouldEscalate("apakah ada paket umrah bulan depan untuk lansia?", draft)
	assert.True(t, escalate)
	assert.Contains(t, reason, "eskalasi")

	// Short greetings never escalate off a boilerplate draft.
	escalate, _ = c.ShouldEscalate("halo kak", draft)
	assert.False(t, escalate)
}

func TestDraftOffersHandoff(t *testing.T) {
	assert.True(t, DraftOffersHandoff("Akan saya teruskan ke admin ya Kak"))
	assert.True(t, DraftOffersHandoff("Tim kami akan membantu Kakak"))
	assert.False(t, DraftOffersHandoff("Paket Hemat mulai Rp 25.000.000"))
}

func TestConfirmIntent_Keywords(t *testing.T) {
	// The gateway must not be consulted for plain short replies.
	gw := ai.NewMockGateway("")
	c := New(gw)

	tests := []struct {
		message string
		want    Intent
	}{
		{message: "ya", want: IntentAffirm},
		{message: "boleh kak", want: IntentAffirm},
		{message: "gas", want: IntentAffirm},
		{message: "tidak", want: IntentNegate},
		{message: "ga usah", want: IntentNegate},
		{message: "nanti dulu", want: IntentNegate},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ConfirmIntent(context.Background(), tt.message))
		})
	}
	assert.Empty(t, gw.ClassifyCalls)
}

func TestConfirmIntent_WholeTokenMatching(t *testing.T) {
	gw := &ai.MockGateway{ClassifyReply: "OTHER"}
	c := New(gw)

	// "saya" contains "ya" as a substring but is not an affirmation.
	got := c.ConfirmIntent(context.Background(), "saya siapa")
	assert.Equal(t, IntentOther, got)
	assert.NotEmpty(t, gw.ClassifyCalls, "ambiguous reply should reach the gateway")
}

func TestConfirmIntent_AmbiguousGoesToGateway(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Intent
	}{
		{name: "affirm label", reply: "AFFIRM", want: IntentAffirm},
		{name: "negate label", reply: "NEGATE", want: IntentNegate},
		{name: "noisy affirm", reply: "Jawaban: AFFIRM.", want: IntentAffirm},
		{name: "garbage", reply: "mungkin", want: IntentOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&ai.MockGateway{ClassifyReply: tt.reply})
			got := c.ConfirmIntent(context.Background(), "okeh menarik juga, gimana ya, coba deh")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmIntent_ProvidersDownResolvesOther(t *testing.T) {
	// A mock with no scripted reply echoes the fallback label, which is what
	// an exhausted gateway does.
	c := New(ai.NewMockGateway(""))

	got := c.ConfirmIntent(context.Background(), "hmm gimana menurutmu, jelaskan dulu dong")
	assert.Equal(t, IntentOther, got)
}

func TestConfirmIntent_ConflictingKeywords(t *testing.T) {
	gw := &ai.MockGateway{ClassifyReply: "NEGATE"}
	c := New(gw)

	// "ya tidak usah" matches both axes; vocabulary alone cannot decide.
	got := c.ConfirmIntent(context.Background(), "ya tidak usah")
	assert.Equal(t, IntentNegate, got)
	assert.NotEmpty(t, gw.ClassifyCalls)
}
