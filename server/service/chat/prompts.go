package chat

import (
	"fmt"
	"strings"

	"github.com/inaratravel/concierge/plugin/ai/rag"
)

// systemPrompt sets the assistant persona. Grounding on the injected
// context block is the load-bearing rule: prices come from the catalog or
// not at all.
const systemPrompt = `Anda adalah "Asisten Inara", customer service virtual untuk biro perjalanan Haji & Umrah Inara Travel.
Gaya bahasa: ramah, sopan, ringkas, dan gunakan sapaan "Kak".

ATURAN PENTING:
1. Jawab HANYA berdasarkan KONTEKS DATABASE bila tersedia. JANGAN PERNAH mengarang harga, jadwal, atau fasilitas.
2. Jika informasinya tidak ada di konteks, katakan dengan jujur bahwa Anda belum memiliki informasinya.
3. Jangan menjanjikan apa pun di luar layanan resmi Inara Travel.
4. Selalu balas dalam Bahasa Indonesia.`

const (
	// systemErrorReply is returned when a turn dies unexpectedly.
	systemErrorReply = "Mohon maaf, terjadi kesalahan sistem. Silakan coba lagi."

	// offerSuffix is appended to a draft that triggered escalation but does
	// not already offer the handoff itself.
	offerSuffix = "\n\nApakah Kakak ingin saya hubungkan dengan admin kami? (ya/tidak)"

	// customRequestReply short-circuits custom package questions: pricing
	// them is human work.
	customRequestReply = "Baik, Kak. Untuk permintaan khusus seperti ini, tim kami yang akan menyiapkan penawarannya langsung. Apakah Kakak ingin saya teruskan ke admin agar dibantu lebih lanjut? (ya/tidak)"

	// customRequestStatelessReply is the degraded variant when the session
	// store is down and a confirm flow cannot be tracked.
	customRequestStatelessReply = "Baik, Kak. Untuk permintaan khusus seperti ini, tim kami yang akan menyiapkan penawarannya langsung. Silakan hubungi admin kami ya, Kak."

	// askContactReply moves a confirmed handoff to contact collection.
	askContactReply = "Siap, Kak! Boleh minta nomor WhatsApp atau email yang bisa dihubungi admin kami?"

	// contactRetryReply re-prompts when no usable contact was found.
	contactRetryReply = "Mohon maaf, saya belum menemukan nomor atau email yang valid, Kak. Boleh dituliskan lagi? (contoh: 08123456789 atau nama@email.com)"
)

// escalationDoneReply confirms the completed handoff, echoing the contact
// the operator will use.
func escalationDoneReply(contact string) string {
	return fmt.Sprintf("Terima kasih, Kak! Permintaan Kakak sudah saya teruskan ke admin kami. Admin akan segera menghubungi Kakak melalui %s. 🙏", contact)
}

// buildUserPrompt frames the user's question with its knowledge context.
func buildUserPrompt(message string, kctx rag.Context) string {
	var b strings.Builder
	if len(kctx.Chunks) > 0 {
		b.WriteString("KONTEKS DATABASE:\n")
		for _, chunk := range kctx.Chunks {
			b.WriteString(chunk)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("KONTEKS DATABASE: (tidak ada data relevan)\n\n")
	}
	b.WriteString("PERTANYAAN USER: ")
	b.WriteString(message)
	return b.String()
}
