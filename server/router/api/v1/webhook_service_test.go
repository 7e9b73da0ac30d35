package v1

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppWebhook_FieldSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "fonnte style", body: `{"sender":"6281234567890","message":"berapa harga paket?"}`},
		{name: "generic style", body: `{"from":"6281234567890","text":"berapa harga paket?"}`},
		{name: "indonesian keys", body: `{"phone":"6281234567890","pesan":"berapa harga paket?"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, notifier := newTestService(t, "Paket Hemat mulai Rp 25.000.000, Kak.")
			e := echo.New()
			svc.Register(e)

			rec := doRequest(e, http.MethodPost, "/webhooks/whatsapp", tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp["status"])
			assert.Equal(t, "Paket Hemat mulai Rp 25.000.000, Kak.", resp["replyText"])

			require.Len(t, notifier.sent, 1, "reply goes back over whatsapp")
			assert.Equal(t, "6281234567890", notifier.to[0])
		})
	}
}

func TestWhatsAppWebhook_MissingFields(t *testing.T) {
	svc, _ := newTestService(t, "ok")
	e := echo.New()
	svc.Register(e)

	tests := []struct {
		name string
		body string
	}{
		{name: "no sender", body: `{"message":"halo"}`},
		{name: "no message", body: `{"sender":"628123"}`},
		{name: "empty payload", body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/webhooks/whatsapp", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestWhatsAppWebhook_SenderIsContactFallback(t *testing.T) {
	svc, notifier := newTestService(t, "Mohon maaf atas pengalamannya, Kak.")
	e := echo.New()
	svc.Register(e)

	send := func(message string) {
		body, _ := json.Marshal(map[string]string{"sender": "6281234567890", "message": message})
		rec := doRequest(e, http.MethodPost, "/webhooks/whatsapp", string(body))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	send("saya kecewa dengan pelayanan kemarin")
	send("ya")
	// No explicit contact in the reply; the sender's own number is used.
	send("pakai nomor ini saja")

	var operatorMsg string
	for _, msg := range notifier.sent {
		if strings.Contains(msg, "ESKALASI") {
			operatorMsg = msg
		}
	}
	require.NotEmpty(t, operatorMsg, "operator notification expected")
	assert.Contains(t, operatorMsg, "Kontak:* 6281234567890")
}
