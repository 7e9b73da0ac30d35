package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/inaratravel/concierge/internal/errors"
	"github.com/inaratravel/concierge/internal/observability"
	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/plugin/ai"
	"github.com/inaratravel/concierge/plugin/ai/classifier"
	"github.com/inaratravel/concierge/plugin/ai/dispatch"
	"github.com/inaratravel/concierge/plugin/ai/memory"
	"github.com/inaratravel/concierge/plugin/ai/rag"
	"github.com/inaratravel/concierge/plugin/ai/session"
	"github.com/inaratravel/concierge/server/service/chat"
	"github.com/inaratravel/concierge/store"
	"github.com/inaratravel/concierge/store/db"
)

type staticCatalog string

func (s staticCatalog) Current(context.Context) (string, error) {
	return string(s), nil
}

type recordingNotifier struct {
	to   []string
	sent []string
}

func (r *recordingNotifier) Send(_ context.Context, to, message string) error {
	r.to = append(r.to, to)
	r.sent = append(r.sent, message)
	return nil
}

func newTestService(t *testing.T, reply string) (*APIV1Service, *recordingNotifier) {
	t.Helper()

	prof := &profile.Profile{Mode: "dev", Driver: "sqlite", DSN: ":memory:", Version: "test"}
	driver, err := db.NewDBDriver(prof)
	require.NoError(t, err)
	st := store.New(driver, prof)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(sessions.Close)
	history := memory.NewShortTermHistory(8, time.Hour)
	t.Cleanup(history.Close)

	gw := ai.NewMockGateway(reply)
	notifier := &recordingNotifier{}
	metrics := observability.NewMetrics()
	engine := chat.NewEngine(
		gw,
		rag.NewRetriever(nil, nil, staticCatalog("DAFTAR PAKET RESMI SAAT INI:\n- Paket Hemat: Rp 25.000.000"), 3),
		classifier.New(gw),
		sessions,
		history,
		dispatch.NewDispatcher(st, notifier, "081234000111"),
		metrics,
		nil,
	)
	return NewAPIV1Service(prof, st, engine, metrics, notifier), notifier
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_HappyPath(t *testing.T) {
	svc, _ := newTestService(t, "Paket Hemat mulai Rp 25.000.000, Kak.")
	e := echo.New()
	svc.Register(e)

	rec := doRequest(e, http.MethodPost, "/api/v1/chat", `{"userId":"u1","message":"berapa harga paket?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "Paket Hemat mulai Rp 25.000.000, Kak.", resp.ReplyText)
	assert.Equal(t, rag.SourceCatalog, resp.Source)
	assert.False(t, resp.Escalated)
}

func TestHandleChat_Validation(t *testing.T) {
	svc, _ := newTestService(t, "ok")
	e := echo.New()
	svc.Register(e)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing user", body: `{"message":"halo"}`},
		{name: "missing message", body: `{"userId":"u1"}`},
		{name: "blank message", body: `{"userId":"u1","message":"   "}`},
		{name: "malformed json", body: `{"userId":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleChat_RateLimit(t *testing.T) {
	svc, _ := newTestService(t, "ok")
	e := echo.New()
	svc.Register(e)

	// Burst of 5 per user, then 429. Another user is unaffected.
	body := `{"userId":"spammer","message":"halo"}`
	var last int
	for i := 0; i < 6; i++ {
		last = doRequest(e, http.MethodPost, "/api/v1/chat", body).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	rec := doRequest(e, http.MethodPost, "/api/v1/chat", `{"userId":"calm","message":"halo"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPStatusPerErrorCode(t *testing.T) {
	tests := []struct {
		code errs.ErrorCode
		want int
	}{
		{code: errs.ErrCodeInvalidArgument, want: http.StatusBadRequest},
		{code: errs.ErrCodeRateLimitExceeded, want: http.StatusTooManyRequests},
		{code: errs.ErrCodeTimeout, want: http.StatusGatewayTimeout},
		{code: errs.ErrCodeStateUnavailable, want: http.StatusServiceUnavailable},
		{code: errs.ErrCodeProvidersExhausted, want: http.StatusServiceUnavailable},
		{code: errs.ErrCodeProviderFailed, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.code))
		})
	}
}

func TestHandleChat_EscalationRoundtripOverHTTP(t *testing.T) {
	svc, notifier := newTestService(t, "Mohon maaf atas pengalamannya, Kak.")
	e := echo.New()
	svc.Register(e)

	send := func(message string) ChatResponse {
		body := fmt.Sprintf(`{"userId":"u1","message":%q}`, message)
		rec := doRequest(e, http.MethodPost, "/api/v1/chat", body)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	offer := send("saya kecewa dengan pelayanan kemarin")
	assert.True(t, offer.Escalated)
	assert.Contains(t, offer.ReplyText, "hubungkan dengan admin")

	confirm := send("ya")
	assert.True(t, confirm.Escalated)

	done := send("08123456789")
	assert.True(t, done.Escalated)
	assert.Contains(t, done.ReplyText, "08123456789")
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "ESKALASI")
}

func TestHandleHealthz(t *testing.T) {
	svc, _ := newTestService(t, "ok")
	e := echo.New()
	svc.Register(e)

	rec := doRequest(e, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), "test")
}

func TestHandleMetrics(t *testing.T) {
	svc, _ := newTestService(t, "ok")
	e := echo.New()
	svc.Register(e)

	doRequest(e, http.MethodPost, "/api/v1/chat", `{"userId":"u1","message":"halo"}`)
	rec := doRequest(e, http.MethodGet, "/api/v1/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.EqualValues(t, 1, snapshot["request_total"])
}
