package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/cron"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/simulator"
)

type inquirerFunc func(ctx context.Context, n string) inquiry.Result

func (f inquirerFunc) Inquire(ctx context.Context, n string) inquiry.Result { return f(ctx, n) }

type caps struct {
	scraper bool
	status  map[string]cron.Status
}

func (c caps) ScraperAvailable() bool         { return c.scraper }
func (c caps) Status() map[string]cron.Status { return c.status }

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestInquire_Success(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})

	rec, out := do(t, h, http.MethodPost, "/api/pln/postpaid", `{"customer_number":"531012345678"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SUCCESS", out["status"])
	assert.Equal(t, simulator.Key, out["source"])

	data := out["data"].(map[string]any)
	assert.Equal(t, "531012345678", data["nomor_id_pelanggan"])
	assert.EqualValues(t, 1210000, data["total_pembayaran_incl_fee"])
	assert.EqualValues(t, 4, data["jumlah_bulan"])
	assert.Len(t, data["rincian_tagihan"], 4)
}

func TestInquire_FailureShapes(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})

	rec, out := do(t, h, http.MethodPost, "/api/cek-tagihan-pln", `{"customer_number":"532000000000"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["status"])
	assert.Equal(t, "Tagihan sudah dibayar", out["message"])
	assert.NotContains(t, out, "data")

	rec, out = do(t, h, http.MethodPost, "/api/pln/postpaid", `{not json`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["status"])

	_, out = do(t, h, http.MethodPost, "/api/pln/postpaid", `{"customer_number":"  "}`)
	assert.Equal(t, inquiry.MsgRequired, out["message"])
}

func TestInquire_ErrorsListed(t *testing.T) {
	h := NewRouter(Options{Inquirer: inquirerFunc(func(ctx context.Context, n string) inquiry.Result {
		return inquiry.Failure(inquiry.MsgAllFailed, []string{"ppob: HTTP 500", "sepulsa: timeout"})
	})})

	_, out := do(t, h, http.MethodPost, "/api/pln/postpaid", `{"customer_number":"1"}`)
	assert.Equal(t, inquiry.MsgAllFailed, out["message"])
	assert.Equal(t, []any{"ppob: HTTP 500", "sepulsa: timeout"}, out["errors"])
}

func TestInquire_PanicBecomesFailure(t *testing.T) {
	h := NewRouter(Options{Inquirer: inquirerFunc(func(ctx context.Context, n string) inquiry.Result {
		panic("boom")
	})})

	rec, out := do(t, h, http.MethodPost, "/api/pln/postpaid", `{"customer_number":"1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["status"])
	assert.Equal(t, "Error: boom", out["message"])
}

func TestInquire_RequestTimeout(t *testing.T) {
	var deadline time.Time
	h := NewRouter(Options{
		RequestTimeout: 5 * time.Second,
		Inquirer: inquirerFunc(func(ctx context.Context, n string) inquiry.Result {
			deadline, _ = ctx.Deadline()
			return inquiry.Success("x", &bill.Record{CustomerNumber: n})
		}),
	})
	do(t, h, http.MethodPost, "/api/pln/postpaid", `{"customer_number":"1"}`)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestHealth(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New(), Capabilities: caps{scraper: true}})

	rec, out := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, true, out["scraper_available"])

	_, out = do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, rootMessage, out["message"])
}

func TestListProviders(t *testing.T) {
	reg, err := providers.NewRegistry(simulator.New())
	require.NoError(t, err)
	h := NewRouter(Options{
		Inquirer:     simulator.New(),
		Registry:     reg,
		Capabilities: caps{status: map[string]cron.Status{simulator.Key: {Up: true}}},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/providers", nil))
	var list []ProviderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, simulator.Key, list[0].Key)
	assert.Equal(t, providers.DefaultTimeout.Seconds(), list[0].TimeoutSecs)
	require.NotNil(t, list[0].Up)
	assert.True(t, *list[0].Up)
}

func TestSwaggerDoc(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})
	rec, out := do(t, h, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0", out["swagger"])
	assert.Contains(t, out["paths"], "/api/pln/postpaid")
}

func TestCORS(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})
	req := httptest.NewRequest(http.MethodOptions, "/api/pln/postpaid", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLedgerRoutesAbsentWithoutStore(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pln-customers", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
