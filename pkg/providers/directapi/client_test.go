package directapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/pkg/providers"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		Key:          "horven",
		Name:         "Horven",
		BaseURL:      srv.URL,
		Path:         "/pln/postpaid/inquiry",
		Timeout:      time.Second,
		APIKey:       "secret",
		APIKeyHeader: "x-api-key",
	}, WithHTTPClient(srv.Client()))
}

func TestSubmitSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pln/postpaid/inquiry", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "530000000001", body["customer_number"])

		w.Write([]byte(`{"status": true, "data": {"customer_name": "JOHN DOE", "bill_amount": 300000, "admin_fee": 2500}}`))
	})

	raw, err := c.Submit(context.Background(), "530000000001")
	require.NoError(t, err)

	rec, err := bill.Normalize(c.Mapping(), raw, "530000000001")
	require.NoError(t, err)
	assert.Equal(t, "JOHN DOE", rec.CustomerName)
	assert.Equal(t, int64(302500), rec.TotalPayment)
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    providers.ErrorKind
		message string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: `{}`, kind: providers.KindProtocol, message: "HTTP 500"},
		{name: "garbage", status: http.StatusOK, body: `<html>oops</html>`, kind: providers.KindProtocol, message: "invalid JSON response"},
		{name: "negative flag", status: http.StatusOK, body: `{"status": false, "message": "ID Pelanggan tidak ditemukan"}`, kind: providers.KindLogic, message: "ID Pelanggan tidak ditemukan"},
		{name: "negative without message", status: http.StatusOK, body: `{"success": false}`, kind: providers.KindProtocol, message: "negative status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Submit(context.Background(), "1")
			var pe *providers.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}

func TestSubmitTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Submit(ctx, "1")
	assert.Equal(t, providers.KindTimeout, providers.KindOf(err))
}

func TestSubmitTransportError(t *testing.T) {
	c := New(Config{Key: "down", BaseURL: "http://127.0.0.1:1", Path: "/x"})
	_, err := c.Submit(context.Background(), "1")
	assert.Equal(t, providers.KindTransport, providers.KindOf(err))
}

func TestPositive(t *testing.T) {
	assert.True(t, Positive([]byte(`{"status": true}`)))
	assert.True(t, Positive([]byte(`{"success": true}`)))
	assert.True(t, Positive([]byte(`{"status": "SUCCESS"}`)))
	assert.False(t, Positive([]byte(`{"status": "failed"}`)))
	assert.False(t, Positive([]byte(`{}`)))
}

func TestSpecAndOrigin(t *testing.T) {
	c := New(Config{Key: "alterra", Name: "Alterra", BaseURL: "https://api.alterra.id/", Path: "/product/pln-postpaid/inquiry", Timeout: 15 * time.Second})
	s := c.Spec()
	assert.Equal(t, "https://api.alterra.id/product/pln-postpaid/inquiry", s.URL)
	assert.Equal(t, providers.KindAPI, s.Kind)
	assert.Equal(t, "https://api.alterra.id", origin("https://api.alterra.id/v1"))
	assert.Equal(t, "", origin("not a url"))
}

func TestProbe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	// Any answer means the host is reachable.
	assert.NoError(t, c.Probe(context.Background()))

	down := New(Config{Key: "alterra", BaseURL: "http://127.0.0.1:1"})
	err := down.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, providers.KindTransport, providers.KindOf(err))
}
