package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/internal/storage"
	"github.com/bher20/tagihanpln/pkg/providers/simulator"
)

func TestTransactionRoutes(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New(), Store: storage.NewMemory()})

	rec, out := do(t, h, http.MethodPost, "/api/transactions", `{"customerNumber":"5300","type":"PLN"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", out["message"])

	rec, out = do(t, h, http.MethodPost, "/api/transactions",
		`{"customerNumber":"5300","customerName":"JOHN","type":"PLN","amount":302500}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, "TRX001", data["id"])
	assert.Equal(t, storage.TxSuccess, data["status"])

	rec, _ = do(t, h, http.MethodPost, "/api/transactions",
		`{"customerNumber":"5310","customerName":"SITI","type":"PDAM","amount":75000,"status":"pending"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, out = do(t, h, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := out["data"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "TRX002", list[0].(map[string]any)["id"])

	rec, out = do(t, h, http.MethodDelete, "/api/transactions/TRX001", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Transaction deleted", out["message"])

	rec, out = do(t, h, http.MethodDelete, "/api/transactions/TRX001", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", out["message"])
}

func TestTransactionRoutesNeedStore(t *testing.T) {
	h := NewRouter(Options{Inquirer: simulator.New()})
	rec, _ := do(t, h, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
