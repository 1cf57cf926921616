package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bher20/tagihanpln/internal/storage"
)

type createTransactionRequest struct {
	CustomerNumber string `json:"customerNumber"`
	CustomerName   string `json:"customerName"`
	Type           string `json:"type"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
}

func (h *handler) transactionRoutes(r chi.Router) {
	r.Get("/", h.listTransactions)
	r.Post("/", h.createTransaction)
	r.Delete("/{id}", h.deleteTransaction)
}

// @Summary List dashboard transactions
// @Tags ledger
// @Produce json
// @Router /api/transactions [get]
func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := h.opts.Store.ListTransactions(r.Context())
	if err != nil {
		storeError(w, err, "", "Failed to fetch transactions")
		return
	}
	if list == nil {
		list = []storage.Transaction{}
	}
	adminOK(w, http.StatusOK, list)
}

// @Summary Record a transaction
// @Tags ledger
// @Accept json
// @Produce json
// @Router /api/transactions [post]
func (h *handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t, err := h.opts.Store.CreateTransaction(r.Context(), storage.Transaction{
		CustomerNumber: req.CustomerNumber,
		CustomerName:   req.CustomerName,
		Type:           req.Type,
		Amount:         req.Amount,
		Status:         req.Status,
	})
	var ve *storage.ValidationError
	if errors.As(err, &ve) {
		adminError(w, http.StatusBadRequest, ve.Reason)
		return
	}
	if err != nil {
		storeError(w, err, "", "Failed to create transaction")
		return
	}
	adminOK(w, http.StatusCreated, t)
}

// @Summary Delete a transaction
// @Tags ledger
// @Param id path string true "Transaction id (TRX001)"
// @Router /api/transactions/{id} [delete]
func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Store.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err, "Transaction not found", "Failed to delete transaction")
		return
	}
	writeJSON(w, http.StatusOK, adminResponse{Success: true, Message: "Transaction deleted"})
}
