package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/storage"
)

// adminResponse is the envelope of the ledger admin routes.
type adminResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type createCustomerRequest struct {
	Number      string                 `json:"customerNumber"`
	Name        string                 `json:"customerName"`
	TariffPower string                 `json:"tariffPower"`
	StandMeter  string                 `json:"standMeter"`
	AdminFee    int64                  `json:"adminFee"`
	Bills       []storage.CustomerBill `json:"bills"`
}

type addBillRequest struct {
	Period  string `json:"period"`
	Amount  int64  `json:"amount"`
	Penalty int64  `json:"penalty"`
}

func (h *handler) customerRoutes(r chi.Router) {
	r.Get("/", h.listCustomers)
	r.Post("/", h.createCustomer)
	r.Put("/{number}", h.updateCustomer)
	r.Delete("/{number}", h.deleteCustomer)
	r.Post("/{number}/bills", h.addBill)
	r.Put("/{number}/bills/{index}/pay", h.payBill)
}

func adminOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, adminResponse{Success: true, Data: data})
}

func adminError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, adminResponse{Success: false, Message: message})
}

// storeError answers with 404 for missing records and 500 otherwise.
func storeError(w http.ResponseWriter, err error, notFound, failed string) {
	if errors.Is(err, storage.ErrNotFound) {
		adminError(w, http.StatusNotFound, notFound)
		return
	}
	zap.L().Error("http: ledger store failed", zap.String("op", failed), zap.Error(err))
	adminError(w, http.StatusInternalServerError, failed)
}

// @Summary List ledger customers
// @Tags ledger
// @Produce json
// @Router /api/pln-customers [get]
func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.opts.Store.ListCustomers(r.Context())
	if err != nil {
		storeError(w, err, "", "Failed to fetch customers")
		return
	}
	if list == nil {
		list = []storage.Customer{}
	}
	adminOK(w, http.StatusOK, list)
}

// @Summary Create a ledger customer
// @Tags ledger
// @Accept json
// @Produce json
// @Router /api/pln-customers [post]
func (h *handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == "" || req.Name == "" {
		adminError(w, http.StatusBadRequest, "customerNumber and customerName required")
		return
	}
	c, err := h.opts.Store.CreateCustomer(r.Context(), storage.Customer{
		Number:      req.Number,
		Name:        req.Name,
		TariffPower: req.TariffPower,
		StandMeter:  req.StandMeter,
		AdminFee:    req.AdminFee,
		Bills:       req.Bills,
	})
	if errors.Is(err, storage.ErrExists) {
		adminError(w, http.StatusConflict, "Customer already exists")
		return
	}
	if err != nil {
		storeError(w, err, "", "Failed to create customer")
		return
	}
	adminOK(w, http.StatusCreated, c)
}

// @Summary Update a ledger customer
// @Tags ledger
// @Accept json
// @Produce json
// @Param customerNumber path string true "Customer number"
// @Router /api/pln-customers/{customerNumber} [put]
func (h *handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var u storage.CustomerUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		adminError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c, err := h.opts.Store.UpdateCustomer(r.Context(), chi.URLParam(r, "number"), u)
	if err != nil {
		storeError(w, err, "Customer not found", "Failed to update customer")
		return
	}
	adminOK(w, http.StatusOK, c)
}

// @Summary Delete a ledger customer
// @Tags ledger
// @Param customerNumber path string true "Customer number"
// @Router /api/pln-customers/{customerNumber} [delete]
func (h *handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Store.DeleteCustomer(r.Context(), chi.URLParam(r, "number")); err != nil {
		storeError(w, err, "Customer not found", "Failed to delete customer")
		return
	}
	writeJSON(w, http.StatusOK, adminResponse{Success: true, Message: "Customer deleted"})
}

// @Summary Add a bill to a ledger customer
// @Tags ledger
// @Accept json
// @Produce json
// @Param customerNumber path string true "Customer number"
// @Router /api/pln-customers/{customerNumber}/bills [post]
func (h *handler) addBill(w http.ResponseWriter, r *http.Request) {
	var req addBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c, err := h.opts.Store.AddBill(r.Context(), chi.URLParam(r, "number"), storage.CustomerBill{
		Period:  req.Period,
		Amount:  req.Amount,
		Penalty: req.Penalty,
	})
	if err != nil {
		storeError(w, err, "Customer not found", "Failed to add bill")
		return
	}
	adminOK(w, http.StatusOK, c)
}

// @Summary Mark a bill as paid
// @Tags ledger
// @Produce json
// @Param customerNumber path string true "Customer number"
// @Param billIndex path int true "0-based bill index"
// @Router /api/pln-customers/{customerNumber}/bills/{billIndex}/pay [put]
func (h *handler) payBill(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		adminError(w, http.StatusNotFound, "Bill not found")
		return
	}
	number := chi.URLParam(r, "number")
	c, err := h.opts.Store.GetCustomer(r.Context(), number)
	if err != nil {
		storeError(w, err, "Customer not found", "Failed to mark bill as paid")
		return
	}
	if c == nil {
		adminError(w, http.StatusNotFound, "Customer not found")
		return
	}
	c, err = h.opts.Store.MarkBillPaid(r.Context(), number, index)
	if err != nil {
		storeError(w, err, "Bill not found", "Failed to mark bill as paid")
		return
	}
	adminOK(w, http.StatusOK, c)
}
