package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

// inquire checks a PLN postpaid bill.
// @Summary Check a PLN postpaid bill
// @Description Tries the configured providers in order and returns the first bill found.
// @Tags inquiry
// @Accept json
// @Produce json
// @Param request body InquiryRequest true "Customer number"
// @Success 200 {object} InquiryResponse
// @Router /api/pln/postpaid [post]
func (h *handler) inquire(w http.ResponseWriter, r *http.Request) {
	var req InquiryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		zap.L().Debug("http: invalid inquiry body", zap.Error(err))
		writeJSON(w, http.StatusOK, Failure("Error: invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	res := h.opts.Inquirer.Inquire(ctx, req.CustomerNumber)
	writeJSON(w, http.StatusOK, NewInquiryResponse(res))
}
