package api

import (
	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/inquiry"
)

// StatusSuccess is the status value of a successful inquiry. Failures carry
// the JSON boolean false.
const StatusSuccess = "SUCCESS"

// InquiryRequest is the body of POST /api/pln/postpaid.
type InquiryRequest struct {
	CustomerNumber string `json:"customer_number"`
}

// InquiryResponse is the wire shape of an inquiry result.
type InquiryResponse struct {
	Status  any       `json:"status"`
	Source  string    `json:"source,omitempty"`
	Data    *BillData `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
}

// BillData is a bill.Record with the Indonesian field names clients expect.
type BillData struct {
	CustomerNumber string       `json:"nomor_id_pelanggan"`
	CustomerName   string       `json:"nama_pelanggan"`
	TariffPower    string       `json:"tarif_daya"`
	StandMeter     string       `json:"stand_meter"`
	Period         string       `json:"periode_tagihan"`
	BillAmount     int64        `json:"jumlah_tagihan_excl_fee"`
	AdminFee       int64        `json:"biaya_admin"`
	TotalPayment   int64        `json:"total_pembayaran_incl_fee"`
	BillCount      int          `json:"jumlah_bulan,omitempty"`
	Details        []DetailData `json:"rincian_tagihan,omitempty"`
}

type DetailData struct {
	Period  string `json:"periode"`
	Amount  int64  `json:"jumlah"`
	Penalty int64  `json:"denda"`
}

// NewInquiryResponse converts an inquiry result to its wire shape.
func NewInquiryResponse(res inquiry.Result) InquiryResponse {
	if !res.OK() {
		return Failure(res.Message, res.Errors...)
	}
	return InquiryResponse{
		Status: StatusSuccess,
		Source: res.Provider,
		Data:   newBillData(res.Bill),
	}
}

// Failure builds the failure shape.
func Failure(message string, errs ...string) InquiryResponse {
	return InquiryResponse{Status: false, Message: message, Errors: errs}
}

func newBillData(r *bill.Record) *BillData {
	d := &BillData{
		CustomerNumber: r.CustomerNumber,
		CustomerName:   r.CustomerName,
		TariffPower:    r.TariffPower,
		StandMeter:     r.StandMeter,
		Period:         r.Period,
		BillAmount:     r.BillAmount,
		AdminFee:       r.AdminFee,
		TotalPayment:   r.TotalPayment,
		BillCount:      r.BillCount,
	}
	for _, db := range r.DetailBills {
		d.Details = append(d.Details, DetailData{Period: db.Period, Amount: db.Amount, Penalty: db.Penalty})
	}
	return d
}
