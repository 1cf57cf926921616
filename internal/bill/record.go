// Package bill holds the canonical PLN postpaid bill and the data-driven
// normalizer that maps provider payloads onto it.
package bill

// Unknown fills string fields a provider did not report.
const Unknown = "Unknown"

// Record is the provider-agnostic result of a bill inquiry.
type Record struct {
	CustomerNumber string       `json:"customer_number"`
	CustomerName   string       `json:"customer_name"`
	TariffPower    string       `json:"tariff_power"`
	StandMeter     string       `json:"stand_meter"`
	Period         string       `json:"period"`
	BillAmount     int64        `json:"bill_amount"`
	AdminFee       int64        `json:"admin_fee"`
	TotalPayment   int64        `json:"total_payment"`
	BillCount      int          `json:"bill_count"`
	DetailBills    []DetailBill `json:"detail_bills,omitempty"`

	// TotalMismatch is set when the provider reported bill, admin fee and
	// total, and the total is not their sum. TotalPayment keeps the
	// provider's value.
	TotalMismatch bool `json:"-"`
}

// DetailBill is one month of an outstanding bill.
type DetailBill struct {
	Period  string `json:"period"`
	Amount  int64  `json:"amount"`
	Penalty int64  `json:"penalty"`
}
