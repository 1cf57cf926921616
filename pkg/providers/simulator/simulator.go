// Package simulator answers inquiries from canned data keyed by customer
// number prefix. Its answers go through the real normalizer, so it doubles
// as an end-to-end check of the response mapping.
package simulator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/pkg/providers"
)

// Key is the provider name reported for simulated answers.
const Key = "ppob_simulated"

// Test numbers by prefix.
const (
	PrefixOneMonth  = "5300"
	PrefixFourMonth = "5310"
	PrefixPaid      = "5320"
	PrefixNotFound  = "5331"
	PrefixNoBill    = "5335"
)

type detail struct {
	Period  string `json:"period"`
	Amount  int64  `json:"amount"`
	Penalty int64  `json:"penalty"`
}

type answer struct {
	CustomerNumber string   `json:"customer_number"`
	CustomerName   string   `json:"customer_name"`
	TariffPower    string   `json:"tariff_power"`
	Period         string   `json:"period"`
	BillCount      int      `json:"bill_count"`
	BillAmount     int64    `json:"bill_amount"`
	AdminFee       int64    `json:"admin_fee"`
	TotalPayment   int64    `json:"total_payment"`
	DetailBills    []detail `json:"detail_bills"`
}

// Provider is the simulator. The zero value is ready to use.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (*Provider) Spec() providers.Spec {
	return providers.Spec{Key: Key, Name: "PPOB simulator", Kind: providers.KindSimulated}
}

func (*Provider) Mapping() bill.Mapping { return bill.FlatMapping }

func (*Provider) Submit(_ context.Context, customerNumber string) (providers.Payload, error) {
	a, err := answerFor(customerNumber)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, providers.Protocol("encode simulated answer: %v", err)
	}
	return providers.Payload(raw), nil
}

func answerFor(n string) (answer, error) {
	switch {
	case strings.HasPrefix(n, PrefixOneMonth):
		return answer{
			CustomerNumber: n,
			CustomerName:   "JOHN DOE",
			TariffPower:    "R1/1300 VA",
			Period:         "FEB 2026 (1 Bulan)",
			BillCount:      1,
			BillAmount:     300000,
			AdminFee:       2500,
			TotalPayment:   302500,
			DetailBills:    []detail{{Period: "022026", Amount: 300000}},
		}, nil
	case strings.HasPrefix(n, PrefixFourMonth):
		return answer{
			CustomerNumber: n,
			CustomerName:   "JANE DOE",
			TariffPower:    "R1/2200 VA",
			Period:         "NOV 2025 - FEB 2026 (4 Bulan)",
			BillCount:      4,
			BillAmount:     1200000,
			AdminFee:       10000,
			TotalPayment:   1210000,
			DetailBills: []detail{
				{Period: "112025", Amount: 300000, Penalty: 5000},
				{Period: "122025", Amount: 300000, Penalty: 5000},
				{Period: "012026", Amount: 300000},
				{Period: "022026", Amount: 300000},
			},
		}, nil
	case strings.HasPrefix(n, PrefixPaid):
		return answer{}, providers.Logic("Tagihan sudah dibayar")
	case strings.HasPrefix(n, PrefixNotFound):
		return answer{}, providers.Logic("ID Pelanggan tidak ditemukan")
	case strings.HasPrefix(n, PrefixNoBill):
		return answer{}, providers.Logic("Tidak ada tagihan tersedia")
	}
	return answer{
		CustomerNumber: n,
		CustomerName:   "PELANGGAN TEST",
		TariffPower:    "R1/900 VA",
		Period:         "FEB 2026 (1 Bulan)",
		BillCount:      1,
		BillAmount:     150000,
		AdminFee:       2500,
		TotalPayment:   152500,
		DetailBills:    []detail{{Period: "022026", Amount: 150000}},
	}, nil
}

// Simulate returns the canned result for customerNumber. It is pure: the
// same input always yields the same result.
func (p *Provider) Simulate(customerNumber string) inquiry.Result {
	raw, err := p.Submit(context.Background(), customerNumber)
	if err == nil {
		var rec *bill.Record
		rec, err = bill.Normalize(p.Mapping(), raw, customerNumber)
		if err == nil {
			return inquiry.Success(Key, rec)
		}
	}
	return inquiry.Failure(err.Error(), []string{Key + ": " + err.Error()})
}

// Inquire makes the simulator a drop-in inquiry.Inquirer.
func (p *Provider) Inquire(_ context.Context, customerNumber string) inquiry.Result {
	customerNumber = strings.TrimSpace(customerNumber)
	if customerNumber == "" {
		return inquiry.Failure(inquiry.MsgRequired, nil)
	}
	return p.Simulate(customerNumber)
}

// Simulate is a shorthand for New().Simulate.
func Simulate(customerNumber string) inquiry.Result {
	return New().Simulate(customerNumber)
}
