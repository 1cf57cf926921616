// Package ledger answers inquiries from the operator-maintained customer
// ledger. Customers missing from the ledger fall through to the next
// provider.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bher20/tagihanpln/internal/bill"
	"github.com/bher20/tagihanpln/internal/storage"
	"github.com/bher20/tagihanpln/pkg/providers"
)

const (
	MsgPaid   = "Tagihan sudah dibayar"
	MsgNoBill = "Tidak ada tagihan tersedia"
)

// Store is the part of storage.Storage the provider reads.
type Store interface {
	GetCustomer(ctx context.Context, number string) (*storage.Customer, error)
	Ping(ctx context.Context) error
}

type Provider struct {
	store   Store
	timeout time.Duration
}

func New(store Store, timeout time.Duration) *Provider {
	return &Provider{store: store, timeout: timeout}
}

func (p *Provider) Spec() providers.Spec {
	return providers.Spec{Key: "ledger", Name: "Customer ledger", Kind: providers.KindLedger, Timeout: p.timeout}
}

func (p *Provider) Mapping() bill.Mapping { return bill.FlatMapping }

func (p *Provider) Probe(ctx context.Context) error { return p.store.Ping(ctx) }

type detail struct {
	Period  string `json:"period"`
	Amount  int64  `json:"amount"`
	Penalty int64  `json:"penalty"`
}

type payload struct {
	CustomerNumber string   `json:"customer_number"`
	CustomerName   string   `json:"customer_name"`
	TariffPower    string   `json:"tariff_power"`
	StandMeter     string   `json:"stand_meter"`
	Period         string   `json:"period"`
	BillCount      int      `json:"bill_count"`
	BillAmount     int64    `json:"bill_amount"`
	AdminFee       int64    `json:"admin_fee"`
	DetailBills    []detail `json:"detail_bills"`
}

func (p *Provider) Submit(ctx context.Context, customerNumber string) (providers.Payload, error) {
	c, err := p.store.GetCustomer(ctx, customerNumber)
	if err != nil {
		return nil, providers.FromContext(ctx, err)
	}
	if c == nil {
		return nil, providers.NotCovered("customer not in ledger")
	}
	if len(c.Bills) == 0 {
		return nil, providers.Logic(MsgNoBill)
	}
	unpaid := c.Unpaid()
	if len(unpaid) == 0 {
		return nil, providers.Logic(MsgPaid)
	}

	out := payload{
		CustomerNumber: c.Number,
		CustomerName:   c.Name,
		TariffPower:    c.TariffPower,
		StandMeter:     c.StandMeter,
		Period:         PeriodRange(unpaid[0].Period, unpaid[len(unpaid)-1].Period, len(unpaid)),
		BillCount:      len(unpaid),
		AdminFee:       c.AdminFee * int64(len(unpaid)),
	}
	for _, b := range unpaid {
		out.BillAmount += b.Amount
		out.DetailBills = append(out.DetailBills, detail{Period: b.Period, Amount: b.Amount, Penalty: b.Penalty})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, providers.Protocol("encode ledger entry: %v", err)
	}
	return providers.Payload(raw), nil
}

// PeriodRange renders "FEB 2026 (1 Bulan)" or
// "NOV 2025 - FEB 2026 (4 Bulan)" from MMYYYY codes.
func PeriodRange(first, last string, months int) string {
	if months <= 1 || first == last {
		return fmt.Sprintf("%s (%d Bulan)", bill.FormatPeriod(first), months)
	}
	return fmt.Sprintf("%s - %s (%d Bulan)", bill.FormatPeriod(first), bill.FormatPeriod(last), months)
}
