package bill

// Mapping describes where each canonical field lives in one provider's
// payload. Every value is a gjson path; empty paths are skipped.
type Mapping struct {
	CustomerNumber string `json:"customer_number,omitempty" mapstructure:"customer_number"`
	CustomerName   string `json:"customer_name,omitempty" mapstructure:"customer_name"`
	TariffPower    string `json:"tariff_power,omitempty" mapstructure:"tariff_power"`

	// TariffSegment and TariffVA are used when a provider reports the tariff
	// class and the power rating separately; they are joined as "R1/1300 VA".
	TariffSegment string `json:"tariff_segment,omitempty" mapstructure:"tariff_segment"`
	TariffVA      string `json:"tariff_va,omitempty" mapstructure:"tariff_va"`

	StandMeter string `json:"stand_meter,omitempty" mapstructure:"stand_meter"`
	Period     string `json:"period,omitempty" mapstructure:"period"`

	// PeriodCodes translates MMYYYY period codes into "FEB 2026" form.
	// Nil means off; an override may set it either way.
	PeriodCodes *bool `json:"period_codes,omitempty" mapstructure:"period_codes"`

	BillAmount   string `json:"bill_amount,omitempty" mapstructure:"bill_amount"`
	AdminFee     string `json:"admin_fee,omitempty" mapstructure:"admin_fee"`
	TotalPayment string `json:"total_payment,omitempty" mapstructure:"total_payment"`
	BillCount    string `json:"bill_count,omitempty" mapstructure:"bill_count"`

	// DetailBills points at an array; the Detail* paths are relative to
	// each element.
	DetailBills   string `json:"detail_bills,omitempty" mapstructure:"detail_bills"`
	DetailPeriod  string `json:"detail_period,omitempty" mapstructure:"detail_period"`
	DetailAmount  string `json:"detail_amount,omitempty" mapstructure:"detail_amount"`
	DetailPenalty string `json:"detail_penalty,omitempty" mapstructure:"detail_penalty"`
}

// FlatMapping reads a flat snake_case object such as
// {"customer_name": ..., "bill_amount": ...}. Direct JSON APIs, the page
// scrapers and the simulator all emit this shape.
var FlatMapping = Mapping{
	CustomerNumber: "customer_number",
	CustomerName:   "customer_name",
	TariffPower:    "tariff_power",
	StandMeter:     "stand_meter",
	Period:         "period",
	PeriodCodes:    Flag(true),
	BillAmount:     "bill_amount",
	AdminFee:       "admin_fee",
	TotalPayment:   "total_payment",
	BillCount:      "bill_count",
	DetailBills:    "detail_bills",
	DetailPeriod:   "period",
	DetailAmount:   "amount",
	DetailPenalty:  "penalty",
}

// Merge returns m with every non-empty field of override applied on top.
func (m Mapping) Merge(override Mapping) Mapping {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&m.CustomerNumber, override.CustomerNumber)
	set(&m.CustomerName, override.CustomerName)
	set(&m.TariffPower, override.TariffPower)
	set(&m.TariffSegment, override.TariffSegment)
	set(&m.TariffVA, override.TariffVA)
	set(&m.StandMeter, override.StandMeter)
	set(&m.Period, override.Period)
	set(&m.BillAmount, override.BillAmount)
	set(&m.AdminFee, override.AdminFee)
	set(&m.TotalPayment, override.TotalPayment)
	set(&m.BillCount, override.BillCount)
	set(&m.DetailBills, override.DetailBills)
	set(&m.DetailPeriod, override.DetailPeriod)
	set(&m.DetailAmount, override.DetailAmount)
	set(&m.DetailPenalty, override.DetailPenalty)
	if override.PeriodCodes != nil {
		m.PeriodCodes = Flag(*override.PeriodCodes)
	}
	return m
}

// TranslatesPeriods reports whether period codes are rewritten.
func (m Mapping) TranslatesPeriods() bool {
	return m.PeriodCodes != nil && *m.PeriodCodes
}

// Flag returns a pointer to b, for Mapping literals.
func Flag(b bool) *bool { return &b }
