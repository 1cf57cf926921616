package storage

import (
	"fmt"
	"time"
)

// Defaults applied to new customers, as operators usually leave them blank.
const (
	DefaultTariffPower = "R1/900VA"
	DefaultStandMeter  = "00000000-00000000"
	DefaultAdminFee    = 2500
)

// Customer is an operator-maintained PLN customer with its outstanding and
// settled bills.
type Customer struct {
	Number      string         `json:"customerNumber" gorm:"primaryKey;column:customer_number"`
	Name        string         `json:"customerName" gorm:"column:customer_name"`
	TariffPower string         `json:"tariffPower" gorm:"column:tariff_power"`
	StandMeter  string         `json:"standMeter" gorm:"column:stand_meter"`
	AdminFee    int64          `json:"adminFee" gorm:"column:admin_fee"`
	Bills       []CustomerBill `json:"bills" gorm:"foreignKey:CustomerNumber;references:Number;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"column:updated_at"`
}

func (Customer) TableName() string { return "pln_customers" }

// CustomerBill is one monthly bill. Period is a MMYYYY code.
type CustomerBill struct {
	ID             uint   `json:"id" gorm:"primaryKey;column:id"`
	CustomerNumber string `json:"-" gorm:"index;column:customer_number"`
	Period         string `json:"period" gorm:"column:period"`
	Amount         int64  `json:"amount" gorm:"column:amount"`
	Penalty        int64  `json:"penalty" gorm:"column:penalty"`
	Paid           bool   `json:"isPaid" gorm:"column:is_paid"`
}

func (CustomerBill) TableName() string { return "pln_customer_bills" }

// Unpaid returns the bills still outstanding, in stored order.
func (c *Customer) Unpaid() []CustomerBill {
	var out []CustomerBill
	for _, b := range c.Bills {
		if !b.Paid {
			out = append(out, b)
		}
	}
	return out
}

// CustomerUpdate carries the fields a PUT may change; nil means unchanged.
type CustomerUpdate struct {
	Name        *string `json:"customerName"`
	TariffPower *string `json:"tariffPower"`
	StandMeter  *string `json:"standMeter"`
	AdminFee    *int64  `json:"adminFee"`
}

func (u CustomerUpdate) apply(c *Customer) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.TariffPower != nil {
		c.TariffPower = *u.TariffPower
	}
	if u.StandMeter != nil {
		c.StandMeter = *u.StandMeter
	}
	if u.AdminFee != nil {
		c.AdminFee = *u.AdminFee
	}
}

func withDefaults(c Customer) Customer {
	if c.TariffPower == "" {
		c.TariffPower = DefaultTariffPower
	}
	if c.StandMeter == "" {
		c.StandMeter = DefaultStandMeter
	}
	if c.AdminFee == 0 {
		c.AdminFee = DefaultAdminFee
	}
	return c
}

// JobRun records the last execution of a scheduled job.
type JobRun struct {
	Name           string    `json:"name" gorm:"primaryKey;column:name"`
	LastRunAt      time.Time `json:"lastRunAt" gorm:"column:last_run_at"`
	LastDurationMs int64     `json:"lastDurationMs" gorm:"column:last_duration_ms"`
	LastSuccess    bool      `json:"lastSuccess" gorm:"column:last_success"`
	LastError      string    `json:"lastError" gorm:"column:last_error"`
}

func (JobRun) TableName() string { return "scheduled_jobs" }

const (
	TxTypePLN  = "PLN"
	TxTypePDAM = "PDAM"
	TxTypeBPJS = "BPJS"

	TxSuccess = "success"
	TxPending = "pending"
	TxFailed  = "failed"
)

// txDateLayout matches the id-ID locale date the dashboard displays.
const txDateLayout = "2/1/2006 15.04.05"

// Transaction is a payment recorded by an operator.
type Transaction struct {
	Seq            int64     `json:"-" gorm:"primaryKey;autoIncrement:false;column:seq"`
	ID             string    `json:"id" gorm:"uniqueIndex;column:id"`
	CustomerNumber string    `json:"customerNumber" gorm:"column:customer_number"`
	CustomerName   string    `json:"customerName" gorm:"column:customer_name"`
	Type           string    `json:"type" gorm:"column:type"`
	Amount         int64     `json:"amount" gorm:"column:amount"`
	Status         string    `json:"status" gorm:"column:status"`
	Date           string    `json:"date" gorm:"column:date"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionID formats a sequence number as TRX001, TRX002, ...
func TransactionID(seq int64) string { return fmt.Sprintf("TRX%03d", seq) }

// prepare validates t, fills defaults and stamps it with seq.
func (t Transaction) prepare(seq int64, now time.Time) (Transaction, error) {
	if t.CustomerNumber == "" || t.CustomerName == "" || t.Type == "" || t.Amount <= 0 {
		return t, invalid("Missing required fields")
	}
	switch t.Type {
	case TxTypePLN, TxTypePDAM, TxTypeBPJS:
	default:
		return t, invalid(fmt.Sprintf("Unknown transaction type %q", t.Type))
	}
	if t.Status == "" {
		t.Status = TxSuccess
	}
	switch t.Status {
	case TxSuccess, TxPending, TxFailed:
	default:
		return t, invalid(fmt.Sprintf("Unknown transaction status %q", t.Status))
	}
	t.Seq = seq
	t.ID = TransactionID(seq)
	t.CreatedAt = now
	if t.Date == "" {
		t.Date = now.Format(txDateLayout)
	}
	return t, nil
}

// ValidationError names the rule a record broke. It matches ErrInvalid.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string        { return e.Reason }
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(reason string) error { return &ValidationError{Reason: reason} }
