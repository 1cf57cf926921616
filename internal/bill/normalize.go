package bill

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// NormalizationError reports a payload that could not be turned into a
// Record.
type NormalizationError struct {
	Provider string
	Reason   string
}

func (e *NormalizationError) Error() string {
	if e.Provider == "" {
		return "normalize: " + e.Reason
	}
	return fmt.Sprintf("normalize %s: %s", e.Provider, e.Reason)
}

// Normalizer holds the mapping of every configured provider.
type Normalizer struct {
	mappings map[string]Mapping
}

func NewNormalizer(mappings map[string]Mapping) *Normalizer {
	m := make(map[string]Mapping, len(mappings))
	for k, v := range mappings {
		m[k] = v
	}
	return &Normalizer{mappings: m}
}

// Normalize converts provider's raw payload into a Record.
func (n *Normalizer) Normalize(provider string, raw []byte, customerNumber string) (*Record, error) {
	m, ok := n.mappings[provider]
	if !ok {
		return nil, &NormalizationError{Provider: provider, Reason: "no mapping registered"}
	}
	rec, err := Normalize(m, raw, customerNumber)
	if err != nil {
		if ne, ok := err.(*NormalizationError); ok {
			ne.Provider = provider
		}
		return nil, err
	}
	return rec, nil
}

// Normalize applies m to raw. It never performs I/O.
func Normalize(m Mapping, raw []byte, customerNumber string) (*Record, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &NormalizationError{Reason: "payload is not valid JSON"}
	}
	doc := gjson.ParseBytes(raw)

	rec := &Record{
		CustomerNumber: textOr(doc, m.CustomerNumber, customerNumber),
		CustomerName:   textOr(doc, m.CustomerName, Unknown),
		TariffPower:    tariff(doc, m),
		StandMeter:     textOr(doc, m.StandMeter, Unknown),
		Period:         textOr(doc, m.Period, Unknown),
	}
	if rec.CustomerNumber == "" {
		rec.CustomerNumber = Unknown
	}
	if m.TranslatesPeriods() {
		rec.Period = FormatPeriod(rec.Period)
	}

	if m.DetailBills != "" {
		for _, item := range get(doc, m.DetailBills).Array() {
			d := DetailBill{Period: Unknown}
			if s, ok := text(item, m.DetailPeriod); ok {
				d.Period = s
				if m.TranslatesPeriods() {
					d.Period = FormatPeriod(s)
				}
			}
			d.Amount, _ = amount(item, m.DetailAmount)
			d.Penalty, _ = amount(item, m.DetailPenalty)
			rec.DetailBills = append(rec.DetailBills, d)
		}
	}

	if v := get(doc, m.BillCount); v.Exists() {
		if n, ok := ParseAmount(v.String()); ok {
			rec.BillCount = int(n)
		}
	}
	if rec.BillCount == 0 {
		rec.BillCount = len(rec.DetailBills)
	}

	billAmt, hasBill := amount(doc, m.BillAmount)
	admin, hasAdmin := amount(doc, m.AdminFee)
	total, hasTotal := amount(doc, m.TotalPayment)

	switch {
	case !hasBill && !hasTotal:
		return nil, &NormalizationError{Reason: "bill amount missing"}
	case hasTotal && hasBill && hasAdmin:
		rec.TotalMismatch = total != billAmt+admin
	case hasTotal && hasBill:
		admin = total - billAmt
	case hasTotal && hasAdmin:
		billAmt = total - admin
	case hasTotal:
		billAmt = total
	default:
		total = billAmt + admin
	}
	rec.BillAmount, rec.AdminFee, rec.TotalPayment = billAmt, admin, total
	return rec, nil
}

func get(r gjson.Result, path string) gjson.Result {
	if path == "" {
		return gjson.Result{}
	}
	return r.Get(path)
}

func text(r gjson.Result, path string) (string, bool) {
	v := get(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return "", false
	}
	s := strings.TrimSpace(v.String())
	return s, s != ""
}

func textOr(r gjson.Result, path, fallback string) string {
	if s, ok := text(r, path); ok {
		return s
	}
	return fallback
}

func tariff(doc gjson.Result, m Mapping) string {
	if s, ok := text(doc, m.TariffPower); ok {
		return s
	}
	seg, hasSeg := text(doc, m.TariffSegment)
	va, hasVA := text(doc, m.TariffVA)
	if !hasSeg && !hasVA {
		return Unknown
	}
	if !hasSeg {
		seg = "R1"
	}
	if !hasVA {
		va = "0"
	}
	return fmt.Sprintf("%s/%s VA", seg, va)
}

func amount(r gjson.Result, path string) (int64, bool) {
	v := get(r, path)
	switch v.Type {
	case gjson.Number:
		return int64(math.Round(v.Float())), true
	case gjson.String:
		return ParseAmount(v.Str)
	}
	return 0, false
}

var (
	decimalTail = regexp.MustCompile(`[.,]\d{1,2}$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

// ParseAmount reads a rupiah amount written as a number or in display form
// ("Rp 302.500", "302,500", "150000.00").
func ParseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = decimalTail.ReplaceAllString(s, "")
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
