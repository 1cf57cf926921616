package bill

import (
	"regexp"
	"strings"
)

var monthAbbr = map[string]string{
	"01": "JAN",
	"02": "FEB",
	"03": "MAR",
	"04": "APR",
	"05": "MAY",
	"06": "JUN",
	"07": "JUL",
	"08": "AUG",
	"09": "SEP",
	"10": "OKT",
	"11": "NOV",
	"12": "DES",
}

var periodCode = regexp.MustCompile(`^(\d{2})(\d{4})$`)

// FormatPeriod turns a MMYYYY code such as "022026" into "FEB 2026".
// Unknown month codes keep their digits ("132026" -> "13 2026") and
// anything not shaped like MMYYYY is returned unchanged.
func FormatPeriod(code string) string {
	m := periodCode.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return code
	}
	if abbr, ok := monthAbbr[m[1]]; ok {
		return abbr + " " + m[2]
	}
	return m[1] + " " + m[2]
}
