package shared

import (
	"regexp"
	"strings"
)

// FirstMatch returns the first capture group of re in s, trimmed, or "" when
// there is no match. The regex must have at least one capture group.
func FirstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var spaces = regexp.MustCompile(`[ \t\r\f\v]+`)

// CollapseSpace squeezes runs of horizontal whitespace and drops blank lines.
func CollapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spaces.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
