package view

import (
	"strconv"
	"strings"
	"time"
)

var dateInputLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders a backend date string in the catalog's display layout.
// Input that does not parse renders as InvalidDate.
func (m Messages) FormatDate(dateStr string) string {
	s := strings.TrimSpace(dateStr)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(m.DateLayout)
		}
	}
	return m.InvalidDate
}

// formatAmount prints v with two decimals, or "-" when the value is absent.
func formatAmount(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
