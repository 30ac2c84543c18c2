package services

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// UnspecifiedLabel groups records whose customer or product name is blank.
const UnspecifiedLabel = "Unspecified"

var saleDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveFloat returns the first source that is present and finite, or
// fallback when none is.
func ResolveFloat(fallback float64, sources ...*float64) float64 {
	for _, src := range sources {
		if src == nil || math.IsNaN(*src) || math.IsInf(*src, 0) {
			continue
		}
		return *src
	}
	return fallback
}

// ResolveLabel returns the first non-blank candidate, trimmed, or UnspecifiedLabel.
func ResolveLabel(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return UnspecifiedLabel
}

// ParseSaleDate parses a sale timestamp. The returned time keeps the offset
// written in the string so calendar components match what was recorded.
func ParseSaleDate(dateISO string) (time.Time, bool) {
	s := strings.TrimSpace(dateISO)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse month %q: expected YYYY-MM", s)
	}
	return YearMonthOf(t), nil
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether t falls in the month, comparing year and month only.
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}
