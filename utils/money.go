package utils

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	if f < 0 {
		return brlPrinter.Sprintf("-R$ %.2f", -f)
	}
	return brlPrinter.Sprintf("R$ %.2f", f)
}

// ParseMoney accepts user-formatted amounts. Both "R$ 1.234,56" and "1234.56" are understood.
// A single comma is the decimal separator. When both separators appear the last one wins.
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "r$")
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, Invalidf("invalid amount %q", raw)
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}

// Money is a decimal that unmarshals from JSON numbers or formatted strings.
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := ParseMoney(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return Invalidf("invalid amount: %s", string(data))
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return m.Decimal.MarshalJSON()
}
