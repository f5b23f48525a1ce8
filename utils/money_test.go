package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"10,5", "10.5"},
		{"1.234.567", "1234567"},
		{"-R$ 20,00", "-20"},
		{"R$-20,00", "-20"},
		{"  42 ", "42"},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) error: %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ParseMoney(%q)=%s want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseMoney("R$"); err == nil {
		t.Fatalf("expected error for empty amount")
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	var body struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"R$ 1.000,25","b":99.9}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.A.Equal(decimal.RequireFromString("1000.25")) {
		t.Fatalf("a=%s", body.A)
	}
	if !body.B.Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("b=%s", body.B)
	}
}

func TestFormatBRL(t *testing.T) {
	if got := FormatBRL(decimal.RequireFromString("1234.5")); got != "R$ 1.234,50" {
		t.Fatalf("FormatBRL=%q", got)
	}
	if got := FormatBRL(decimal.RequireFromString("-3")); got != "-R$ 3,00" {
		t.Fatalf("FormatBRL negative=%q", got)
	}
}
