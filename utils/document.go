package utils

import (
	"strings"
)

const (
	DocumentTypeCPF  = "CPF"
	DocumentTypeCNPJ = "CNPJ"
)

// OnlyDigits strips punctuation from a CPF/CNPJ/CEP.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSameDigit(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// IsValidCPF validates the two check digits of a CPF (punctuation allowed).
func IsValidCPF(cpf string) bool {
	d := OnlyDigits(cpf)
	if len(d) != 11 || allSameDigit(d) {
		return false
	}
	if checkDigit(d, []int{10, 9, 8, 7, 6, 5, 4, 3, 2}) != d[9] {
		return false
	}
	return checkDigit(d, []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}) == d[10]
}

// IsValidCNPJ validates the two check digits of a CNPJ (punctuation allowed).
func IsValidCNPJ(cnpj string) bool {
	d := OnlyDigits(cnpj)
	if len(d) != 14 || allSameDigit(d) {
		return false
	}
	if checkDigit(d, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) != d[12] {
		return false
	}
	return checkDigit(d, []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == d[13]
}

// DocumentType classifies a CPF or CNPJ; returns "" when neither is valid.
func DocumentType(doc string) string {
	switch {
	case IsValidCPF(doc):
		return DocumentTypeCPF
	case IsValidCNPJ(doc):
		return DocumentTypeCNPJ
	}
	return ""
}

// FormatDocument renders 000.000.000-00 or 00.000.000/0000-00.
func FormatDocument(doc string) string {
	d := OnlyDigits(doc)
	switch len(d) {
	case 11:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case 14:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
	}
	return doc
}
