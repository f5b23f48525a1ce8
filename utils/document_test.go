package utils

import "testing"

func TestDocumentValidation(t *testing.T) {
	cases := []struct {
		doc      string
		wantType string
	}{
		{"529.982.247-25", DocumentTypeCPF},
		{"52998224725", DocumentTypeCPF},
		{"529.982.247-24", ""},
		{"111.111.111-11", ""},
		{"11.222.333/0001-81", DocumentTypeCNPJ},
		{"11222333000181", DocumentTypeCNPJ},
		{"11.222.333/0001-80", ""},
		{"00000000000000", ""},
		{"", ""},
		{"123", ""},
	}
	for _, tc := range cases {
		if got := DocumentType(tc.doc); got != tc.wantType {
			t.Fatalf("DocumentType(%q)=%q want %q", tc.doc, got, tc.wantType)
		}
	}
}

func TestFormatDocument(t *testing.T) {
	if got := FormatDocument("52998224725"); got != "529.982.247-25" {
		t.Fatalf("cpf format: got %q", got)
	}
	if got := FormatDocument("11222333000181"); got != "11.222.333/0001-81" {
		t.Fatalf("cnpj format: got %q", got)
	}
	if got := FormatDocument("abc"); got != "abc" {
		t.Fatalf("unknown format should be untouched: got %q", got)
	}
}

func TestValidatorCustomRules(t *testing.T) {
	type input struct {
		Document string `validate:"cpfcnpj"`
		Color    string `validate:"omitempty,hexcolor6"`
	}
	if err := ValidateStruct(input{Document: "529.982.247-25", Color: "#00AAFF"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	err := ValidateStruct(input{Document: "529.982.247-20", Color: "blue"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := ProcessValidationErrors(err)
	if fields["Document"] != "cpfcnpj" || fields["Color"] != "hexcolor6" {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}
