package ingest

import (
	"errors"
	"testing"

	"conto/internal/core"
)

const n26CSV = `"Date","Payee","Account number","Transaction type","Payment reference","Amount (EUR)"
"2024-01-15","REWE Markt","DE02100100100006820101","MasterCard Payment","Groceries","-42,17"
"2024-01-16","ACME GmbH","DE02100100100006820101","Income","Salary January","2.500,00"`

const semicolonCSV = `Date;Payee;Amount (EUR);Payment reference
20240115;Cafe Central;-3,50;Coffee
15/01/2024;Cafe Central;-3,50;Coffee again`

func TestParseCSVCommaVariant(t *testing.T) {
	rows, err := ParseCSV(n26CSV)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	first := rows[0]
	if got := first.Get(FieldDate); got != "2024-01-15" {
		t.Fatalf("date = %q", got)
	}
	if got := first.Get(FieldAmount); got != "-42,17" {
		t.Fatalf("amount = %q", got)
	}
	if got := first.Get(FieldCounterparty); got != "REWE Markt" {
		t.Fatalf("counterparty = %q", got)
	}
	if got := first.Get(FieldSubcategory); got != "MasterCard Payment" {
		t.Fatalf("subcategory = %q", got)
	}
	if first.Line != 2 {
		t.Fatalf("line = %d, want 2", first.Line)
	}
}

func TestParseCSVSemicolonVariant(t *testing.T) {
	rows, err := ParseCSV(semicolonCSV)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0].Get(FieldDescription); got != "Coffee" {
		t.Fatalf("description = %q", got)
	}
}

func TestParseCSVUnmappedHeadersPassThrough(t *testing.T) {
	rows, err := ParseCSV("Date,Amount,Exchange Rate\n2024-01-15,-1,1.0")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if got := rows[0].Get("exchange rate"); got != "1.0" {
		t.Fatalf("pass-through header = %q", got)
	}
}

func TestParseCSVErrors(t *testing.T) {
	cases := []string{
		"",
		"   \n\n",
		"OnlyOneColumn\n123",
	}
	for _, in := range cases {
		_, err := ParseCSV(in)
		var pe *core.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseCSV(%q) expected ParseError, got %v", in, err)
		}
	}
}

func TestParseJSON(t *testing.T) {
	text := `[{"id":"tx-1","executionDate":"20240115","amount":-42.17,"category":"Food","subcategory":"Groceries","description":"REWE"}]`
	rows, err := ParseJSON(text)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if got := r.Get(FieldID); got != "tx-1" {
		t.Fatalf("id = %q", got)
	}
	if got := r.Get(FieldDate); got != "20240115" {
		t.Fatalf("date = %q", got)
	}
	if got := r.Get(FieldAmount); got != "-42.17" {
		t.Fatalf("amount = %q", got)
	}
}

func TestParseJSONErrors(t *testing.T) {
	for _, in := range []string{"", "[]", `{"not":"an array"}`, "garbage"} {
		_, err := ParseJSON(in)
		var pe *core.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseJSON(%q) expected ParseError, got %v", in, err)
		}
	}
}

func TestParseUsesFilenameHint(t *testing.T) {
	jsonText := `[{"date":"2024-01-15","amount":1}]`
	if _, err := Parse(jsonText, "export.json"); err != nil {
		t.Fatalf("Parse json hint: %v", err)
	}
	if _, err := Parse(n26CSV, "export.csv"); err != nil {
		t.Fatalf("Parse csv hint: %v", err)
	}
	// No hint: sniff the leading bracket.
	if _, err := Parse(jsonText, "upload"); err != nil {
		t.Fatalf("Parse sniffed json: %v", err)
	}
}
