package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"-12,34", -1234, true},
		{"1.234,56", 123456, true},
		{"0,005", 1, true},  // rounds up
		{"0.004", 0, true},  // rounds down
		{"1000", 100000, true},
		{"€ 12,34", 1234, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12,34,56", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseAmountToCents(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmountToCents(%q) expected error", tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseAmountToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseAmountErrorIsFormatError(t *testing.T) {
	_, err := ParseAmountToCents("not a number")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T", err)
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -500}).Abs(); got != 500 {
		t.Fatalf("Abs() = %d, want 500", got)
	}
	if got := (Money{Cents: 500}).Abs(); got != 500 {
		t.Fatalf("Abs() = %d, want 500", got)
	}
}
