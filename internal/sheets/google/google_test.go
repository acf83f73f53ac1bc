package google

import "testing"

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain base", "Transactions", 2026, "2026 Transactions"},
		{"already prefixed", "2025 Transactions", 2026, "2025 Transactions"},
		{"whitespace trimmed", "  Transactions ", 2026, "2026 Transactions"},
		{"short base", "Tx", 2026, "2026 Tx"},
		{"digits but no space", "2025Transactions", 2026, "2026 2025Transactions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}
