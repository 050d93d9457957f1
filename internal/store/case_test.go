package store

import "testing"

func TestNextCaseCode(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		year   int
		last   string
		want   string
	}{
		{"first of the year", "PACE", 2025, "", "PACE-2025-001"},
		{"increments last", "PACE", 2025, "PACE-2025-017", "PACE-2025-018"},
		{"rolls into three digits", "PACE", 2025, "PACE-2025-099", "PACE-2025-100"},
		{"grows past three digits", "PACE", 2025, "PACE-2025-999", "PACE-2025-1000"},
		{"custom prefix", "DLSA", 2026, "DLSA-2026-002", "DLSA-2026-003"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextCaseCode(tc.prefix, tc.year, tc.last)
			if got != tc.want {
				t.Errorf("NextCaseCode(%q, %d, %q) = %q, want %q", tc.prefix, tc.year, tc.last, got, tc.want)
			}
		})
	}
}
