package seatmap

import (
	"testing"

	"github.com/bookmyseat/bms-go/internal/domain"
)

func TestParseLayout(t *testing.T) {
	cases := []struct {
		in      string
		left    int
		right   int
		wantErr bool
	}{
		{"2+1", 2, 1, false},
		{"2+2", 2, 2, false},
		{" 3 + 2 ", 3, 2, false},
		{"0+0", 0, 0, true},
		{"2", 0, 0, true},
		{"a+b", 0, 0, true},
		{"-1+2", 0, 0, true},
	}

	for _, c := range cases {
		l, err := ParseLayout(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseLayout(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLayout(%q): %v", c.in, err)
		}
		if l.Left != c.left || l.Right != c.right {
			t.Fatalf("ParseLayout(%q) = %+v, want %d+%d", c.in, l, c.left, c.right)
		}
	}
}

func TestGenerateSeatCountAndUniqueness(t *testing.T) {
	cases := []struct {
		layout string
		total  int
	}{
		{"2+1", 35},
		{"2+2", 40},
		{"1+1", 7},
		{"3+2", 45},
	}

	for _, c := range cases {
		rows, err := Generate(c.layout, c.total, nil, nil)
		if err != nil {
			t.Fatalf("Generate(%q, %d): %v", c.layout, c.total, err)
		}

		seen := map[string]bool{}
		seats, aisles := 0, 0
		for _, r := range rows {
			for _, s := range r {
				if s.Aisle {
					aisles++
					continue
				}
				if seen[s.ID] {
					t.Fatalf("duplicate seat id %s for layout %q", s.ID, c.layout)
				}
				seen[s.ID] = true
				seats++
			}
		}

		if seats != c.total {
			t.Fatalf("layout %q total %d: got %d seats", c.layout, c.total, seats)
		}
		if aisles != len(rows) {
			t.Fatalf("layout %q: expected one aisle per row, got %d aisles in %d rows", c.layout, aisles, len(rows))
		}
	}
}

func TestGenerateColumnLettersSkipAisle(t *testing.T) {
	rows, err := Generate("2+1", 6, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Row 1 of "2+1" must be 1A, 1B, aisle, 1C.
	want := []string{"1A", "1B", "", "1C"}
	if len(rows[0]) != len(want) {
		t.Fatalf("row 1 has %d slots, want %d", len(rows[0]), len(want))
	}
	for i, id := range want {
		if id == "" {
			if !rows[0][i].Aisle {
				t.Fatalf("slot %d should be the aisle", i)
			}
			continue
		}
		if rows[0][i].ID != id {
			t.Fatalf("slot %d = %q, want %q", i, rows[0][i].ID, id)
		}
	}
}

func TestGeneratePartialFinalRow(t *testing.T) {
	rows, err := Generate("2+2", 5, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	last := rows[len(rows)-1]
	seats := 0
	for _, s := range last {
		if !s.Aisle {
			seats++
		}
	}
	if seats != 1 {
		t.Fatalf("final row should hold the single remaining seat, got %d", seats)
	}
	if last[0].ID != "2A" {
		t.Fatalf("remaining seat = %q, want 2A", last[0].ID)
	}
}

func TestGenerateBookedPreemptsSelected(t *testing.T) {
	rows, err := Generate("2+1", 6, []string{"1A"}, []string{"1A", "1B"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	states := map[string]domain.SeatState{}
	for _, r := range rows {
		for _, s := range r {
			if !s.Aisle {
				states[s.ID] = s.State
			}
		}
	}

	if states["1A"] != domain.SeatBooked {
		t.Fatalf("1A = %s, want booked (booked pre-empts selected)", states["1A"])
	}
	if states["1B"] != domain.SeatSelected {
		t.Fatalf("1B = %s, want selected", states["1B"])
	}
	if states["1C"] != domain.SeatAvailable {
		t.Fatalf("1C = %s, want available", states["1C"])
	}
}

func TestValidSeatIDs(t *testing.T) {
	ids, err := ValidSeatIDs("2+1", 35)
	if err != nil {
		t.Fatalf("ValidSeatIDs: %v", err)
	}
	if len(ids) != 35 {
		t.Fatalf("got %d ids, want 35", len(ids))
	}
	if _, ok := ids["12B"]; !ok {
		t.Fatalf("12B should be a valid seat for 2+1 x 35")
	}
	if _, ok := ids["12C"]; ok {
		t.Fatalf("12C is past the last seat and should not be valid")
	}
}
