package match

import "testing"

func candidate(id string, count int) Candidate {
	return Candidate{ID: id, Result: &Result{Count: count}}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		minScore   int
		wantID     string
		wantOK     bool
	}{
		{
			name:       "highest score above minimum wins",
			candidates: []Candidate{candidate("a", 20), candidate("b", 42), candidate("c", 17)},
			minScore:   DefaultMinScore,
			wantID:     "b",
			wantOK:     true,
		},
		{
			name:       "score equal to minimum is rejected",
			candidates: []Candidate{candidate("a", 15)},
			minScore:   15,
			wantOK:     false,
		},
		{
			name:       "score one above minimum is accepted",
			candidates: []Candidate{candidate("a", 16)},
			minScore:   15,
			wantID:     "a",
			wantOK:     true,
		},
		{
			name:       "ties keep the first candidate",
			candidates: []Candidate{candidate("first", 30), candidate("second", 30)},
			minScore:   DefaultMinScore,
			wantID:     "first",
			wantOK:     true,
		},
		{
			name:       "nil result scores zero",
			candidates: []Candidate{{ID: "empty"}},
			minScore:   0,
			wantOK:     false,
		},
		{
			name:     "no candidates",
			minScore: DefaultMinScore,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Best(tt.candidates, tt.minScore)
			if ok != tt.wantOK {
				t.Fatalf("Best() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("Best() ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestRank(t *testing.T) {
	in := []Candidate{candidate("a", 3), candidate("b", 9), candidate("c", 3), candidate("d", 12)}

	ranked := Rank(in)

	wantOrder := []string{"d", "b", "a", "c"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].ID, id)
		}
	}
	if in[0].ID != "a" || in[3].ID != "d" {
		t.Error("Rank should not reorder its input")
	}
}
