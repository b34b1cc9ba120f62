package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"abalign/internal/common"
)

func seqs(pairs ...string) []Sequence {
	out := make([]Sequence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Sequence{Name: pairs[i], Residues: pairs[i+1]})
	}
	return out
}

func assertContract(t *testing.T, in []Sequence, rows []string) {
	t.Helper()
	if len(rows) != len(in) {
		t.Fatalf("want %d rows, got %d", len(in), len(rows))
	}
	for i, r := range rows {
		if len(r) != len(rows[0]) {
			t.Fatalf("row %d length %d != %d", i, len(r), len(rows[0]))
		}
		if got := common.StripGaps(r); got != in[i].Residues {
			t.Fatalf("row %d strips to %q, want %q", i, got, in[i].Residues)
		}
	}
}

func TestGlobalIdentical(t *testing.T) {
	in := seqs("a", "ABCDEF", "b", "ABCDEF")
	rows, err := NewGlobal(DefaultGapOpen).Align(context.Background(), in)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	assertContract(t, in, rows)
	if rows[0] != "ABCDEF" || rows[1] != "ABCDEF" {
		t.Fatalf("identical inputs should not gain gaps: %q", rows)
	}
}

func TestGlobalDeletion(t *testing.T) {
	in := seqs("a", "ACDEFGHIKLMN", "b", "ACDEGHIKLMN")
	rows, err := NewGlobal(DefaultGapOpen).Align(context.Background(), in)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	assertContract(t, in, rows)
	if len(rows[0]) != 12 || strings.Count(rows[1], "-") != 1 {
		t.Fatalf("expected one gap in the shorter row, got %q", rows)
	}
}

func TestGlobalKeepsCaseAndUnknownLetters(t *testing.T) {
	in := seqs("a", "acdeOu", "b", "ACDEOU")
	rows, err := NewGlobal(DefaultGapOpen).Align(context.Background(), in)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	assertContract(t, in, rows)
}

func TestLocalKeepsFlanks(t *testing.T) {
	in := seqs("a", "GGGGWCHKMWYGGGG", "b", "PPWCHKMWYPPPPP")
	rows, err := NewLocal(DefaultGapOpen).Align(context.Background(), in)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	assertContract(t, in, rows)
	if !strings.Contains(rows[0], "WCHKMWY") || !strings.Contains(rows[1], "WCHKMWY") {
		t.Fatalf("local core missing: %q", rows)
	}
}

func TestPairwiseNeedsTwo(t *testing.T) {
	for _, in := range [][]Sequence{
		seqs("a", "ACD"),
		seqs("a", "ACD", "b", "ACD", "c", "ACD"),
	} {
		_, err := NewGlobal(DefaultGapOpen).Align(context.Background(), in)
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("want ErrValidation for %d sequences, got %v", len(in), err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   []Sequence
	}{
		{"empty", nil},
		{"no name", seqs("", "ACD")},
		{"duplicate", seqs("a", "ACD", "a", "ACD")},
		{"empty residues", seqs("a", "")},
		{"gapped input", seqs("a", "AC-D")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(MethodMafft, tt.in); !errors.Is(err, common.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod(" Global "); err != nil || m != MethodGlobal {
		t.Fatalf("ParseMethod: %v %v", m, err)
	}
	if _, err := ParseMethod("tcoffee"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Config{}, nil)
	for _, m := range Methods {
		b, err := r.Get(m)
		if err != nil {
			t.Fatalf("Get(%s): %v", m, err)
		}
		if b.Method() != m {
			t.Fatalf("Get(%s) returned %s", m, b.Method())
		}
	}
	if _, err := r.Get("nope"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}
