package pssm

import (
	"errors"
	"math"
	"testing"

	"abalign/internal/common"
	"abalign/internal/msa"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIdenticalColumns(t *testing.T) {
	p := Calculate(msa.FromStrings([][]string{{"E", "V"}, {"E", "V"}}), DefaultOptions())
	if p.Consensus != "EV" {
		t.Fatalf("consensus=%q want EV", p.Consensus)
	}
	if len(p.Conservation) != 2 || p.Conservation[0] != 1.0 || p.Conservation[1] != 1.0 {
		t.Fatalf("conservation=%v want [1 1]", p.Conservation)
	}
	if p.AlignmentLength != 2 || p.SequenceCount != 2 {
		t.Fatalf("length=%d count=%d", p.AlignmentLength, p.SequenceCount)
	}
	if !near(p.Frequencies[0]["E"], 3.0/22.0) || !near(p.Frequencies[0]["A"], 1.0/22.0) {
		t.Fatalf("frequencies=%v", p.Frequencies[0])
	}
	if want := math.Log2((3.0 / 22.0) / 0.054); !near(p.Scores[0]["E"], want) {
		t.Fatalf("score E=%v want %v", p.Scores[0]["E"], want)
	}
}

func TestFrequenciesSumToOneAndConservationBounded(t *testing.T) {
	m := msa.BuildMatrix([]string{
		"EVQLVESGG-",
		"QVQLQESGPX",
		"EVKLLEsGGB",
		"DIQMTQSPS-",
	})
	p := Calculate(m, DefaultOptions())
	for j := range p.Frequencies {
		sum := 0.0
		for _, f := range p.Frequencies[j] {
			sum += f
		}
		if math.Abs(sum-1) > 0.05 {
			t.Fatalf("column %d frequencies sum to %v", j, sum)
		}
		if len(p.Frequencies[j]) != 20 {
			t.Fatalf("column %d has %d residues", j, len(p.Frequencies[j]))
		}
		if c := p.Conservation[j]; c < 0 || c > 1 {
			t.Fatalf("column %d conservation %v", j, c)
		}
	}
	// lower-case 's' counts as S
	if p.Consensus[6] != 'S' {
		t.Fatalf("consensus[6]=%c want S", p.Consensus[6])
	}
}

func TestDominancePolicy(t *testing.T) {
	// ten sequences, 6 x A and 4 x C: top/second = 7/5 < 2 so entropy applies
	rows := []string{"A", "A", "A", "A", "A", "A", "C", "C", "C", "C"}
	p := Calculate(msa.BuildMatrix(rows), DefaultOptions())
	if p.Conservation[0] >= 1 || p.Conservation[0] <= 0 {
		t.Fatalf("mixed column conservation=%v want in (0,1)", p.Conservation[0])
	}

	// identical column dominated by one residue is forced to 1.0
	same := []string{"W", "W", "W", "W", "W", "W", "W", "W", "W", "W"}
	if c := Calculate(msa.BuildMatrix(same), DefaultOptions()).Conservation[0]; c != 1.0 {
		t.Fatalf("dominant column conservation=%v want 1", c)
	}

	// without the policy the same column is scored by entropy alone
	opt := DefaultOptions()
	opt.DominanceRatio = 0
	if c := Calculate(msa.BuildMatrix(same), opt).Conservation[0]; c >= 1 || c <= 0 {
		t.Fatalf("entropy-only conservation=%v", c)
	}
}

func TestUniformColumnHasZeroConservation(t *testing.T) {
	rows := make([]string, 0, 20)
	for i := 0; i < len(AminoAcids); i++ {
		rows = append(rows, AminoAcids[i:i+1])
	}
	p := Calculate(msa.BuildMatrix(rows), DefaultOptions())
	if !near(p.Conservation[0], 0) {
		t.Fatalf("uniform column conservation=%v want 0", p.Conservation[0])
	}
	if p.Consensus != "A" {
		t.Fatalf("tie should resolve to canonical order, got %q", p.Consensus)
	}
}

func TestGapOnlyColumn(t *testing.T) {
	p := Calculate(msa.BuildMatrix([]string{"-", "-"}), DefaultOptions())
	if !near(p.Frequencies[0]["K"], 0.05) || p.Consensus != "A" {
		t.Fatalf("gap column should be flat: %v %q", p.Frequencies[0], p.Consensus)
	}

	opt := DefaultOptions()
	opt.Pseudocount = 0
	p = Calculate(msa.BuildMatrix([]string{"-", "-"}), opt)
	if p.Frequencies[0]["A"] != 0 || p.Scores[0]["A"] != MissingScore || p.Conservation[0] != 0 {
		t.Fatalf("no-evidence column: f=%v s=%v c=%v", p.Frequencies[0]["A"], p.Scores[0]["A"], p.Conservation[0])
	}
}

func TestEmptyMatrix(t *testing.T) {
	p := Calculate(nil, DefaultOptions())
	if p.AlignmentLength != 0 || p.SequenceCount != 0 || len(p.Frequencies) != 0 || p.Consensus != "" {
		t.Fatalf("empty profile expected, got %+v", p)
	}
}

func TestSummary(t *testing.T) {
	p := Calculate(msa.BuildMatrix([]string{"EV", "EV", "DV"}), DefaultOptions())
	s, err := p.Summary(0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Consensus != "E" || len(s.TopFrequencies) != TopN || len(s.TopScores) != TopN {
		t.Fatalf("summary=%+v", s)
	}
	if s.TopFrequencies[0].Residue != "E" || s.TopFrequencies[1].Residue != "D" {
		t.Fatalf("top frequencies out of order: %+v", s.TopFrequencies)
	}
	for i := 1; i < len(s.TopScores); i++ {
		if s.TopScores[i].Value > s.TopScores[i-1].Value {
			t.Fatalf("scores not descending: %+v", s.TopScores)
		}
	}
	if _, err := p.Summary(2); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation out of range, got %v", err)
	}
}

func TestRegion(t *testing.T) {
	p := Calculate(msa.BuildMatrix([]string{"EVQL", "EVKL"}), DefaultOptions())
	r := p.Region(1, 3)
	if r.Empty() || r.Consensus != "VK" {
		t.Fatalf("region=%+v", r)
	}
	want := (p.Conservation[1] + p.Conservation[2]) / 2
	if !near(r.AverageConservation, want) {
		t.Fatalf("avg=%v want %v", r.AverageConservation, want)
	}

	for _, b := range [][2]int{{4, 4}, {0, 5}, {-1, 2}, {3, 1}} {
		if got := p.Region(b[0], b[1]); !got.Empty() {
			t.Fatalf("Region(%d,%d) should be empty, got %+v", b[0], b[1], got)
		}
	}
}
