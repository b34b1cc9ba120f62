// Package alignment holds the alignment data products: per-sequence records,
// the character matrix, consensus, statistics and the PSSM payload.
//
// A Result is assembled once by Build and is not mutated afterwards, except
// that annotation works on copies of its Sequences.
package alignment

import (
	"fmt"
	"strings"
	"time"

	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/msa"
	"abalign/internal/pssm"
)

// Region is one labelled range (FR1, CDR1, ...) of a sequence. Start and Stop
// are inclusive aligned coordinates; OriginalStart and OriginalStop are the
// ungapped coordinates reported by the numbering tool. Mapped is false when
// the projection fell back to unmapped coordinates.
type Region struct {
	Name          string `json:"name"`
	Start         int    `json:"start"`
	Stop          int    `json:"stop"`
	OriginalStart int    `json:"original_start"`
	OriginalStop  int    `json:"original_stop"`
	Sequence      string `json:"sequence"`
	Color         string `json:"color"`
	Mapped        bool   `json:"mapped"`
}

// Sequence is one aligned record. Aligned always uses common.Gap as its
// only gap symbol; Build rewrites '.' padding on the way in.
type Sequence struct {
	Name         string   `json:"name"`
	Original     string   `json:"original_sequence"`
	Aligned      string   `json:"aligned_sequence"`
	GapPositions []int    `json:"gap_positions"`
	Annotations  []Region `json:"annotations,omitempty"`
}

// Copy returns a deep copy of s.
func (s Sequence) Copy() Sequence {
	c := s
	c.GapPositions = append([]int(nil), s.GapPositions...)
	if s.Annotations != nil {
		c.Annotations = append([]Region(nil), s.Annotations...)
	}
	return c
}

// Stats summarizes an alignment.
type Stats struct {
	Length   int     `json:"length"`
	GapCount int     `json:"gap_count"`
	Identity float64 `json:"identity"`
}

// Metadata carries derived payloads.
type Metadata struct {
	PSSM *pssm.Profile `json:"pssm,omitempty"`
}

// Result is a complete alignment.
type Result struct {
	ID        string         `json:"id"`
	Sequences []Sequence     `json:"sequences"`
	Matrix    msa.Matrix     `json:"alignment_matrix"`
	Consensus string         `json:"consensus"`
	Method    backend.Method `json:"method"`
	CreatedAt time.Time      `json:"created_at"`
	Stats     Stats          `json:"stats"`
	Metadata  Metadata       `json:"metadata"`
}

// Length is the number of alignment columns.
func (r *Result) Length() int { return r.Matrix.Cols() }

// Lookup returns the sequence named name.
func (r *Result) Lookup(name string) (Sequence, bool) {
	for _, s := range r.Sequences {
		if s.Name == name {
			return s, true
		}
	}
	return Sequence{}, false
}

// Build assembles a Result from backend rows (same order as inputs) and
// checks it. The PSSM payload is left for the caller.
func Build(id string, method backend.Method, createdAt time.Time, inputs []backend.Sequence, rows []string) (*Result, error) {
	if len(rows) != len(inputs) {
		return nil, fmt.Errorf("backend returned %d rows for %d sequences", len(rows), len(inputs))
	}
	rows = normalizeRows(rows)
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(rows[0]) {
			return nil, fmt.Errorf("alignment %s: row %q has %d columns, want %d", id, inputs[i].Name, len(rows[i]), len(rows[0]))
		}
	}
	seqs := make([]Sequence, len(inputs))
	for i, in := range inputs {
		seqs[i] = Sequence{
			Name:         in.Name,
			Original:     in.Residues,
			Aligned:      rows[i],
			GapPositions: common.GapPositions(rows[i]),
		}
	}
	m := msa.BuildMatrix(rows)
	r := &Result{
		ID:        id,
		Sequences: seqs,
		Matrix:    m,
		Consensus: msa.Consensus(m),
		Method:    method,
		CreatedAt: createdAt,
		Stats:     ComputeStats(m),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// normalizeRows returns a copy of rows with every gap written as common.Gap.
func normalizeRows(rows []string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = common.NormalizeGaps(r)
	}
	return out
}

// ComputeStats counts gaps and the fraction of columns in which every row
// carries the same residue.
func ComputeStats(m msa.Matrix) Stats {
	st := Stats{Length: m.Cols()}
	if st.Length == 0 {
		return st
	}
	identical := 0
	for j := 0; j < st.Length; j++ {
		same := true
		first := m[0][j]
		for _, row := range m {
			if common.IsGap(row[j]) {
				st.GapCount++
				same = false
				continue
			}
			if !strings.EqualFold(string(row[j]), string(first)) {
				same = false
			}
		}
		if same {
			identical++
		}
	}
	st.Identity = float64(identical) / float64(st.Length)
	return st
}

// Validate checks every structural invariant of r.
func (r *Result) Validate() error {
	if len(r.Sequences) == 0 {
		return fmt.Errorf("alignment %s has no sequences", r.ID)
	}
	if len(r.Matrix) != len(r.Sequences) || !r.Matrix.Rectangular() {
		return fmt.Errorf("alignment %s: matrix is not %d rectangular rows", r.ID, len(r.Sequences))
	}
	n := r.Matrix.Cols()
	if len(r.Consensus) != n {
		return fmt.Errorf("alignment %s: consensus length %d != %d", r.ID, len(r.Consensus), n)
	}
	for i, s := range r.Sequences {
		if len(s.Aligned) != n || string(r.Matrix[i]) != s.Aligned {
			return fmt.Errorf("alignment %s: row %q does not match the matrix", r.ID, s.Name)
		}
		if common.StripGaps(s.Aligned) != s.Original {
			return fmt.Errorf("alignment %s: row %q does not strip back to its original", r.ID, s.Name)
		}
		gaps := common.GapPositions(s.Aligned)
		if len(gaps) != len(s.GapPositions) {
			return fmt.Errorf("alignment %s: gap positions of %q are stale", r.ID, s.Name)
		}
		for k := range gaps {
			if gaps[k] != s.GapPositions[k] {
				return fmt.Errorf("alignment %s: gap positions of %q are stale", r.ID, s.Name)
			}
		}
	}
	if p := r.Metadata.PSSM; p != nil {
		if err := validateProfile(p, n); err != nil {
			return fmt.Errorf("alignment %s: %w", r.ID, err)
		}
	}
	return nil
}

// validateProfile checks that every per-column series of p covers n columns.
func validateProfile(p *pssm.Profile, n int) error {
	series := []struct {
		name string
		len  int
	}{
		{"alignment_length", p.AlignmentLength},
		{"frequencies", len(p.Frequencies)},
		{"scores", len(p.Scores)},
		{"conservation", len(p.Conservation)},
		{"consensus", len(p.Consensus)},
	}
	for _, s := range series {
		if s.len != n {
			return fmt.Errorf("pssm %s covers %d columns, want %d", s.name, s.len, n)
		}
	}
	return nil
}
