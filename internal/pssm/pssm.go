// Package pssm computes a position-specific scoring matrix over an alignment:
// per-column residue frequencies with pseudocounts, log-odds scores against a
// background distribution, and an entropy-based conservation score.
package pssm

import (
	"math"

	"abalign/internal/msa"
)

// AminoAcids is the canonical residue order. It fixes map iteration for
// output and breaks consensus ties.
const AminoAcids = "ACDEFGHIKLMNPQRSTVWY"

const (
	// MissingScore is reported for a residue whose frequency is zero.
	MissingScore = -10.0

	DefaultPseudocount = 1.0

	// DefaultDominanceRatio forces conservation to 1.0 when the most frequent
	// residue is at least this many times as frequent as the runner-up. It
	// stands in for single-dominant-residue columns, where the pseudocount
	// otherwise keeps entropy well above zero. The jump at the threshold is
	// deliberate and kept as-is; set Options.DominanceRatio <= 0 to disable.
	DefaultDominanceRatio = 2.0
)

var maxEntropy = math.Log2(float64(len(AminoAcids)))

// aaIndex maps a byte (either case) to its position in AminoAcids, or -1.
var aaIndex = func() (idx [256]int8) {
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(AminoAcids); i++ {
		idx[AminoAcids[i]] = int8(i)
		idx[AminoAcids[i]+('a'-'A')] = int8(i)
	}
	return idx
}()

// Background is the expected frequency of each canonical residue.
type Background map[string]float64

// DefaultBackground returns residue frequencies of UniProtKB/Swiss-Prot
// rounded to three decimals.
func DefaultBackground() Background {
	return Background{
		"A": 0.074, "C": 0.025, "D": 0.054, "E": 0.054, "F": 0.047,
		"G": 0.074, "H": 0.026, "I": 0.068, "K": 0.058, "L": 0.099,
		"M": 0.025, "N": 0.045, "P": 0.039, "Q": 0.034, "R": 0.052,
		"S": 0.057, "T": 0.051, "V": 0.073, "W": 0.013, "Y": 0.032,
	}
}

// Options controls Calculate.
type Options struct {
	Pseudocount    float64
	Background     Background
	DominanceRatio float64
}

// DefaultOptions returns pseudocount 1, the default background and the 2x
// dominance policy.
func DefaultOptions() Options {
	return Options{
		Pseudocount:    DefaultPseudocount,
		Background:     DefaultBackground(),
		DominanceRatio: DefaultDominanceRatio,
	}
}

// Profile is the PSSM payload attached to an alignment.
type Profile struct {
	Frequencies     []map[string]float64 `json:"frequencies"`
	Scores          []map[string]float64 `json:"scores"`
	Conservation    []float64            `json:"conservation"`
	Consensus       string               `json:"consensus"`
	Background      Background           `json:"background"`
	AlignmentLength int                  `json:"alignment_length"`
	SequenceCount   int                  `json:"sequence_count"`
}

// Calculate builds a Profile over m. Gaps and non-canonical symbols are not
// counted; residues are case-normalized.
func Calculate(m msa.Matrix, opt Options) *Profile {
	if opt.Background == nil {
		opt.Background = DefaultBackground()
	}
	if opt.Pseudocount < 0 {
		opt.Pseudocount = 0
	}
	cols := m.Cols()
	p := &Profile{
		Frequencies:     make([]map[string]float64, 0, cols),
		Scores:          make([]map[string]float64, 0, cols),
		Conservation:    make([]float64, 0, cols),
		Background:      opt.Background,
		AlignmentLength: cols,
		SequenceCount:   len(m),
	}
	if len(m) == 0 {
		p.SequenceCount = 0
		return p
	}

	consensus := make([]byte, cols)
	for j := 0; j < cols; j++ {
		freqs, evidence := columnFrequencies(m, j, opt.Pseudocount)

		fm := make(map[string]float64, len(AminoAcids))
		sm := make(map[string]float64, len(AminoAcids))
		best := 0
		for i, f := range freqs {
			aa := AminoAcids[i : i+1]
			fm[aa] = f
			sm[aa] = logOdds(f, opt.Background[aa])
			if f > freqs[best] {
				best = i
			}
		}
		p.Frequencies = append(p.Frequencies, fm)
		p.Scores = append(p.Scores, sm)
		consensus[j] = AminoAcids[best]

		c := 0.0
		if evidence {
			c = conservation(freqs, opt.DominanceRatio)
		}
		p.Conservation = append(p.Conservation, c)
	}
	p.Consensus = string(consensus)
	return p
}

// columnFrequencies returns pseudocount-smoothed frequencies for column j in
// AminoAcids order. evidence is false when nothing at all was counted.
func columnFrequencies(m msa.Matrix, j int, pseudo float64) (freqs [20]float64, evidence bool) {
	var counts [20]float64
	total := 0.0
	for _, row := range m {
		if k := aaIndex[row[j]]; k >= 0 {
			counts[k]++
			total++
		}
	}
	denom := total + pseudo*float64(len(AminoAcids))
	if denom == 0 {
		return freqs, false
	}
	for i, c := range counts {
		freqs[i] = (c + pseudo) / denom
	}
	return freqs, true
}

func logOdds(f, bg float64) float64 {
	if f <= 0 {
		return MissingScore
	}
	if bg <= 0 {
		bg = 1 / float64(len(AminoAcids))
	}
	return math.Log2(f / bg)
}

// conservation is 1 - H/log2(20), overridden to 1.0 by the dominance policy.
func conservation(freqs [20]float64, dominance float64) float64 {
	top, second := 0.0, 0.0
	for _, f := range freqs {
		switch {
		case f > top:
			top, second = f, top
		case f > second:
			second = f
		}
	}
	if dominance > 0 && top >= dominance*second {
		return 1.0
	}
	h := 0.0
	for _, f := range freqs {
		if f > 0 {
			h -= f * math.Log2(f)
		}
	}
	c := 1 - h/maxEntropy
	return math.Max(0, math.Min(1, c))
}
