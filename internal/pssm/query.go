package pssm

import (
	"sort"

	"abalign/internal/common"
)

// TopN is how many residues a position summary lists.
const TopN = 5

// ResidueValue pairs a residue with a frequency or score.
type ResidueValue struct {
	Residue string  `json:"residue"`
	Value   float64 `json:"value"`
}

// PositionSummary describes one column.
type PositionSummary struct {
	Position       int            `json:"position"`
	Consensus      string         `json:"consensus"`
	Conservation   float64        `json:"conservation"`
	TopFrequencies []ResidueValue `json:"top_frequencies"`
	TopScores      []ResidueValue `json:"top_scores"`
}

// Summary returns the top frequencies and scores (descending, ties in
// canonical order) at pos.
func (p *Profile) Summary(pos int) (PositionSummary, error) {
	if pos < 0 || pos >= len(p.Frequencies) {
		return PositionSummary{}, common.Invalidf("position %d outside alignment of length %d", pos, len(p.Frequencies))
	}
	return PositionSummary{
		Position:       pos,
		Consensus:      p.Consensus[pos : pos+1],
		Conservation:   p.Conservation[pos],
		TopFrequencies: top(p.Frequencies[pos], TopN),
		TopScores:      top(p.Scores[pos], TopN),
	}, nil
}

func top(values map[string]float64, n int) []ResidueValue {
	list := make([]ResidueValue, 0, len(AminoAcids))
	for i := 0; i < len(AminoAcids); i++ {
		aa := AminoAcids[i : i+1]
		list = append(list, ResidueValue{Residue: aa, Value: values[aa]})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Value > list[j].Value })
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// RegionProfile is a [Start, Stop) slice of a Profile.
type RegionProfile struct {
	Start               int                  `json:"start"`
	Stop                int                  `json:"stop"`
	Frequencies         []map[string]float64 `json:"frequencies"`
	Scores              []map[string]float64 `json:"scores"`
	Conservation        []float64            `json:"conservation"`
	Consensus           string               `json:"consensus"`
	AverageConservation float64              `json:"average_conservation"`
}

// Empty reports whether the region selected no columns.
func (r RegionProfile) Empty() bool { return len(r.Conservation) == 0 }

// Region slices every per-column series to [start, stop). Out-of-range or
// inverted bounds give an empty RegionProfile rather than an error.
func (p *Profile) Region(start, stop int) RegionProfile {
	n := len(p.Conservation)
	if start < 0 || start >= n || stop > n || stop < start {
		return RegionProfile{}
	}
	r := RegionProfile{
		Start:        start,
		Stop:         stop,
		Frequencies:  p.Frequencies[start:stop:stop],
		Scores:       p.Scores[start:stop:stop],
		Conservation: p.Conservation[start:stop:stop],
		Consensus:    p.Consensus[start:stop],
	}
	if len(r.Conservation) > 0 {
		sum := 0.0
		for _, c := range r.Conservation {
			sum += c
		}
		r.AverageConservation = sum / float64(len(r.Conservation))
	}
	return r
}
