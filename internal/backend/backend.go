// Package backend hides every alignment strategy behind one Align contract.
//
// Pairwise strategies run in-process (biogo dynamic programming); multiple
// sequence strategies shell out to an external aligner through toolexec. All
// of them return gapped strings in input order, of equal length, that strip
// back to the input residues.
package backend

import (
	"context"
	"fmt"
	"strings"

	"abalign/internal/common"
)

// Method selects an alignment strategy.
type Method string

const (
	MethodGlobal   Method = "global"
	MethodLocal    Method = "local"
	MethodClustalo Method = "clustalo"
	MethodMafft    Method = "mafft"
	MethodMuscle   Method = "muscle"
)

// Methods lists every supported strategy in display order.
var Methods = []Method{MethodGlobal, MethodLocal, MethodClustalo, MethodMafft, MethodMuscle}

// Pairwise reports whether m needs exactly two sequences.
func (m Method) Pairwise() bool { return m == MethodGlobal || m == MethodLocal }

// External reports whether m is served by an external multiple aligner.
func (m Method) External() bool {
	return m == MethodClustalo || m == MethodMafft || m == MethodMuscle
}

// ParseMethod maps a user string onto a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", common.Invalidf("unsupported alignment method %q", s)
}

// Sequence is one named, ungapped input.
type Sequence struct {
	Name     string
	Residues string
}

// Backend aligns sequences and returns one gapped row per input, same order.
type Backend interface {
	Method() Method
	Align(ctx context.Context, seqs []Sequence) ([]string, error)
}

// Validate rejects inputs that no backend should see.
func Validate(m Method, seqs []Sequence) error {
	if len(seqs) == 0 {
		return common.Invalidf("at least one sequence is required")
	}
	if m.Pairwise() && len(seqs) != 2 {
		return common.Invalidf("%s alignment needs exactly 2 sequences, got %d", m, len(seqs))
	}
	seen := make(map[string]struct{}, len(seqs))
	for i, s := range seqs {
		if s.Name == "" {
			return common.Invalidf("sequence %d has no name", i)
		}
		if _, dup := seen[s.Name]; dup {
			return common.Invalidf("duplicate sequence name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Residues == "" {
			return common.Invalidf("sequence %q is empty", s.Name)
		}
		if strings.IndexFunc(s.Residues, func(r rune) bool { return r == common.Gap || r == '.' }) >= 0 {
			return common.Invalidf("sequence %q contains gap symbols", s.Name)
		}
	}
	return nil
}

// restoreResidues re-inserts the original residues (and their case) into a
// gapped row produced from a normalized copy of original.
func restoreResidues(gapped, original string) (string, error) {
	out := []byte(gapped)
	k := 0
	for i := range out {
		if common.IsGap(out[i]) {
			out[i] = common.Gap
			continue
		}
		if k >= len(original) {
			return "", fmt.Errorf("aligned row has more residues than the input (%d)", len(original))
		}
		out[i] = original[k]
		k++
	}
	if k != len(original) {
		return "", fmt.Errorf("aligned row carries %d of %d input residues", k, len(original))
	}
	return string(out), nil
}

// checkRows enforces the equal-length, residue-preserving contract.
func checkRows(seqs []Sequence, rows []string) error {
	if len(rows) != len(seqs) {
		return fmt.Errorf("got %d aligned rows for %d sequences", len(rows), len(seqs))
	}
	for i, r := range rows {
		if len(r) != len(rows[0]) {
			return fmt.Errorf("aligned row %q has length %d, want %d", seqs[i].Name, len(r), len(rows[0]))
		}
		if !common.EqualResidues(common.StripGaps(r), seqs[i].Residues) {
			return fmt.Errorf("aligned row %q does not match its input residues", seqs[i].Name)
		}
	}
	return nil
}
