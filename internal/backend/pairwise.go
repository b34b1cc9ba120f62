// internal/backend/pairwise.go
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/align/matrix"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/seq/linear"

	"abalign/internal/common"
)

// DefaultGapOpen is the affine gap-open penalty added on top of the BLOSUM62
// linear gap cost.
const DefaultGapOpen = -10

// Pairwise aligns exactly two protein sequences with BLOSUM62 scoring.
type Pairwise struct {
	method  Method
	gapOpen int
}

// NewGlobal returns a Needleman-Wunsch (affine gap) backend.
func NewGlobal(gapOpen int) *Pairwise { return &Pairwise{method: MethodGlobal, gapOpen: gapOpen} }

// NewLocal returns a Smith-Waterman (affine gap) backend. Residues outside
// the local hit are kept and set against gaps.
func NewLocal(gapOpen int) *Pairwise { return &Pairwise{method: MethodLocal, gapOpen: gapOpen} }

func (p *Pairwise) Method() Method { return p.method }

func (p *Pairwise) Align(ctx context.Context, seqs []Sequence) ([]string, error) {
	if err := Validate(p.method, seqs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := proteinSeq(seqs[0].Residues)
	b := proteinSeq(seqs[1].Residues)

	var (
		aln []feat.Pair
		err error
	)
	switch p.method {
	case MethodGlobal:
		aln, err = align.NWAffine{Matrix: matrix.BLOSUM62, GapOpen: p.gapOpen}.Align(a, b)
	case MethodLocal:
		aln, err = align.SWAffine{Matrix: matrix.BLOSUM62, GapOpen: p.gapOpen}.Align(a, b)
	default:
		return nil, common.Invalidf("%s is not a pairwise method", p.method)
	}
	if err != nil {
		return nil, fmt.Errorf("%s alignment: %w", p.method, err)
	}

	rowA, rowB := "", ""
	if len(aln) > 0 {
		fa := align.Format(a, b, aln, alphabet.Letter(common.Gap))
		rowA, rowB = fmt.Sprint(fa[0]), fmt.Sprint(fa[1])
	}
	if p.method == MethodLocal {
		rowA, rowB = withFlanks(aln, seqs[0].Residues, seqs[1].Residues, rowA, rowB)
	}

	rows := make([]string, 2)
	for i, r := range []string{rowA, rowB} {
		if rows[i], err = restoreResidues(r, seqs[i].Residues); err != nil {
			return nil, fmt.Errorf("%s alignment of %q: %w", p.method, seqs[i].Name, err)
		}
	}
	if err := checkRows(seqs, rows); err != nil {
		return nil, fmt.Errorf("%s alignment: %w", p.method, err)
	}
	return rows, nil
}

// withFlanks pads a local hit with the unaligned prefix and suffix of each
// sequence so that both rows still carry every input residue.
func withFlanks(aln []feat.Pair, a, b, coreA, coreB string) (string, string) {
	aStart, aEnd, bStart, bEnd := 0, 0, 0, 0
	if len(aln) > 0 {
		first, last := aln[0].Features(), aln[len(aln)-1].Features()
		aStart, bStart = first[0].Start(), first[1].Start()
		aEnd, bEnd = last[0].End(), last[1].End()
	}
	gaps := func(n int) string { return strings.Repeat(string(common.Gap), n) }

	rowA := a[:aStart] + gaps(bStart) + coreA + a[aEnd:] + gaps(len(b)-bEnd)
	rowB := gaps(aStart) + b[:bStart] + coreB + gaps(len(a)-aEnd) + b[bEnd:]
	return rowA, rowB
}

// proteinSeq builds a biogo sequence, mapping letters outside the protein
// alphabet onto the ambiguity symbol.
func proteinSeq(residues string) *linear.Seq {
	norm := []byte(strings.ToUpper(residues))
	for i, c := range norm {
		if alphabet.Protein.IndexOf(alphabet.Letter(c)) < 0 {
			norm[i] = 'X'
		}
	}
	s := &linear.Seq{Seq: alphabet.BytesToLetters(norm)}
	s.Alpha = alphabet.Protein
	return s
}
