// internal/backend/external.go
package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/sirupsen/logrus"

	"abalign/internal/common"
	"abalign/internal/toolexec"
)

// External runs one of the supported multiple sequence aligners as a child
// process. Inputs are written under synthetic ids so that tool-side name
// mangling or reordering cannot misplace a row.
type External struct {
	method  Method
	path    string
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewExternal returns a backend for method, invoking the binary at path
// (resolved through $PATH when relative).
func NewExternal(method Method, path string, timeout time.Duration, log logrus.FieldLogger) (*External, error) {
	if !method.External() {
		return nil, common.Invalidf("%s is not an external aligner", method)
	}
	if path == "" {
		path = string(method)
	}
	return &External{method: method, path: path, timeout: timeout, log: log}, nil
}

func (x *External) Method() Method { return x.method }

func (x *External) Align(ctx context.Context, seqs []Sequence) ([]string, error) {
	if err := Validate(x.method, seqs); err != nil {
		return nil, err
	}
	if len(seqs) == 1 {
		return []string{seqs[0].Residues}, nil
	}

	dir, err := os.MkdirTemp("", "abalign-"+string(x.method)+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create a work dir for %s: %w", x.method, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.fa")
	out := filepath.Join(dir, "output.fa")
	if err := writeInput(in, seqs); err != nil {
		return nil, fmt.Errorf("failed to write %s input at %s: %w", x.method, in, err)
	}

	args, toStdout := x.args(in, out)
	stdout, err := toolexec.Run(ctx, toolexec.Command{
		Name:    string(x.method),
		Path:    x.path,
		Args:    args,
		Timeout: x.timeout,
		Dir:     dir,
	}, x.log)
	if err != nil {
		return nil, err
	}
	if toStdout {
		if err := os.WriteFile(out, stdout, 0o644); err != nil {
			return nil, fmt.Errorf("failed to store %s output: %w", x.method, err)
		}
	}

	rows, err := readOutput(out, seqs)
	if err != nil {
		return nil, &toolexec.ToolError{Tool: string(x.method), Err: err}
	}
	return rows, nil
}

// args returns the tool-specific command line and whether the alignment is
// written to stdout rather than to out.
func (x *External) args(in, out string) ([]string, bool) {
	switch x.method {
	case MethodClustalo:
		return []string{"-i", in, "-o", out, "--outfmt=fasta", "--force"}, false
	case MethodMafft:
		return []string{"--auto", "--quiet", in}, true
	default: // muscle v5
		return []string{"-align", in, "-output", out}, false
	}
}

func syntheticID(i int) string { return "s" + strconv.Itoa(i) }

func writeInput(path string, seqs []Sequence) error {
	var b strings.Builder
	for i, s := range seqs {
		fmt.Fprintf(&b, ">%s\n%s\n", syntheticID(i), s.Residues)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// readOutput parses the aligner's FASTA and returns rows in input order.
func readOutput(path string, seqs []Sequence) ([]string, error) {
	r, err := fastx.NewReader(seq.Unlimit, path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open aligner output: %w", err)
	}
	defer r.Close()

	byID := make(map[string]string, len(seqs))
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse aligner output: %w", err)
		}
		byID[string(rec.ID)] = string(rec.Seq.Seq)
	}

	rows := make([]string, len(seqs))
	for i, s := range seqs {
		gapped, ok := byID[syntheticID(i)]
		if !ok {
			return nil, fmt.Errorf("aligner output is missing sequence %q", s.Name)
		}
		if !common.EqualResidues(common.StripGaps(gapped), s.Residues) {
			return nil, fmt.Errorf("aligner changed the residues of %q", s.Name)
		}
		if rows[i], err = restoreResidues(gapped, s.Residues); err != nil {
			return nil, fmt.Errorf("sequence %q: %w", s.Name, err)
		}
	}
	if err := checkRows(seqs, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
