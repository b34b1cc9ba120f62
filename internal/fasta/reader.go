// internal/fasta/reader.go
package fasta

import (
	"fmt"
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"abalign/internal/backend"
)

// Record is one FASTA entry; ID is the first word of the header.
type Record struct {
	ID  string
	Seq []byte
}

// Read loads every record of path ("-" for stdin; .gz and other compressed
// inputs are detected by the reader).
func Read(path string) ([]Record, error) {
	r, err := fastx.NewReader(seq.Unlimit, path, "")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	var out []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out = append(out, Record{
			ID:  string(rec.ID),
			Seq: append([]byte(nil), rec.Seq.Seq...), // the reader reuses its buffers
		})
	}
	return out, nil
}

// ReadSequences loads path as alignment input.
func ReadSequences(path string) ([]backend.Sequence, error) {
	recs, err := Read(path)
	if err != nil {
		return nil, err
	}
	out := make([]backend.Sequence, len(recs))
	for i, r := range recs {
		out[i] = backend.Sequence{Name: r.ID, Residues: string(r.Seq)}
	}
	return out, nil
}
