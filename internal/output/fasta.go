package output

import (
	"fmt"
	"io"

	"abalign/internal/alignment"
)

// WriteFASTA writes the aligned rows as gapped FASTA, one line per record.
func WriteFASTA(w io.Writer, r *alignment.Result) error {
	for _, s := range r.Sequences {
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", s.Name, s.Aligned); err != nil {
			return err
		}
	}
	return nil
}
