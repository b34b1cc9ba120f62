// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"abalign/internal/jsonlutil"
	"abalign/internal/output"
)

// StartJobJSONLWriter streams each finished job as one JSON line (v1).
func StartJobJSONLWriter(out io.Writer, bufSize int) (chan<- output.JobRow, <-chan error) {
	return jsonlutil.Start[output.JobRow](out, bufSize,
		func(enc *json.Encoder, r output.JobRow) error {
			return enc.Encode(output.ToAPIJob(r.Job, r.Source))
		},
		IsBrokenPipe,
	)
}

// StartJobWriter spins up a writer goroutine for job rows. "jsonl" streams;
// "text" buffers and prints one table when the channel closes.
func StartJobWriter(out io.Writer, format string, bufSize int) (chan<- output.JobRow, <-chan error) {
	switch format {
	case output.FormatJSONL:
		return StartJobJSONLWriter(out, bufSize)
	case output.FormatText:
		if bufSize <= 0 {
			bufSize = 64
		}
		in := make(chan output.JobRow, bufSize)
		errCh := make(chan error, 1)
		go func() {
			var rows []output.JobRow
			for r := range in {
				rows = append(rows, r)
			}
			err := output.WriteJobTable(out, rows, time.Now())
			if IsBrokenPipe(err) {
				err = nil
			}
			errCh <- err
		}()
		return in, errCh
	}
	in := make(chan output.JobRow)
	errCh := make(chan error, 1)
	go func() {
		for range in {
		}
		errCh <- fmt.Errorf("unknown job format %q (no writer registered)", format)
	}()
	return in, errCh
}
