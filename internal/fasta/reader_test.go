// internal/fasta/reader_test.go
package fasta

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const plain = `>h1 heavy chain
EVQLVESGGG
LVQPGG
>h2
QVQLQESGPG
`

func writeGz(t *testing.T, name string, data string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	fh, err := os.Create(fn)
	if err != nil {
		t.Fatalf("tmp: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	gw.Close()
	fh.Close()
	return fn
}

func TestReadSequences(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "in.fa")
	if err := os.WriteFile(fn, []byte(plain), 0o644); err != nil {
		t.Fatal(err)
	}
	seqs, err := ReadSequences(fn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(seqs) != 2 || seqs[0].Name != "h1" || seqs[0].Residues != "EVQLVESGGGLVQPGG" || seqs[1].Name != "h2" {
		t.Fatalf("seqs=%+v", seqs)
	}
}

func TestReadGzip(t *testing.T) {
	recs, err := Read(writeGz(t, "in.fa.gz", plain))
	if err != nil {
		t.Fatalf("read gz: %v", err)
	}
	if len(recs) != 2 || recs[1].ID != "h2" || string(recs[1].Seq) != "QVQLQESGPG" {
		t.Fatalf("gzip parse failed: %+v", recs)
	}
}

func TestReadStdin(t *testing.T) {
	orig := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r
	defer func() { os.Stdin = orig }()
	go func() { io.WriteString(w, plain); w.Close() }()

	recs, err := Read("-")
	if err != nil {
		t.Fatalf("read stdin: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records from stdin, got %d", len(recs))
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.fa")); err == nil {
		t.Fatalf("expected an error")
	}
}
