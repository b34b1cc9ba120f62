package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/jobs"
	"abalign/internal/pretty"
	"abalign/internal/pssm"
	"abalign/pkg/api"
)

func sample(t *testing.T) *alignment.Result {
	t.Helper()
	r, err := alignment.Build("aln-1", backend.MethodMafft, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		[]backend.Sequence{{Name: "h1", Residues: "EVQLVE"}, {Name: "h2", Residues: "EVLVE"}},
		[]string{"EVQLVE", "EV-LVE"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r.Metadata.PSSM = pssm.Calculate(r.Matrix, pssm.DefaultOptions())
	return r
}

func TestAlignmentWireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlignmentJSON(&buf, sample(t), nil); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "method", "created_at", "sequences", "alignment_matrix", "consensus", "stats", "pssm"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, buf.String())
		}
	}
	var v api.AlignmentV1
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	back, err := FromAPIAlignment(v)
	if err != nil {
		t.Fatalf("from api: %v", err)
	}
	if back.Consensus != "EVQLVE" || back.Sequences[1].GapPositions[0] != 2 || back.Metadata.PSSM.AlignmentLength != 6 {
		t.Fatalf("rebuilt=%+v", back)
	}
}

func TestFromAPIAlignmentRejectsTampering(t *testing.T) {
	v := ToAPIAlignment(sample(t))
	v.Sequences[1].Aligned = "EV-LVQ"
	if _, err := FromAPIAlignment(v); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	v = ToAPIAlignment(sample(t))
	v.Method = "blast"
	if _, err := FromAPIAlignment(v); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	v = ToAPIAlignment(sample(t))
	v.Sequences[1].Original = v.Sequences[1].Original[:3]
	v.Sequences[1].Aligned = v.Sequences[1].Original
	if _, err := FromAPIAlignment(v); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("ragged rows: want validation error, got %v", err)
	}
	v = ToAPIAlignment(sample(t))
	v.PSSM.Consensus = v.PSSM.Consensus[:1]
	if _, err := FromAPIAlignment(v); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("truncated pssm: want validation error, got %v", err)
	}
}

func TestWriteFASTA(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFASTA(&buf, sample(t)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != ">h1\nEVQLVE\n>h2\nEV-LVE\n" {
		t.Fatalf("fasta=%q", buf.String())
	}
}

func TestWriteAlignmentText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlignmentText(&buf, sample(t), nil, pretty.DefaultOptions); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "method=mafft sequences=2 residues=11 length=6 gaps=1") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "EV-LVE 5") {
		t.Fatalf("block missing:\n%s", out)
	}
}

func TestWriteAnnotationText(t *testing.T) {
	r := sample(t)
	ann := &annotate.Result{
		AlignmentID: r.ID,
		Scheme:      "imgt",
		Sequences:   r.Sequences,
		RegionMappings: map[string][]annotate.RegionMapping{
			"FR1": {{SequenceName: "h1", AlignedStart: 0, AlignedStop: 2, Mapped: true, Color: "#FFB3BA"}},
			"FR4": {{SequenceName: "h2", AlignedStart: 5, AlignedStop: 5, OriginalStart: 30, OriginalStop: 40}},
		},
	}
	var buf bytes.Buffer
	if err := WriteAnnotationText(&buf, ann, r.Consensus, pretty.DefaultOptions); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "scheme=imgt") || !strings.Contains(out, "30-40") || !strings.Contains(out, "1 region(s) could not be verified") {
		t.Fatalf("annotation text:\n%s", out)
	}
}

func TestWriteSummaryAndRegion(t *testing.T) {
	p := sample(t).Metadata.PSSM
	s, err := p.Summary(0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteSummaryText(&buf, s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "consensus\tE") {
		t.Fatalf("summary=%q", buf.String())
	}
	buf.Reset()
	if err := WriteRegionProfileText(&buf, p.Region(0, 2)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "# columns 0-2 consensus=EV") {
		t.Fatalf("region=%q", buf.String())
	}
	buf.Reset()
	WriteRegionProfileText(&buf, p.Region(9, 12))
	if buf.String() != "# empty region\n" {
		t.Fatalf("empty region=%q", buf.String())
	}
}

func TestJobTableAndAPI(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	done := now.Add(-time.Minute)
	j := jobs.Job{
		ID: "0123456789abcdef", Type: jobs.TypeCreation, Status: jobs.StatusCompleted,
		Progress: 1, Message: "Completed", CreatedAt: now.Add(-2 * time.Hour), CompletedAt: &done,
		Result: &jobs.Result{Alignment: sample(t)},
	}
	var buf bytes.Buffer
	if err := WriteJobTable(&buf, []JobRow{{Job: j, Source: "a.fa"}}, now); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "01234567") || !strings.Contains(out, "2 hours ago") || !strings.Contains(out, "100%") {
		t.Fatalf("table:\n%s", out)
	}
	v := ToAPIJob(j, "a.fa")
	if v.Status != "completed" || v.CompletedAt == "" || v.Alignment == nil || v.Annotation != nil || v.Source != "a.fa" {
		t.Fatalf("job v1=%+v", v)
	}
}
