package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/jobs"
	"abalign/internal/toolexec"
)

// scripted returns fixed rows, or err.
type scripted struct {
	method backend.Method
	rows   []string
	err    error
	calls  atomic.Int32
}

func (s *scripted) Method() backend.Method { return s.method }

func (s *scripted) Align(_ context.Context, seqs []backend.Sequence) ([]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type staticRegions map[string]map[string]annotate.Boundary

func (r staticRegions) RegionsFor(_ context.Context, residues, _ string) (map[string]annotate.Boundary, error) {
	return r[residues], nil
}

func registry(bs ...backend.Backend) *backend.Registry {
	r := backend.NewRegistry(backend.Config{}, nil)
	for _, b := range bs {
		r.Register(b)
	}
	return r
}

func in(pairs ...string) []backend.Sequence {
	var out []backend.Sequence
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, backend.Sequence{Name: pairs[i], Residues: pairs[i+1]})
	}
	return out
}

func TestCreateAlignmentIdenticalPair(t *testing.T) {
	e := New(Config{}, registry(), nil)
	res, err := e.CreateAlignment(context.Background(), in("a", "ABCDEF", "b", "ABCDEF"), backend.MethodGlobal)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Stats.Identity != 1.0 || res.Stats.GapCount != 0 || res.Stats.Length != 6 {
		t.Fatalf("stats=%+v", res.Stats)
	}
	if res.ID == "" || res.Method != backend.MethodGlobal || res.CreatedAt.IsZero() {
		t.Fatalf("result header: id=%q method=%q created=%v", res.ID, res.Method, res.CreatedAt)
	}
	p := res.Metadata.PSSM
	if p == nil || p.AlignmentLength != 6 || p.SequenceCount != 2 {
		t.Fatalf("pssm=%+v", p)
	}
}

func TestCreateAlignmentInvariants(t *testing.T) {
	fake := &scripted{method: backend.MethodMafft, rows: []string{"EVQLVESGG", "EV-LVESGG", "QVQLV-SGG"}}
	e := New(Config{}, registry(fake), nil)
	res, err := e.CreateAlignment(context.Background(),
		in("h1", "EVQLVESGG", "h2", "EVLVESGG", "h3", "QVQLVSGG"), backend.MethodMafft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	n := res.Length()
	if len(res.Consensus) != n {
		t.Fatalf("consensus length %d != %d", len(res.Consensus), n)
	}
	for i, row := range res.Matrix {
		if len(row) != n {
			t.Fatalf("row %d length %d", i, len(row))
		}
	}
	for _, s := range res.Sequences {
		if common.StripGaps(s.Aligned) != s.Original {
			t.Fatalf("%s does not strip back", s.Name)
		}
	}
	if res.Stats.GapCount != 2 {
		t.Fatalf("gap count=%d", res.Stats.GapCount)
	}
	for j, c := range res.Metadata.PSSM.Conservation {
		if c < 0 || c > 1 {
			t.Fatalf("conservation[%d]=%v", j, c)
		}
		sum := 0.0
		for _, f := range res.Metadata.PSSM.Frequencies[j] {
			sum += f
		}
		if math.Abs(sum-1) > 0.05 {
			t.Fatalf("frequencies[%d] sum to %v", j, sum)
		}
	}
}

func TestCreateAlignmentErrors(t *testing.T) {
	toolErr := &toolexec.ToolError{Tool: "mafft", Err: errors.New("exit status 1")}
	bad := &scripted{method: backend.MethodMafft, err: toolErr}
	ragged := &scripted{method: backend.MethodMuscle, rows: []string{"EVQL", "EV"}}
	e := New(Config{}, registry(bad, ragged), nil)

	if _, err := e.CreateAlignment(context.Background(), nil, backend.MethodMafft); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("empty input: %v", err)
	}
	if _, err := e.CreateAlignment(context.Background(), in("a", "EV"), backend.Method("blast")); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("unknown method: %v", err)
	}
	var te *toolexec.ToolError
	if _, err := e.CreateAlignment(context.Background(), in("a", "EVQL", "b", "EVQL"), backend.MethodMafft); !errors.As(err, &te) {
		t.Fatalf("tool failure: %v", err)
	}
	if _, err := e.CreateAlignment(context.Background(), in("a", "EVQL", "b", "EV"), backend.MethodMuscle); err == nil {
		t.Fatalf("inconsistent rows accepted")
	}
	if n := bad.calls.Load(); n != 1 {
		t.Fatalf("failed backend called %d times; must not retry or fall back", n)
	}
}

func TestProcessMSAWithAnnotation(t *testing.T) {
	fake := &scripted{method: backend.MethodClustalo, rows: []string{"EVQLVESGG", "EV-LVESGG"}}
	regions := staticRegions{
		"EVQLVESGG": {"FR1": {Start: 0, Stop: 3}, "CDR1": {Start: 4, Stop: 8}},
		"EVLVESGG":  {"FR1": {Start: 0, Stop: 2}, "CDR1": {Start: 3, Stop: 7}},
	}
	e := New(Config{Scheme: "kabat"}, registry(fake), regions)

	var progress []float64
	var messages []string
	report := func(p float64, m string) {
		progress = append(progress, p)
		messages = append(messages, m)
	}
	out, err := e.ProcessMSA(context.Background(), jobs.MSARequest{
		Sequences: in("h1", "EVQLVESGG", "h2", "EVLVESGG"),
		Method:    backend.MethodClustalo,
		Annotate:  true,
	}, report)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Alignment == nil || out.Annotation == nil {
		t.Fatalf("missing products: %+v", out)
	}
	if out.Annotation.Scheme != "kabat" {
		t.Fatalf("default scheme not applied: %q", out.Annotation.Scheme)
	}
	if got := out.Annotation.RegionPositions("CDR1"); len(got) != 2 || got[1].AlignedStart != 4 {
		t.Fatalf("CDR1 positions=%+v", got)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress went backwards: %v", progress)
		}
	}
	if !strings.Contains(strings.Join(messages, "|"), "Annotating") {
		t.Fatalf("messages=%v", messages)
	}
}

func TestAnnotateWithoutSource(t *testing.T) {
	e := New(Config{}, registry(), nil)
	res, err := e.CreateAlignment(context.Background(), in("a", "EVQL", "b", "EVQL"), backend.MethodGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AnnotateAlignment(context.Background(), res, "imgt"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestEngineUnderScheduler(t *testing.T) {
	fake := &scripted{method: backend.MethodMafft, rows: []string{"EVQL", "EVQL"}}
	e := New(Config{}, registry(fake), staticRegions{"EVQL": {"FR1": {Start: 0, Stop: 3}}})
	s := jobs.New(e, jobs.Options{Workers: 2})

	msaID, err := s.CreateMSAJob(jobs.MSARequest{Sequences: in("a", "EVQL", "b", "EVQL"), Method: backend.MethodMafft})
	if err != nil {
		t.Fatal(err)
	}
	annID, err := s.CreateAnnotationJob(jobs.AnnotationRequest{Sequences: in("a", "EVQL", "b", "EVQL"), Method: backend.MethodMafft, Scheme: "imgt"})
	if err != nil {
		t.Fatal(err)
	}
	s.Wait()

	m, _ := s.GetJobStatus(msaID)
	if m.Status != jobs.StatusCompleted || m.Result.Alignment == nil || m.Result.Annotation != nil {
		t.Fatalf("msa job=%+v", m)
	}
	a, _ := s.GetJobStatus(annID)
	if a.Status != jobs.StatusCompleted || a.Result.Annotation == nil || len(a.Result.Annotation.RegionMappings["FR1"]) != 2 {
		t.Fatalf("annotation job=%+v", a)
	}
}
