package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/jobs"
	"abalign/internal/pssm"
)

// Backends resolves alignment methods; *backend.Registry satisfies it.
type Backends interface {
	Get(m backend.Method) (backend.Backend, error)
}

// Config tunes derived statistics and annotation defaults.
type Config struct {
	PSSM   pssm.Options
	Scheme string // numbering scheme used when a request names none
	Log    logrus.FieldLogger
}

type Engine struct {
	backends  Backends
	projector *annotate.Projector
	cfg       Config
	log       logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// New wires an engine. regions may be nil when annotation is not needed.
func New(c Config, backends Backends, regions annotate.RegionSource) *Engine {
	log := c.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if c.Scheme == "" {
		c.Scheme = annotate.DefaultScheme
	}
	if c.PSSM.Background == nil && c.PSSM.Pseudocount == 0 && c.PSSM.DominanceRatio == 0 {
		c.PSSM = pssm.DefaultOptions()
	}
	var projector *annotate.Projector
	if regions != nil {
		projector = annotate.NewProjector(regions, log)
	}
	return &Engine{
		backends:  backends,
		projector: projector,
		cfg:       c,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CreateAlignment aligns seqs with method and returns a complete result,
// PSSM included.
func (e *Engine) CreateAlignment(ctx context.Context, seqs []backend.Sequence, method backend.Method) (*alignment.Result, error) {
	return e.createAlignment(ctx, seqs, method, noReport)
}

// AnnotateAlignment projects numbering-scheme regions onto res.
func (e *Engine) AnnotateAlignment(ctx context.Context, res *alignment.Result, scheme string) (*annotate.Result, error) {
	if e.projector == nil {
		return nil, common.Invalidf("annotation is not configured (set annotation.command)")
	}
	if scheme == "" {
		scheme = e.cfg.Scheme
	}
	return e.projector.Annotate(ctx, res, scheme)
}

// ProcessMSA runs an alignment job, annotating it when requested.
func (e *Engine) ProcessMSA(ctx context.Context, req jobs.MSARequest, report jobs.Reporter) (*jobs.Result, error) {
	res, err := e.createAlignment(ctx, req.Sequences, req.Method, report)
	if err != nil {
		return nil, err
	}
	out := &jobs.Result{Alignment: res}
	if !req.Annotate {
		return out, nil
	}
	report(0.8, "Annotating regions")
	ann, err := e.AnnotateAlignment(ctx, res, req.Scheme)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", res.ID, err)
	}
	out.Annotation = ann
	return out, nil
}

// ProcessAnnotation annotates req.Alignment, aligning req.Sequences first
// when no alignment is given.
func (e *Engine) ProcessAnnotation(ctx context.Context, req jobs.AnnotationRequest, report jobs.Reporter) (*jobs.Result, error) {
	res := req.Alignment
	if res == nil {
		var err error
		if res, err = e.createAlignment(ctx, req.Sequences, req.Method, report); err != nil {
			return nil, err
		}
	}
	report(0.8, "Annotating regions")
	ann, err := e.AnnotateAlignment(ctx, res, req.Scheme)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", res.ID, err)
	}
	return &jobs.Result{Alignment: res, Annotation: ann}, nil
}

func (e *Engine) createAlignment(ctx context.Context, seqs []backend.Sequence, method backend.Method, report jobs.Reporter) (*alignment.Result, error) {
	report(0.05, "Validating input")
	if err := backend.Validate(method, seqs); err != nil {
		return nil, err
	}
	b, err := e.backends.Get(method)
	if err != nil {
		return nil, err
	}

	report(0.1, fmt.Sprintf("Aligning %d sequences with %s", len(seqs), method))
	start := e.now()
	rows, err := b.Align(ctx, seqs)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"method":    method,
		"sequences": len(seqs),
		"elapsed":   e.now().Sub(start),
	}).Debug("alignment finished")

	report(0.6, "Building alignment matrix")
	res, err := alignment.Build(e.newID(), method, e.now().UTC(), seqs, rows)
	if err != nil {
		return nil, fmt.Errorf("%s returned an inconsistent alignment: %w", method, err)
	}

	report(0.7, "Computing PSSM")
	res.Metadata.PSSM = pssm.Calculate(res.Matrix, e.cfg.PSSM)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func noReport(float64, string) {}
