// Package jobs runs alignment and annotation work in the background and
// tracks its progress in an in-memory job table.
//
// The table is owned by a Scheduler and guarded by a single mutex; every
// read or write of a job record happens under it. Records live only as long
// as the process.
package jobs

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/pipeline"
)

// Reporter records progress of the calling job while it runs.
type Reporter func(progress float64, message string)

// Processor does the actual work of a job.
type Processor interface {
	ProcessMSA(ctx context.Context, req MSARequest, report Reporter) (*Result, error)
	ProcessAnnotation(ctx context.Context, req AnnotationRequest, report Reporter) (*Result, error)
}

// Options configures a Scheduler.
type Options struct {
	Workers int // concurrent jobs; <=0 means NumCPU
	Log     logrus.FieldLogger
}

type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*Job

	proc Processor
	pool *pipeline.Pool
	log  logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

func New(proc Processor, opt Options) *Scheduler {
	log := opt.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scheduler{
		jobs:  make(map[string]*Job),
		proc:  proc,
		pool:  pipeline.NewPool(opt.Workers),
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateMSAJob validates req, records a pending job and schedules it.
func (s *Scheduler) CreateMSAJob(req MSARequest) (string, error) {
	if err := backend.Validate(req.Method, req.Sequences); err != nil {
		return "", err
	}
	id := s.insert(TypeCreation, "Job created")
	s.dispatch(id, func(ctx context.Context, report Reporter) (*Result, error) {
		return s.proc.ProcessMSA(ctx, req, report)
	})
	return id, nil
}

// CreateAnnotationJob validates req, records a pending job and schedules it.
func (s *Scheduler) CreateAnnotationJob(req AnnotationRequest) (string, error) {
	if req.Alignment == nil {
		if err := backend.Validate(req.Method, req.Sequences); err != nil {
			return "", err
		}
	} else if len(req.Alignment.Sequences) == 0 {
		return "", common.Invalidf("alignment %s has no sequences", req.Alignment.ID)
	}
	id := s.insert(TypeAnnotation, "Annotation job created")
	s.dispatch(id, func(ctx context.Context, report Reporter) (*Result, error) {
		return s.proc.ProcessAnnotation(ctx, req, report)
	})
	return id, nil
}

// Submit routes an MSARequest or AnnotationRequest (value or pointer).
func (s *Scheduler) Submit(req any) (string, error) {
	switch r := req.(type) {
	case MSARequest:
		return s.CreateMSAJob(r)
	case *MSARequest:
		return s.CreateMSAJob(*r)
	case AnnotationRequest:
		return s.CreateAnnotationJob(r)
	case *AnnotationRequest:
		return s.CreateAnnotationJob(*r)
	}
	return "", common.Invalidf("unsupported job request %T", req)
}

// GetJobStatus returns a snapshot of the job, or false if it is unknown
// (never created or already cleaned up).
func (s *Scheduler) GetJobStatus(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.snapshot(), true
}

// ListJobs returns snapshots of every job, oldest first.
func (s *Scheduler) ListJobs() []Job {
	s.mu.Lock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.snapshot())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.Before(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// UpdateStatus moves a job forward. Unknown ids, updates to terminal jobs
// and backward transitions are ignored. Progress is clamped to [0,1] and
// never decreases; a completed job always reports 1.
func (s *Scheduler) UpdateStatus(id string, status Status, progress float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(id, status, progress, message, nil)
}

func (s *Scheduler) updateLocked(id string, status Status, progress float64, message string, res *Result) bool {
	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() || status.rank() < j.Status.rank() {
		return false
	}
	j.Status = status
	progress = min(max(progress, 0), 1)
	if progress > j.Progress {
		j.Progress = progress
	}
	if message != "" {
		j.Message = message
	}
	if status.Terminal() {
		now := s.now()
		j.CompletedAt = &now
	}
	if status == StatusCompleted {
		j.Progress = 1
		j.Result = res
	}
	return true
}

// CleanupOldJobs removes terminal jobs created at least maxAge ago and
// returns how many were removed. Pending and running jobs are kept.
func (s *Scheduler) CleanupOldJobs(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, j := range s.jobs {
		if j.Status.Terminal() && now.Sub(j.CreatedAt) >= maxAge {
			delete(s.jobs, id)
			n++
		}
	}
	if n > 0 {
		s.log.WithField("removed", n).Debug("cleaned up old jobs")
	}
	return n
}

// Janitor calls CleanupOldJobs every interval until ctx is done.
func (s *Scheduler) Janitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.CleanupOldJobs(maxAge)
		}
	}
}

// Wait blocks until every job scheduled so far has finished.
func (s *Scheduler) Wait() { s.pool.Wait() }

func (s *Scheduler) insert(typ Type, message string) string {
	id := s.newID()
	s.mu.Lock()
	s.jobs[id] = &Job{
		ID:        id,
		Type:      typ,
		Status:    StatusPending,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"job": id, "type": typ}).Info("job created")
	return id
}

type work func(ctx context.Context, report Reporter) (*Result, error)

func (s *Scheduler) dispatch(id string, fn work) {
	s.pool.Go(func() {
		log := s.log.WithField("job", id)
		s.UpdateStatus(id, StatusRunning, 0, "Processing")
		report := func(progress float64, message string) {
			s.UpdateStatus(id, StatusRunning, progress, message)
		}
		res, err := protect(fn, report)
		s.mu.Lock()
		if err != nil {
			s.updateLocked(id, StatusFailed, 0, err.Error(), nil)
		} else {
			s.updateLocked(id, StatusCompleted, 1, "Completed", res)
		}
		s.mu.Unlock()
		if err != nil {
			log.WithError(err).Warn("job failed")
			return
		}
		log.Info("job completed")
	})
}

// protect runs fn, turning a panic into an error so that no job can take
// the scheduler down.
func protect(fn work, report Reporter) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(context.Background(), report)
}
