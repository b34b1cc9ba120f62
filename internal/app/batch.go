package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"abalign/internal/backend"
	"abalign/internal/cli"
	"abalign/internal/fasta"
	"abalign/internal/jobs"
	"abalign/internal/output"
	"abalign/internal/writers"
)

const pollInterval = 50 * time.Millisecond

type batchItem struct {
	id     string
	source string
	bar    *mpb.Bar
	done   bool
	job    jobs.Job // terminal snapshot taken by track
}

func runBatch(ctx context.Context, env *cli.Env, o cli.BatchOptions) error {
	method, err := backend.ParseMethod(o.Method)
	if err != nil {
		return err
	}
	if o.OutDir != "" {
		if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
			return err
		}
	}

	inputs := make([][]backend.Sequence, len(o.Sequences))
	residues := 0
	for i, path := range o.Sequences {
		if inputs[i], err = fasta.ReadSequences(path); err != nil {
			return err
		}
		for _, s := range inputs[i] {
			residues += len(s.Residues)
		}
	}
	env.Log.WithFields(logrus.Fields{
		"files":    len(inputs),
		"residues": humanize.Comma(int64(residues)),
		"method":   method,
		"workers":  env.Config.Workers,
	}).Info("batch started")

	sched := jobs.New(newEngine(env), jobs.Options{Workers: env.Config.Workers, Log: env.Log})

	var progress *mpb.Progress
	if o.NoProgress {
		progress = mpb.New(mpb.WithOutput(nil))
	} else {
		progress = mpb.New(mpb.WithWidth(40), mpb.WithOutput(env.Stderr))
	}

	items := make([]*batchItem, len(inputs))
	for i, seqs := range inputs {
		id, err := sched.CreateMSAJob(jobs.MSARequest{
			Sequences: seqs,
			Method:    method,
			Annotate:  o.Annotate,
			Scheme:    o.Scheme,
		})
		if err != nil {
			progress.Shutdown()
			return fmt.Errorf("%s: %w", o.Sequences[i], err)
		}
		name := filepath.Base(o.Sequences[i])
		items[i] = &batchItem{
			id:     id,
			source: o.Sequences[i],
			bar: progress.AddBar(100,
				mpb.PrependDecorators(
					decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WCSyncWidth),
					decor.OnAbort(decor.OnComplete(decor.Name(""), " done"), " failed"),
				),
			),
		}
	}

	if err := track(ctx, sched, items); err != nil {
		for _, it := range items {
			it.bar.Abort(true)
		}
		progress.Shutdown()
		return err
	}
	progress.Wait()

	// every job is snapshotted now; retention may prune the table
	jctx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sched.Janitor(jctx, env.Config.Jobs.CleanupInterval, env.Config.Jobs.MaxAge)

	return report(env, o, items)
}

// track polls the scheduler until every job is terminal or ctx is done,
// moving each job's bar along.
func track(ctx context.Context, sched *jobs.Scheduler, items []*batchItem) error {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		pending := 0
		for _, it := range items {
			if it.done {
				continue
			}
			j, ok := sched.GetJobStatus(it.id)
			if !ok {
				return fmt.Errorf("job %s for %s disappeared", it.id, it.source)
			}
			switch j.Status {
			case jobs.StatusCompleted:
				it.bar.SetCurrent(100)
				it.done, it.job = true, j
			case jobs.StatusFailed:
				it.bar.Abort(false)
				it.done, it.job = true, j
			default:
				it.bar.SetCurrent(int64(99 * j.Progress))
				pending++
			}
		}
		if pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// report writes one row per job from the snapshots taken by track.
func report(env *cli.Env, o cli.BatchOptions, items []*batchItem) error {
	rows, errCh := writers.StartJobWriter(env.Stdout, o.Output, len(items))
	failed := 0
	var saveErr error
	for _, it := range items {
		j := it.job
		if j.Status == jobs.StatusFailed {
			failed++
			env.Log.WithFields(logrus.Fields{"job": j.ID, "source": it.source}).Warn(j.Message)
		}
		if o.OutDir != "" && j.Status == jobs.StatusCompleted && saveErr == nil {
			saveErr = saveResult(o.OutDir, it.source, j)
		}
		rows <- output.JobRow{Job: j, Source: it.source}
	}
	close(rows)
	if err := <-errCh; err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrJobsFailed, failed, len(items))
	}
	return nil
}

// saveResult writes the alignment of a completed job as
// <out-dir>/<source stem>.<job id>.json.
func saveResult(dir, source string, j jobs.Job) error {
	if j.Result == nil || j.Result.Alignment == nil {
		return nil
	}
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	path := filepath.Join(dir, fmt.Sprintf("%s.%s.json", stem, j.ID))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteAlignmentJSON(f, j.Result.Alignment, j.Result.Annotation); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
