// internal/output/text.go
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/jobs"
	"abalign/internal/pretty"
	"abalign/internal/pssm"
)

// WriteAlignmentText prints a header and the alignment blocks. When ann is
// not nil the blocks carry region tracks and a region table follows.
func WriteAlignmentText(w io.Writer, r *alignment.Result, ann *annotate.Result, popt pretty.Options) error {
	residues := 0
	for _, s := range r.Sequences {
		residues += len(s.Original)
	}
	seqs := r.Sequences
	if ann != nil {
		seqs = ann.Sequences
	}
	if _, err := fmt.Fprintf(w,
		"# alignment %s\n# method=%s sequences=%d residues=%s length=%d gaps=%d identity=%.1f%%\n\n%s",
		r.ID, r.Method, len(r.Sequences), humanize.Comma(int64(residues)),
		r.Stats.Length, r.Stats.GapCount, 100*r.Stats.Identity,
		pretty.Render(seqs, r.Consensus, popt),
	); err != nil {
		return err
	}
	if ann == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n# regions (scheme=%s)\n", ann.Scheme); err != nil {
		return err
	}
	return writeRegionTable(w, ann)
}

// WriteAnnotationText prints the annotated blocks followed by a region table.
func WriteAnnotationText(w io.Writer, r *annotate.Result, consensus string, popt pretty.Options) error {
	if _, err := fmt.Fprintf(w, "# annotation of %s (scheme=%s)\n\n%s\n", r.AlignmentID, r.Scheme,
		pretty.Render(r.Sequences, consensus, popt)); err != nil {
		return err
	}
	return writeRegionTable(w, r)
}

func writeRegionTable(w io.Writer, r *annotate.Result) error {
	names := make([]string, 0, len(r.RegionMappings))
	for name := range r.RegionMappings {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "region\tsequence\taligned\toriginal\tmapped\tcolor")
	for _, name := range names {
		for _, m := range r.RegionMappings[name] {
			fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%d-%d\t%t\t%s\n", name, m.SequenceName,
				m.AlignedStart, m.AlignedStop, m.OriginalStart, m.OriginalStop, m.Mapped, m.Color)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n := r.Unmapped(); n > 0 {
		_, err := fmt.Fprintf(w, "# %d region(s) could not be verified against the alignment; coordinates are unmapped\n", n)
		return err
	}
	return nil
}

// WriteSummaryText prints one column summary.
func WriteSummaryText(w io.Writer, s pssm.PositionSummary) error {
	_, err := fmt.Fprintf(w, "position\t%d\nconsensus\t%s\nconservation\t%.3f\ntop_frequencies\t%s\ntop_scores\t%s\n",
		s.Position, s.Consensus, s.Conservation, residueList(s.TopFrequencies), residueList(s.TopScores))
	return err
}

// WriteRegionProfileText prints the per-column conservation of a region.
func WriteRegionProfileText(w io.Writer, r pssm.RegionProfile) error {
	if r.Empty() {
		_, err := fmt.Fprintln(w, "# empty region")
		return err
	}
	if _, err := fmt.Fprintf(w, "# columns %d-%d consensus=%s average_conservation=%.3f\n",
		r.Start, r.Stop, r.Consensus, r.AverageConservation); err != nil {
		return err
	}
	for i, c := range r.Conservation {
		if _, err := fmt.Fprintf(w, "%d\t%c\t%.3f\n", r.Start+i, r.Consensus[i], c); err != nil {
			return err
		}
	}
	return nil
}

func residueList(list []pssm.ResidueValue) string {
	parts := make([]string, len(list))
	for i, rv := range list {
		parts[i] = fmt.Sprintf("%s:%.3f", rv.Residue, rv.Value)
	}
	return strings.Join(parts, " ")
}

// JobRow is one line of the batch job table.
type JobRow struct {
	Job    jobs.Job
	Source string
}

// WriteJobTable prints one row per job with humanized ages.
func WriteJobTable(w io.Writer, rows []JobRow, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "job\tsource\ttype\tstatus\tprogress\tcreated\tmessage")
	for _, r := range rows {
		j := r.Job
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%3.0f%%\t%s\t%s\n",
			shortID(j.ID), r.Source, j.Type, j.Status, 100*j.Progress,
			humanize.RelTime(j.CreatedAt, now, "ago", "from now"), j.Message)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
