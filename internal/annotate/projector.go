// Package annotate projects framework/CDR boundaries, reported by a
// numbering tool in ungapped coordinates, onto an alignment.
package annotate

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"abalign/internal/alignment"
	"abalign/internal/common"
	"abalign/internal/coords"
)

// RegionMapping locates one region of one sequence in both coordinate
// spaces.
type RegionMapping struct {
	SequenceName  string `json:"sequence_name"`
	AlignedStart  int    `json:"aligned_start"`
	AlignedStop   int    `json:"aligned_stop"`
	OriginalStart int    `json:"original_start"`
	OriginalStop  int    `json:"original_stop"`
	Color         string `json:"color"`
	Mapped        bool   `json:"mapped"`
}

// Result holds annotated copies of an alignment's sequences and the
// region name -> mappings index.
type Result struct {
	AlignmentID    string                     `json:"alignment_id"`
	Scheme         string                     `json:"numbering_scheme"`
	Sequences      []alignment.Sequence       `json:"annotated_sequences"`
	RegionMappings map[string][]RegionMapping `json:"region_mappings"`
}

// Unmapped counts regions that fell back to unverified coordinates.
func (r *Result) Unmapped() int {
	n := 0
	for _, ms := range r.RegionMappings {
		for _, m := range ms {
			if !m.Mapped {
				n++
			}
		}
	}
	return n
}

// RegionPositions returns where region name sits in every annotated
// sequence. Sequences without that region are skipped.
func (r *Result) RegionPositions(name string) []RegionMapping {
	return RegionPositions(r.Sequences, name)
}

// RegionPositions scans the annotations attached to seqs.
func RegionPositions(seqs []alignment.Sequence, name string) []RegionMapping {
	var out []RegionMapping
	for _, s := range seqs {
		for _, a := range s.Annotations {
			if a.Name == name {
				out = append(out, mappingOf(s.Name, a))
			}
		}
	}
	return out
}

// Projector annotates alignments using a RegionSource.
type Projector struct {
	source RegionSource
	log    logrus.FieldLogger
}

func NewProjector(source RegionSource, log logrus.FieldLogger) *Projector {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Projector{source: source, log: log}
}

// Annotate fetches regions for every sequence of res and projects them into
// alignment coordinates. res itself is not modified.
func (p *Projector) Annotate(ctx context.Context, res *alignment.Result, scheme string) (*Result, error) {
	scheme, err := ParseScheme(scheme)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Sequences) == 0 {
		return nil, common.Invalidf("nothing to annotate")
	}
	if p.source == nil {
		return nil, common.Invalidf("no region source configured")
	}
	out := &Result{
		AlignmentID:    res.ID,
		Scheme:         scheme,
		Sequences:      make([]alignment.Sequence, 0, len(res.Sequences)),
		RegionMappings: map[string][]RegionMapping{},
	}
	for _, s := range res.Sequences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bounds, err := p.source.RegionsFor(ctx, s.Original, scheme)
		if err != nil {
			return nil, fmt.Errorf("regions for %s: %w", s.Name, err)
		}
		c := s.Copy()
		c.Annotations = p.project(s, bounds, res.Length())
		for _, a := range c.Annotations {
			out.RegionMappings[a.Name] = append(out.RegionMappings[a.Name], mappingOf(c.Name, a))
		}
		out.Sequences = append(out.Sequences, c)
	}
	return out, nil
}

func (p *Projector) project(s alignment.Sequence, bounds map[string]Boundary, length int) []alignment.Region {
	regions := make([]alignment.Region, 0, len(bounds))
	for name, b := range bounds {
		if b.Start < 0 || b.Stop < b.Start {
			p.log.WithFields(logrus.Fields{"sequence": s.Name, "region": name, "start": b.Start, "stop": b.Stop}).
				Warn("skipping invalid region boundary")
			continue
		}
		m := coords.MapRegion(b.Start, b.Stop, s.Original, s.Aligned)
		if !m.Mapped {
			p.log.WithFields(logrus.Fields{
				"sequence":   s.Name,
				"region":     name,
				"orig_start": b.Start,
				"orig_stop":  b.Stop,
			}).Warn("region does not match the aligned sequence; keeping unmapped coordinates")
		}
		start, stop := clamp(m.Start, length), clamp(m.Stop, length)
		if stop < start {
			stop = start
		}
		regions = append(regions, alignment.Region{
			Name:          name,
			Start:         start,
			Stop:          stop,
			OriginalStart: b.Start,
			OriginalStop:  b.Stop,
			Sequence:      substring(b, s.Original),
			Color:         ColorFor(name),
			Mapped:        m.Mapped,
		})
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].OriginalStart != regions[j].OriginalStart {
			return regions[i].OriginalStart < regions[j].OriginalStart
		}
		return regions[i].Name < regions[j].Name
	})
	return regions
}

func mappingOf(seq string, a alignment.Region) RegionMapping {
	return RegionMapping{
		SequenceName:  seq,
		AlignedStart:  a.Start,
		AlignedStop:   a.Stop,
		OriginalStart: a.OriginalStart,
		OriginalStop:  a.OriginalStop,
		Color:         a.Color,
		Mapped:        a.Mapped,
	}
}

func substring(b Boundary, original string) string {
	if b.Sequence != "" {
		return b.Sequence
	}
	if b.Start >= len(original) {
		return ""
	}
	return original[b.Start:min(b.Stop+1, len(original))]
}

func clamp(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length-1 {
		return max(length-1, 0)
	}
	return i
}
