// internal/output/convert.go
package output

import (
	"fmt"
	"time"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/jobs"
	"abalign/internal/pssm"
	"abalign/pkg/api"
)

// ToAPIAlignment converts a domain alignment to the stable wire schema (v1).
func ToAPIAlignment(r *alignment.Result) api.AlignmentV1 {
	v := api.AlignmentV1{
		ID:        r.ID,
		Method:    string(r.Method),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		Sequences: toAPISequences(r.Sequences),
		Matrix:    make([]string, len(r.Matrix)),
		Consensus: r.Consensus,
		Stats:     api.StatsV1{Length: r.Stats.Length, GapCount: r.Stats.GapCount, Identity: r.Stats.Identity},
	}
	for i, row := range r.Matrix {
		v.Matrix[i] = string(row)
	}
	if p := r.Metadata.PSSM; p != nil {
		v.PSSM = &api.PSSMV1{
			Frequencies:     p.Frequencies,
			Scores:          p.Scores,
			Conservation:    p.Conservation,
			Consensus:       p.Consensus,
			Background:      p.Background,
			AlignmentLength: p.AlignmentLength,
			SequenceCount:   p.SequenceCount,
		}
	}
	return v
}

func toAPISequences(seqs []alignment.Sequence) []api.SequenceV1 {
	out := make([]api.SequenceV1, len(seqs))
	for i, s := range seqs {
		out[i] = api.SequenceV1{
			Name:         s.Name,
			Original:     s.Original,
			Aligned:      s.Aligned,
			GapPositions: append([]int{}, s.GapPositions...),
		}
		for _, a := range s.Annotations {
			out[i].Annotations = append(out[i].Annotations, api.RegionV1(a))
		}
	}
	return out
}

// ToAPIAnnotation converts an annotation result (v1).
func ToAPIAnnotation(r *annotate.Result) api.AnnotationV1 {
	v := api.AnnotationV1{
		AlignmentID:    r.AlignmentID,
		Scheme:         r.Scheme,
		Sequences:      toAPISequences(r.Sequences),
		RegionMappings: make(map[string][]api.RegionMappingV1, len(r.RegionMappings)),
	}
	for name, ms := range r.RegionMappings {
		list := make([]api.RegionMappingV1, len(ms))
		for i, m := range ms {
			list[i] = api.RegionMappingV1(m)
		}
		v.RegionMappings[name] = list
	}
	return v
}

// ToAPIJob converts a job snapshot (v1). source names the batch input, if any.
func ToAPIJob(j jobs.Job, source string) api.JobV1 {
	v := api.JobV1{
		JobID:     j.ID,
		JobType:   string(j.Type),
		Status:    string(j.Status),
		Progress:  j.Progress,
		Message:   j.Message,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339Nano),
		Source:    source,
	}
	if j.CompletedAt != nil {
		v.CompletedAt = j.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	if j.Result != nil {
		if j.Result.Alignment != nil {
			a := ToAPIAlignment(j.Result.Alignment)
			v.Alignment = &a
		}
		if j.Result.Annotation != nil {
			a := ToAPIAnnotation(j.Result.Annotation)
			v.Annotation = &a
		}
	}
	return v
}

func toAPIResidueValues(list []pssm.ResidueValue) []api.ResidueValueV1 {
	out := make([]api.ResidueValueV1, len(list))
	for i, rv := range list {
		out[i] = api.ResidueValueV1(rv)
	}
	return out
}

// ToAPIPositionSummary converts a column summary (v1).
func ToAPIPositionSummary(s pssm.PositionSummary) api.PositionSummaryV1 {
	return api.PositionSummaryV1{
		Position:       s.Position,
		Consensus:      s.Consensus,
		Conservation:   s.Conservation,
		TopFrequencies: toAPIResidueValues(s.TopFrequencies),
		TopScores:      toAPIResidueValues(s.TopScores),
	}
}

// ToAPIRegionProfile converts a region slice (v1).
func ToAPIRegionProfile(r pssm.RegionProfile) api.RegionProfileV1 {
	return api.RegionProfileV1(r)
}

// FromAPIAlignment rebuilds a domain alignment from its wire form and checks
// every invariant. Annotations are dropped; a missing PSSM is left nil.
func FromAPIAlignment(v api.AlignmentV1) (*alignment.Result, error) {
	method, err := backend.ParseMethod(v.Method)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, v.CreatedAt)
	if err != nil {
		return nil, common.Invalidf("alignment %s: created_at: %v", v.ID, err)
	}
	inputs := make([]backend.Sequence, len(v.Sequences))
	rows := make([]string, len(v.Sequences))
	for i, s := range v.Sequences {
		inputs[i] = backend.Sequence{Name: s.Name, Residues: s.Original}
		rows[i] = s.Aligned
	}
	r, err := alignment.Build(v.ID, method, created, inputs, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if p := v.PSSM; p != nil {
		r.Metadata.PSSM = &pssm.Profile{
			Frequencies:     p.Frequencies,
			Scores:          p.Scores,
			Conservation:    p.Conservation,
			Consensus:       p.Consensus,
			Background:      p.Background,
			AlignmentLength: p.AlignmentLength,
			SequenceCount:   p.SequenceCount,
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
	}
	return r, nil
}
