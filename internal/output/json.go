// internal/output/json.go
package output

import (
	"io"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/jsonutil"
	"abalign/internal/pssm"
)

// WriteAlignmentJSON writes one alignment (v1, pretty-indented), embedding
// ann when it is not nil.
func WriteAlignmentJSON(w io.Writer, r *alignment.Result, ann *annotate.Result) error {
	v := ToAPIAlignment(r)
	if ann != nil {
		a := ToAPIAnnotation(ann)
		v.Annotation = &a
	}
	return jsonutil.EncodePretty(w, v)
}

// WriteAnnotationJSON writes one annotation result (v1).
func WriteAnnotationJSON(w io.Writer, r *annotate.Result) error {
	return jsonutil.EncodePretty(w, ToAPIAnnotation(r))
}

// WriteSummaryJSON writes one column summary (v1).
func WriteSummaryJSON(w io.Writer, s pssm.PositionSummary) error {
	return jsonutil.EncodePretty(w, ToAPIPositionSummary(s))
}

// WriteRegionProfileJSON writes one region slice (v1).
func WriteRegionProfileJSON(w io.Writer, r pssm.RegionProfile) error {
	return jsonutil.EncodePretty(w, ToAPIRegionProfile(r))
}
