package writers

import (
	"fmt"
	"io"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/output"
	"abalign/internal/pretty"
	"abalign/internal/pssm"
)

// AlignmentPayload is an alignment with its optional annotation. Writers
// also accept a bare *alignment.Result.
type AlignmentPayload struct {
	Result     *alignment.Result
	Annotation *annotate.Result
}

// AnnotationPayload pairs an annotation with the consensus of the alignment
// it was projected onto.
type AnnotationPayload struct {
	Result    *annotate.Result
	Consensus string
}

func init() {
	RegisterAlignment(output.FormatText, func(w io.Writer, p any) error {
		a, err := asAlignment(p)
		if err != nil {
			return err
		}
		return output.WriteAlignmentText(w, a.Result, a.Annotation, pretty.DefaultOptions)
	})
	RegisterAlignment(output.FormatJSON, func(w io.Writer, p any) error {
		a, err := asAlignment(p)
		if err != nil {
			return err
		}
		return output.WriteAlignmentJSON(w, a.Result, a.Annotation)
	})
	RegisterAlignment(output.FormatFASTA, func(w io.Writer, p any) error {
		a, err := asAlignment(p)
		if err != nil {
			return err
		}
		return output.WriteFASTA(w, a.Result)
	})

	RegisterAnnotation(output.FormatText, func(w io.Writer, p any) error {
		a, ok := p.(AnnotationPayload)
		if !ok {
			return payloadError("annotation", p)
		}
		return output.WriteAnnotationText(w, a.Result, a.Consensus, pretty.DefaultOptions)
	})
	RegisterAnnotation(output.FormatJSON, func(w io.Writer, p any) error {
		a, ok := p.(AnnotationPayload)
		if !ok {
			return payloadError("annotation", p)
		}
		return output.WriteAnnotationJSON(w, a.Result)
	})

	RegisterProfile(output.FormatText, func(w io.Writer, p any) error {
		switch v := p.(type) {
		case pssm.PositionSummary:
			return output.WriteSummaryText(w, v)
		case pssm.RegionProfile:
			return output.WriteRegionProfileText(w, v)
		}
		return payloadError("pssm", p)
	})
	RegisterProfile(output.FormatJSON, func(w io.Writer, p any) error {
		switch v := p.(type) {
		case pssm.PositionSummary:
			return output.WriteSummaryJSON(w, v)
		case pssm.RegionProfile:
			return output.WriteRegionProfileJSON(w, v)
		}
		return payloadError("pssm", p)
	})
}

func asAlignment(p any) (AlignmentPayload, error) {
	switch v := p.(type) {
	case AlignmentPayload:
		if v.Result != nil {
			return v, nil
		}
	case *alignment.Result:
		if v != nil {
			return AlignmentPayload{Result: v}, nil
		}
	}
	return AlignmentPayload{}, payloadError("alignment", p)
}

func payloadError(kind string, p any) error {
	return fmt.Errorf("%s writer cannot render %T", kind, p)
}
