// internal/cli/options.go
package cli

import (
	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/output"
)

// AlignOptions are the flags of "abalign align".
type AlignOptions struct {
	Sequences string
	Method    string
	Annotate  bool
	Scheme    string
	Output    string
}

func (o AlignOptions) Validate() error {
	if o.Sequences == "" {
		return common.Invalidf("--sequences is required")
	}
	if _, err := backend.ParseMethod(o.Method); err != nil {
		return err
	}
	if o.Annotate {
		if _, err := annotate.ParseScheme(o.Scheme); err != nil {
			return err
		}
	}
	return oneOf("--output", o.Output, output.FormatText, output.FormatJSON, output.FormatFASTA)
}

// AnnotateOptions are the flags of "abalign annotate".
type AnnotateOptions struct {
	Alignment string
	Scheme    string
	Output    string
}

func (o AnnotateOptions) Validate() error {
	if o.Alignment == "" {
		return common.Invalidf("--alignment is required")
	}
	if _, err := annotate.ParseScheme(o.Scheme); err != nil {
		return err
	}
	return oneOf("--output", o.Output, output.FormatText, output.FormatJSON)
}

// PSSMOptions are the flags of "abalign pssm". Negative values mean unset;
// with neither a position nor a range the whole profile is reported.
type PSSMOptions struct {
	Alignment string
	Position  int
	Start     int
	Stop      int
	Output    string
}

func (o PSSMOptions) Validate() error {
	if o.Alignment == "" {
		return common.Invalidf("--alignment is required")
	}
	if o.Position >= 0 && (o.Start >= 0 || o.Stop >= 0) {
		return common.Invalidf("--position cannot be combined with --start/--stop")
	}
	if (o.Start >= 0) != (o.Stop >= 0) {
		return common.Invalidf("--start and --stop must be given together")
	}
	return oneOf("--output", o.Output, output.FormatText, output.FormatJSON)
}

// HasRange reports whether --start/--stop were given.
func (o PSSMOptions) HasRange() bool { return o.Start >= 0 && o.Stop >= 0 }

// BatchOptions are the flags of "abalign batch".
type BatchOptions struct {
	Sequences  []string
	Method     string
	Annotate   bool
	Scheme     string
	OutDir     string
	Output     string
	NoProgress bool
}

func (o BatchOptions) Validate() error {
	if len(o.Sequences) == 0 {
		return common.Invalidf("at least one --sequences file is required")
	}
	if _, err := backend.ParseMethod(o.Method); err != nil {
		return err
	}
	if o.Annotate {
		if _, err := annotate.ParseScheme(o.Scheme); err != nil {
			return err
		}
	}
	return oneOf("--output", o.Output, output.FormatText, output.FormatJSONL)
}

func oneOf(flag, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return common.Invalidf("%s must be one of %v, got %q", flag, allowed, v)
}
