package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"abalign/internal/alignment"
	"abalign/internal/backend"
	"abalign/internal/cli"
	"abalign/internal/fasta"
	"abalign/internal/jsonutil"
	"abalign/internal/output"
	"abalign/internal/pssm"
	"abalign/internal/writers"
	"abalign/pkg/api"
)

func runAlign(ctx context.Context, env *cli.Env, o cli.AlignOptions) error {
	method, err := backend.ParseMethod(o.Method)
	if err != nil {
		return err
	}
	seqs, err := fasta.ReadSequences(o.Sequences)
	if err != nil {
		return err
	}
	env.Log.WithFields(logrus.Fields{"file": o.Sequences, "sequences": len(seqs), "method": method}).Info("aligning")

	eng := newEngine(env)
	res, err := eng.CreateAlignment(ctx, seqs, method)
	if err != nil {
		return err
	}
	payload := writers.AlignmentPayload{Result: res}
	if o.Annotate {
		if payload.Annotation, err = eng.AnnotateAlignment(ctx, res, o.Scheme); err != nil {
			return err
		}
	}
	return writers.WriteAlignment(o.Output, env.Stdout, payload)
}

// loadAlignment reads an alignment JSON document and rebuilds a validated
// result from it.
func loadAlignment(path string) (*alignment.Result, error) {
	var v api.AlignmentV1
	if err := jsonutil.DecodeFile(path, &v); err != nil {
		return nil, err
	}
	return output.FromAPIAlignment(v)
}

func runAnnotate(ctx context.Context, env *cli.Env, o cli.AnnotateOptions) error {
	res, err := loadAlignment(o.Alignment)
	if err != nil {
		return err
	}
	ann, err := newEngine(env).AnnotateAlignment(ctx, res, o.Scheme)
	if err != nil {
		return err
	}
	return writers.WriteAnnotation(o.Output, env.Stdout, writers.AnnotationPayload{
		Result:    ann,
		Consensus: res.Consensus,
	})
}

func runPSSM(_ context.Context, env *cli.Env, o cli.PSSMOptions) error {
	res, err := loadAlignment(o.Alignment)
	if err != nil {
		return err
	}
	prof := res.Metadata.PSSM
	if prof == nil {
		env.Log.WithField("alignment", res.ID).Debug("no stored profile, recomputing")
		prof = pssm.Calculate(res.Matrix, env.Config.PSSMOptions())
	}

	var payload any
	switch {
	case o.Position >= 0:
		s, err := prof.Summary(o.Position)
		if err != nil {
			return err
		}
		payload = s
	case o.HasRange():
		payload = prof.Region(o.Start, o.Stop)
	default:
		payload = prof.Region(0, prof.AlignmentLength)
	}
	return writers.WriteProfile(o.Output, env.Stdout, payload)
}
