// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"abalign/internal/backend"
	"abalign/internal/cliutil"
	"abalign/internal/common"
	"abalign/internal/config"
	"abalign/internal/logging"
	"abalign/internal/output"
	"abalign/internal/pssm"
	"abalign/internal/toolexec"
	"abalign/internal/version"
)

// Env is what every command handler receives once flags and config are
// resolved.
type Env struct {
	Config config.Config
	Log    *logrus.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Handlers implement the commands. A nil handler leaves its command out.
type Handlers struct {
	Align    func(ctx context.Context, env *Env, o AlignOptions) error
	Annotate func(ctx context.Context, env *Env, o AnnotateOptions) error
	PSSM     func(ctx context.Context, env *Env, o PSSMOptions) error
	Batch    func(ctx context.Context, env *Env, o BatchOptions) error
}

// flagKeys binds command line flags to config keys.
var flagKeys = map[string]string{
	"workers":            "workers",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"tool-timeout":       "tools.timeout",
	"clustalo":           "tools.clustalo",
	"mafft":              "tools.mafft",
	"muscle":             "tools.muscle",
	"gap-open":           "pairwise.gap-open",
	"pseudocount":        "pssm.pseudocount",
	"dominance-ratio":    "pssm.dominance-ratio",
	"annotation-command": "annotation.command",
}

// IsUsageError reports errors caused by bad input rather than a failed run.
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, common.ErrValidation) || strings.HasPrefix(err.Error(), "unknown command")
}

// NewRootCommand builds the abalign command tree.
func NewRootCommand(h Handlers, stdout, stderr io.Writer) *cobra.Command {
	var (
		cfgFile  string
		profMode string
		profDir  string
		stopProf func()
		env      = &Env{Stdout: stdout, Stderr: stderr}
	)

	root := &cobra.Command{
		Use:   "abalign",
		Short: "Align antibody sequences, profile conservation and project framework/CDR regions",
		Long: `abalign aligns antibody or protein sequences (global/local pairwise or an
external multiple aligner), derives a consensus and a position-specific scoring
matrix, and projects framework/CDR boundaries from a numbering tool onto the
alignment.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New(cfgFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			c, err := config.Load(v)
			if err != nil {
				return err
			}
			log, err := logging.New(stderr, c.Log.Level, c.Log.Format)
			if err != nil {
				return err
			}
			env.Config, env.Log = c, log
			stopProf, err = startProfile(profMode, profDir)
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return common.Invalidf("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.Int("workers", 0, "concurrent jobs (0 = one per CPU)")
	pf.String("log-level", "warn", "log level: trace|debug|info|warn|error")
	pf.String("log-format", "text", "log format: text|json")
	pf.Duration("tool-timeout", toolexec.DefaultTimeout, "deadline for one external tool run")
	pf.String("clustalo", "clustalo", "Clustal Omega binary")
	pf.String("mafft", "mafft", "MAFFT binary")
	pf.String("muscle", "muscle", "MUSCLE binary")
	pf.Int("gap-open", backend.DefaultGapOpen, "gap open penalty of the pairwise aligners (<= 0)")
	pf.Float64("pseudocount", pssm.DefaultPseudocount, "PSSM pseudocount")
	pf.Float64("dominance-ratio", pssm.DefaultDominanceRatio, "force conservation 1.0 when the top residue is this many times the runner-up (<= 0 disables)")
	pf.String("annotation-command", "", "numbering command printing region JSON for a sequence on stdin")
	pf.StringVar(&profMode, "profile", "", "write a cpu or mem profile")
	pf.StringVar(&profDir, "profile-dir", ".", "directory for --profile output")

	wrap := func(fn func(ctx context.Context) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			defer func() {
				if stopProf != nil {
					stopProf()
				}
			}()
			return fn(cmd.Context())
		}
	}

	if h.Align != nil {
		var o AlignOptions
		cmd := &cobra.Command{
			Use:   "align",
			Short: "Align the sequences of a FASTA file",
			Example: `  abalign align --sequences heavy.fa --method mafft
  abalign align --sequences pair.fa --method global --annotate --scheme kabat --output json`,
			Args: cobra.NoArgs,
			RunE: wrap(func(ctx context.Context) error {
				if err := o.Validate(); err != nil {
					return err
				}
				return h.Align(ctx, env, o)
			}),
		}
		f := cmd.Flags()
		f.StringVarP(&o.Sequences, "sequences", "s", "", "FASTA input ('-' for stdin)")
		f.StringVarP(&o.Method, "method", "m", string(backend.MethodGlobal), "alignment method: "+methodList())
		f.BoolVar(&o.Annotate, "annotate", false, "project framework/CDR regions onto the alignment")
		f.StringVar(&o.Scheme, "scheme", "", "numbering scheme (default from annotation.scheme)")
		f.StringVarP(&o.Output, "output", "o", output.FormatText, "output format: text|json|fasta")
		root.AddCommand(cmd)
	}

	if h.Annotate != nil {
		var o AnnotateOptions
		cmd := &cobra.Command{
			Use:     "annotate",
			Short:   "Project framework/CDR regions onto a saved alignment",
			Example: `  abalign annotate --alignment aln.json --scheme imgt`,
			Args:    cobra.NoArgs,
			RunE: wrap(func(ctx context.Context) error {
				if err := o.Validate(); err != nil {
					return err
				}
				return h.Annotate(ctx, env, o)
			}),
		}
		f := cmd.Flags()
		f.StringVarP(&o.Alignment, "alignment", "a", "", "alignment JSON written by 'align --output json' ('-' for stdin)")
		f.StringVar(&o.Scheme, "scheme", "", "numbering scheme (default from annotation.scheme)")
		f.StringVarP(&o.Output, "output", "o", output.FormatText, "output format: text|json")
		root.AddCommand(cmd)
	}

	if h.PSSM != nil {
		o := PSSMOptions{Position: -1, Start: -1, Stop: -1}
		cmd := &cobra.Command{
			Use:   "pssm",
			Short: "Query the position-specific scoring matrix of a saved alignment",
			Example: `  abalign pssm --alignment aln.json --position 42
  abalign pssm --alignment aln.json --start 95 --stop 110 --output json`,
			Args: cobra.NoArgs,
			RunE: wrap(func(ctx context.Context) error {
				if err := o.Validate(); err != nil {
					return err
				}
				return h.PSSM(ctx, env, o)
			}),
		}
		f := cmd.Flags()
		f.StringVarP(&o.Alignment, "alignment", "a", "", "alignment JSON ('-' for stdin)")
		f.IntVar(&o.Position, "position", -1, "summarize one column (0-based)")
		f.IntVar(&o.Start, "start", -1, "first column of a region (0-based)")
		f.IntVar(&o.Stop, "stop", -1, "end of a region (exclusive)")
		f.StringVarP(&o.Output, "output", "o", output.FormatText, "output format: text|json")
		root.AddCommand(cmd)
	}

	if h.Batch != nil {
		var o BatchOptions
		cmd := &cobra.Command{
			Use:   "batch [FASTA...]",
			Short: "Align several FASTA files concurrently as background jobs",
			Example: `  abalign batch --sequences a.fa --sequences b.fa --method mafft --out-dir results
  abalign batch --annotate --output jsonl --no-progress 'data/*.fa'`,
			Args: cobra.ArbitraryArgs,
		}
		cmd.RunE = func(c *cobra.Command, args []string) error {
			return wrap(func(ctx context.Context) error {
				files, err := cliutil.ExpandInputs(append(o.Sequences, args...))
				if err != nil {
					return err
				}
				o.Sequences = files
				if err := o.Validate(); err != nil {
					return err
				}
				return h.Batch(ctx, env, o)
			})(c, args)
		}
		f := cmd.Flags()
		f.StringArrayVarP(&o.Sequences, "sequences", "s", nil, "FASTA input or glob, one job per file (repeatable; positional files also accepted)")
		f.StringVarP(&o.Method, "method", "m", string(backend.MethodMafft), "alignment method: "+methodList())
		f.BoolVar(&o.Annotate, "annotate", false, "project framework/CDR regions onto every alignment")
		f.StringVar(&o.Scheme, "scheme", "", "numbering scheme (default from annotation.scheme)")
		f.StringVar(&o.OutDir, "out-dir", "", "write one alignment JSON per finished job into this directory")
		f.StringVarP(&o.Output, "output", "o", output.FormatText, "job report format: text|jsonl")
		f.BoolVar(&o.NoProgress, "no-progress", false, "disable progress bars")
		root.AddCommand(cmd)
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRun: func(*cobra.Command, []string) {},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "abalign version %s\n", version.Version)
			return err
		},
	})
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func startProfile(mode, dir string) (func(), error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	default:
		return nil, common.Invalidf("--profile must be cpu or mem, got %q", mode)
	}
	p := profile.Start(opt, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	stopped := false
	return func() {
		if !stopped {
			stopped = true
			p.Stop()
		}
	}, nil
}

func methodList() string {
	names := make([]string, len(backend.Methods))
	for i, m := range backend.Methods {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}
