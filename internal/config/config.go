// Package config is for app wide settings that are unmarshalled from Viper:
// defaults, an optional config file, ABALIGN_* environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"abalign/internal/annotate"
	"abalign/internal/backend"
	"abalign/internal/common"
	"abalign/internal/pssm"
	"abalign/internal/toolexec"
)

// EnvPrefix prefixes every environment override, e.g. ABALIGN_TOOLS_MAFFT.
const EnvPrefix = "ABALIGN"

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ToolsConfig locates the external aligners.
type ToolsConfig struct {
	// per-invocation deadline
	Timeout  time.Duration `mapstructure:"timeout"`
	Clustalo string        `mapstructure:"clustalo"`
	Mafft    string        `mapstructure:"mafft"`
	Muscle   string        `mapstructure:"muscle"`
}

// PairwiseConfig scores the in-process global/local aligners.
type PairwiseConfig struct {
	GapOpen int `mapstructure:"gap-open"`
}

// PSSMConfig tunes the profile calculation.
type PSSMConfig struct {
	Pseudocount float64 `mapstructure:"pseudocount"`
	// <= 0 disables the dominance bypass
	DominanceRatio float64 `mapstructure:"dominance-ratio"`
}

// AnnotationConfig configures the numbering command.
type AnnotationConfig struct {
	Command   string   `mapstructure:"command"`
	Args      []string `mapstructure:"args"`
	Scheme    string   `mapstructure:"scheme"`
	CacheSize int      `mapstructure:"cache-size"`
}

// JobsConfig controls retention of finished jobs.
type JobsConfig struct {
	MaxAge          time.Duration `mapstructure:"max-age"`
	CleanupInterval time.Duration `mapstructure:"cleanup-interval"`
}

// Config is the root-level settings struct.
type Config struct {
	// concurrent jobs; 0 means one per CPU
	Workers    int              `mapstructure:"workers"`
	Log        LogConfig        `mapstructure:"log"`
	Tools      ToolsConfig      `mapstructure:"tools"`
	Pairwise   PairwiseConfig   `mapstructure:"pairwise"`
	PSSM       PSSMConfig       `mapstructure:"pssm"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
}

// SetDefaults registers every key so that environment overrides resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("tools.timeout", toolexec.DefaultTimeout)
	v.SetDefault("tools.clustalo", "clustalo")
	v.SetDefault("tools.mafft", "mafft")
	v.SetDefault("tools.muscle", "muscle")
	v.SetDefault("pairwise.gap-open", backend.DefaultGapOpen)
	v.SetDefault("pssm.pseudocount", pssm.DefaultPseudocount)
	v.SetDefault("pssm.dominance-ratio", pssm.DefaultDominanceRatio)
	v.SetDefault("annotation.command", "")
	v.SetDefault("annotation.args", []string{})
	v.SetDefault("annotation.scheme", annotate.DefaultScheme)
	v.SetDefault("annotation.cache-size", 1024)
	v.SetDefault("jobs.max-age", 24*time.Hour)
	v.SetDefault("jobs.cleanup-interval", 10*time.Minute)
}

// New returns a Viper with defaults and environment binding, reading file
// when it is not empty.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, common.Invalidf("read config %s: %v", file, err)
		}
	}
	return v, nil
}

// Load decodes and validates v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, common.Invalidf("decode config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings no component could run with.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return common.Invalidf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Tools.Timeout <= 0 {
		return common.Invalidf("tools.timeout must be positive, got %s", c.Tools.Timeout)
	}
	if c.Pairwise.GapOpen > 0 {
		return common.Invalidf("pairwise.gap-open must be <= 0, got %d", c.Pairwise.GapOpen)
	}
	if c.PSSM.Pseudocount < 0 {
		return common.Invalidf("pssm.pseudocount must be >= 0, got %v", c.PSSM.Pseudocount)
	}
	if _, err := annotate.ParseScheme(c.Annotation.Scheme); err != nil {
		return err
	}
	if c.Jobs.MaxAge < 0 {
		return common.Invalidf("jobs.max-age must be >= 0, got %s", c.Jobs.MaxAge)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return common.Invalidf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Backend maps the tool and pairwise settings onto a backend.Config.
func (c Config) Backend() backend.Config {
	return backend.Config{
		GapOpen: c.Pairwise.GapOpen,
		Timeout: c.Tools.Timeout,
		Tools: map[backend.Method]string{
			backend.MethodClustalo: c.Tools.Clustalo,
			backend.MethodMafft:    c.Tools.Mafft,
			backend.MethodMuscle:   c.Tools.Muscle,
		},
	}
}

// PSSMOptions returns the profile options with the default background.
func (c Config) PSSMOptions() pssm.Options {
	return pssm.Options{
		Pseudocount:    c.PSSM.Pseudocount,
		Background:     pssm.DefaultBackground(),
		DominanceRatio: c.PSSM.DominanceRatio,
	}
}
