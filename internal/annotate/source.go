package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"abalign/internal/common"
	"abalign/internal/runutil"
	"abalign/internal/toolexec"
)

// Boundary is one region reported by a numbering tool, in ungapped
// coordinates with an inclusive Stop.
type Boundary struct {
	Start    int    `json:"start"`
	Stop     int    `json:"stop"`
	Sequence string `json:"sequence,omitempty"`
}

// RegionSource locates framework/CDR regions of a single ungapped sequence.
type RegionSource interface {
	RegionsFor(ctx context.Context, residues, scheme string) (map[string]Boundary, error)
}

// ExecSource runs an external numbering command. The command receives
// "--scheme <scheme>" after Args and the sequence on stdin, and prints a JSON
// object mapping region names to boundaries.
type ExecSource struct {
	Path    string
	Args    []string
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func (s *ExecSource) RegionsFor(ctx context.Context, residues, scheme string) (map[string]Boundary, error) {
	if s.Path == "" {
		return nil, common.Invalidf("no annotation command configured")
	}
	args := append(append([]string(nil), s.Args...), "--scheme", scheme)
	name := filepath.Base(s.Path)
	out, err := toolexec.Run(ctx, toolexec.Command{
		Name:    name,
		Path:    s.Path,
		Args:    args,
		Stdin:   strings.NewReader(residues + "\n"),
		Timeout: s.Timeout,
	}, s.Log)
	if err != nil {
		return nil, err
	}
	var regions map[string]Boundary
	if err := json.Unmarshal(out, &regions); err != nil {
		return nil, &toolexec.ToolError{Tool: name, Err: fmt.Errorf("unreadable region output: %w", err)}
	}
	return regions, nil
}

type cacheKey struct{ scheme, residues string }

// CachedSource memoizes a RegionSource. Failures are not cached.
type CachedSource struct {
	inner RegionSource
	cache *runutil.LRU[cacheKey, map[string]Boundary]
}

func NewCachedSource(inner RegionSource, size int) *CachedSource {
	return &CachedSource{inner: inner, cache: runutil.NewLRU[cacheKey, map[string]Boundary](size)}
}

func (c *CachedSource) RegionsFor(ctx context.Context, residues, scheme string) (map[string]Boundary, error) {
	k := cacheKey{scheme: scheme, residues: residues}
	if hit, ok := c.cache.Get(k); ok {
		return copyBoundaries(hit), nil
	}
	regions, err := c.inner.RegionsFor(ctx, residues, scheme)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, copyBoundaries(regions))
	return regions, nil
}

func copyBoundaries(in map[string]Boundary) map[string]Boundary {
	out := make(map[string]Boundary, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
