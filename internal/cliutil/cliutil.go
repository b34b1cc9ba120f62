// internal/cliutil/cliutil.go
package cliutil

import (
	"path/filepath"
	"strings"

	"abalign/internal/common"
)

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandInputs expands globs among input paths, keeping "-" (stdin) and
// literal paths as given. A path listed twice is kept once.
func ExpandInputs(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{}, len(patterns))
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, a := range patterns {
		if a == "-" || !hasGlobMeta(a) {
			add(a)
			continue
		}
		m, err := filepath.Glob(a)
		if err != nil {
			return nil, common.Invalidf("bad glob %q: %v", a, err)
		}
		if len(m) == 0 {
			return nil, common.Invalidf("no input matched %q", a)
		}
		for _, p := range m {
			add(p)
		}
	}
	return out, nil
}
