package backend

import (
	"time"

	"github.com/sirupsen/logrus"

	"abalign/internal/common"
)

// Config selects pairwise scoring and external tool locations.
type Config struct {
	GapOpen int
	Timeout time.Duration
	// Tools maps an external method to its binary; missing entries fall back
	// to the method name on $PATH.
	Tools map[Method]string
}

// Registry resolves a Method to its Backend. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	backends map[Method]Backend
}

// NewRegistry wires every supported method.
func NewRegistry(cfg Config, log logrus.FieldLogger) *Registry {
	gapOpen := cfg.GapOpen
	if gapOpen == 0 {
		gapOpen = DefaultGapOpen
	}
	r := &Registry{backends: make(map[Method]Backend, len(Methods))}
	r.Register(NewGlobal(gapOpen))
	r.Register(NewLocal(gapOpen))
	for _, m := range Methods {
		if !m.External() {
			continue
		}
		x, err := NewExternal(m, cfg.Tools[m], cfg.Timeout, log)
		if err != nil {
			continue
		}
		r.Register(x)
	}
	return r
}

// Register adds or replaces the backend for b.Method().
func (r *Registry) Register(b Backend) {
	if r.backends == nil {
		r.backends = make(map[Method]Backend)
	}
	r.backends[b.Method()] = b
}

// Get returns the backend for m.
func (r *Registry) Get(m Method) (Backend, error) {
	b, ok := r.backends[m]
	if !ok {
		return nil, common.Invalidf("unsupported alignment method %q", m)
	}
	return b, nil
}
