// Package engine is the alignment service: it aligns named sequences with a
// chosen backend, derives the matrix, consensus, statistics and PSSM, and
// projects framework/CDR annotations. It also implements jobs.Processor so
// the same code runs synchronously or under the scheduler.
//
// It never imports app, writers, cli or output; keep it domain-only.
// External outputs must not depend on the internal shape here; use pkg/api
// for stable wire types.
package engine
