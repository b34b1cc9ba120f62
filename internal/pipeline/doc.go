// Package pipeline runs independent units of work on a bounded number of
// goroutines. Submission never blocks the caller; work beyond the bound
// waits for a free slot.
package pipeline
