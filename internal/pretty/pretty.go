// Package pretty renders alignments as fixed-width text blocks, with an
// optional region track under each annotated sequence.
package pretty

import (
	"bytes"
	"fmt"
	"strings"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/common"
)

// Options control the ASCII rendering.
type Options struct {
	// Columns per block. If <=0, use default (60).
	Width int

	ShowRuler     bool
	ShowConsensus bool
	// Draw a track under every annotated sequence.
	ShowRegions bool

	// Glyphs. CDRs are drawn with their number (1, 2, 3).
	RulerGlyph     string // default "."
	TickGlyph      string // default "|", every 10th column
	FrameworkGlyph string // default "="
	OtherGlyph     string // default "*", regions outside FR/CDR naming
	UnmappedGlyph  string // default "?", regions that could not be verified
}

// DefaultOptions is the look used by the text writers.
var DefaultOptions = Options{
	Width:          60,
	ShowRuler:      true,
	ShowConsensus:  true,
	ShowRegions:    true,
	RulerGlyph:     ".",
	TickGlyph:      "|",
	FrameworkGlyph: "=",
	OtherGlyph:     "*",
	UnmappedGlyph:  "?",
}

const consensusLabel = "consensus"

// Render lays out seqs in blocks of opt.Width columns. Each sequence line
// ends with the count of its residues so far. consensus is printed when its
// length matches the alignment.
func Render(seqs []alignment.Sequence, consensus string, opt Options) string {
	if len(seqs) == 0 {
		return ""
	}
	width := opt.Width
	if width <= 0 {
		width = DefaultOptions.Width
	}
	n := len(seqs[0].Aligned)
	nameW := len(consensusLabel)
	for _, s := range seqs {
		nameW = max(nameW, len(s.Name))
	}
	var tracks []string
	if opt.ShowRegions {
		tracks = regionTracks(seqs, n, opt)
	}

	var b strings.Builder
	counts := make([]int, len(seqs))
	for start := 0; start < n; start += width {
		end := min(start+width, n)
		if start > 0 {
			b.WriteByte('\n')
		}
		if opt.ShowRuler {
			row(&b, nameW, fmt.Sprint(start+1), ruler(start, end, opt))
		}
		for i, s := range seqs {
			chunk := s.Aligned[start:min(end, len(s.Aligned))]
			counts[i] += len(chunk) - strings.Count(chunk, string(common.Gap))
			row(&b, nameW, s.Name, fmt.Sprintf("%s %d", chunk, counts[i]))
			if tracks != nil && tracks[i] != "" {
				row(&b, nameW, "", tracks[i][start:end])
			}
		}
		if opt.ShowConsensus && len(consensus) == n {
			row(&b, nameW, consensusLabel, consensus[start:end])
		}
	}
	return b.String()
}

func row(b *strings.Builder, nameW int, label, body string) {
	line := fmt.Sprintf("%-*s  %s", nameW, label, body)
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteByte('\n')
}

func ruler(start, end int, opt Options) string {
	dot, tick := glyph(opt.RulerGlyph, "."), glyph(opt.TickGlyph, "|")
	var b strings.Builder
	for col := start; col < end; col++ {
		if (col+1)%10 == 0 {
			b.WriteString(tick)
		} else {
			b.WriteString(dot)
		}
	}
	return b.String()
}

// regionTracks returns one track per sequence ("" when unannotated).
func regionTracks(seqs []alignment.Sequence, n int, opt Options) []string {
	out := make([]string, len(seqs))
	for i, s := range seqs {
		if len(s.Annotations) == 0 {
			continue
		}
		track := bytes.Repeat([]byte{' '}, n)
		for _, r := range s.Annotations {
			g := regionGlyph(r, opt)
			for col := max(r.Start, 0); col <= r.Stop && col < n; col++ {
				track[col] = g
			}
		}
		out[i] = string(track)
	}
	return out
}

func regionGlyph(r alignment.Region, opt Options) byte {
	if !r.Mapped {
		return glyph(opt.UnmappedGlyph, "?")[0]
	}
	base := annotate.BaseName(r.Name)
	switch {
	case strings.HasPrefix(base, "CDR") && len(base) > 3:
		return base[3]
	case strings.HasPrefix(base, "FR"):
		return glyph(opt.FrameworkGlyph, "=")[0]
	}
	return glyph(opt.OtherGlyph, "*")[0]
}

func glyph(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
