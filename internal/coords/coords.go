// Package coords projects positions in an ungapped sequence onto the same
// residues inside its gapped, aligned copy.
package coords

import "abalign/internal/common"

// Mapping is the result of MapRegion. When Mapped is false the sequences
// disagreed over the window and Start/Stop are the original, unmapped
// coordinates; callers decide whether that degradation is acceptable.
type Mapping struct {
	Start  int
	Stop   int
	Mapped bool
}

// MapPosition returns the aligned index of the residue at origPos. Positions
// past the end of original, or past the residues of aligned, clamp to the
// last aligned index.
func MapPosition(origPos int, original, aligned string) int {
	if len(aligned) == 0 {
		return origPos
	}
	if origPos < 0 {
		origPos = 0
	}
	if origPos >= len(original) {
		return len(aligned) - 1
	}
	seen := 0
	for i := 0; i < len(aligned); i++ {
		if common.IsGap(aligned[i]) {
			continue
		}
		if seen == origPos {
			return i
		}
		seen++
	}
	return len(aligned) - 1
}

// MapRegion maps an inclusive [origStart, origStop] range. The residues of
// original over the window must match the ungapped residues of aligned;
// otherwise the input coordinates come back with Mapped=false.
func MapRegion(origStart, origStop int, original, aligned string) Mapping {
	unmapped := Mapping{Start: origStart, Stop: origStop}
	if original == "" || aligned == "" {
		return unmapped
	}
	end := origStop
	if end > len(original)-1 {
		end = len(original) - 1
	}
	if origStart < 0 || origStart > end {
		return unmapped
	}
	ungapped := common.StripGaps(aligned)
	if len(ungapped) <= end {
		return unmapped
	}
	if !common.EqualResidues(ungapped[origStart:end+1], original[origStart:end+1]) {
		return unmapped
	}
	return Mapping{
		Start:  MapPosition(origStart, original, aligned),
		Stop:   MapPosition(origStop, original, aligned),
		Mapped: true,
	}
}
