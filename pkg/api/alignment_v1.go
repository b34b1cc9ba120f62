// pkg/api/alignment_v1.go
package api

// AlignmentV1 is the stable JSON schema of an alignment result.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type AlignmentV1 struct {
	ID         string        `json:"id"`
	Method     string        `json:"method"`
	CreatedAt  string        `json:"created_at"` // RFC 3339
	Sequences  []SequenceV1  `json:"sequences"`
	Matrix     []string      `json:"alignment_matrix"`
	Consensus  string        `json:"consensus"`
	Stats      StatsV1       `json:"stats"`
	PSSM       *PSSMV1       `json:"pssm,omitempty"`
	Annotation *AnnotationV1 `json:"annotation,omitempty"`
}

// SequenceV1 is one aligned record. Annotations are present only after
// projection and use aligned coordinates.
type SequenceV1 struct {
	Name         string     `json:"name"`
	Original     string     `json:"original_sequence"`
	Aligned      string     `json:"aligned_sequence"`
	GapPositions []int      `json:"gap_positions"`
	Annotations  []RegionV1 `json:"annotations,omitempty"`
}

type StatsV1 struct {
	Length   int     `json:"length"`
	GapCount int     `json:"gap_count"`
	Identity float64 `json:"identity"`
}

// PSSMV1 carries the column profile. Per-column maps are keyed by the 20
// canonical residues.
type PSSMV1 struct {
	Frequencies     []map[string]float64 `json:"frequencies"`
	Scores          []map[string]float64 `json:"scores"`
	Conservation    []float64            `json:"conservation"`
	Consensus       string               `json:"consensus"`
	Background      map[string]float64   `json:"background"`
	AlignmentLength int                  `json:"alignment_length"`
	SequenceCount   int                  `json:"sequence_count"`
}

// RegionV1 is one framework/CDR region. Start/Stop are inclusive aligned
// coordinates; Mapped=false means the original coordinates were kept.
type RegionV1 struct {
	Name          string `json:"name"`
	Start         int    `json:"start"`
	Stop          int    `json:"stop"`
	OriginalStart int    `json:"original_start"`
	OriginalStop  int    `json:"original_stop"`
	Sequence      string `json:"sequence"`
	Color         string `json:"color"`
	Mapped        bool   `json:"mapped"`
}

// AnnotationV1 is the stable schema of an annotation result.
type AnnotationV1 struct {
	AlignmentID    string                       `json:"alignment_id"`
	Scheme         string                       `json:"numbering_scheme"`
	Sequences      []SequenceV1                 `json:"annotated_sequences"`
	RegionMappings map[string][]RegionMappingV1 `json:"region_mappings"`
}

type RegionMappingV1 struct {
	SequenceName  string `json:"sequence_name"`
	AlignedStart  int    `json:"aligned_start"`
	AlignedStop   int    `json:"aligned_stop"`
	OriginalStart int    `json:"original_start"`
	OriginalStop  int    `json:"original_stop"`
	Color         string `json:"color"`
	Mapped        bool   `json:"mapped"`
}

type ResidueValueV1 struct {
	Residue string  `json:"residue"`
	Value   float64 `json:"value"`
}

// PositionSummaryV1 describes one alignment column.
type PositionSummaryV1 struct {
	Position       int              `json:"position"`
	Consensus      string           `json:"consensus"`
	Conservation   float64          `json:"conservation"`
	TopFrequencies []ResidueValueV1 `json:"top_frequencies"`
	TopScores      []ResidueValueV1 `json:"top_scores"`
}

// RegionProfileV1 is a [start, stop) slice of the profile.
type RegionProfileV1 struct {
	Start               int                  `json:"start"`
	Stop                int                  `json:"stop"`
	Frequencies         []map[string]float64 `json:"frequencies"`
	Scores              []map[string]float64 `json:"scores"`
	Conservation        []float64            `json:"conservation"`
	Consensus           string               `json:"consensus"`
	AverageConservation float64              `json:"average_conservation"`
}
