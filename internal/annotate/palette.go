package annotate

import (
	"strings"

	"abalign/internal/common"
)

// DefaultColor is used for region names outside the palette.
const DefaultColor = "#CCCCCC"

var palette = map[string]string{
	"FR1":  "#FFB3BA",
	"CDR1": "#FF6B6B",
	"FR2":  "#BAFFC9",
	"CDR2": "#4ECDC4",
	"FR3":  "#BAE1FF",
	"CDR3": "#FFD93D",
	"FR4":  "#E0BBE4",
}

// ColorFor returns the display color of a region. Scheme suffixes such as
// "CDR3_imgt" or "FR1-kabat" are ignored.
func ColorFor(region string) string {
	if c, ok := palette[BaseName(region)]; ok {
		return c
	}
	return DefaultColor
}

// BaseName upper-cases a region name and strips any scheme suffix.
func BaseName(region string) string {
	base := strings.ToUpper(strings.TrimSpace(region))
	if i := strings.IndexAny(base, "_-. "); i > 0 {
		base = base[:i]
	}
	return base
}

// Schemes lists the supported numbering schemes.
var Schemes = []string{"imgt", "kabat", "chothia", "martin", "aho"}

// DefaultScheme is used when none is requested.
const DefaultScheme = "imgt"

// ParseScheme normalizes a numbering scheme name.
func ParseScheme(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultScheme, nil
	}
	for _, known := range Schemes {
		if s == known {
			return s, nil
		}
	}
	return "", common.Invalidf("unsupported numbering scheme %q (want one of %s)", s, strings.Join(Schemes, ", "))
}
