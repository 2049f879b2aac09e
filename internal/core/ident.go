package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeID canonicalizes an identifier to a comparable string.
//
// Spreadsheet exports routinely turn 1627 into "1627.0" or " 1627 ". If the
// trimmed value is an integer, optionally followed by a zero fraction, its
// digits are returned without leading zeros. Other numerals (scientific
// notation) are accepted when they denote an integer a float64 holds exactly.
// Anything else comes back trimmed. Never fails.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	folded := norm.NFKC.String(s)

	// Plain digits are rewritten as text so long ids keep every digit.
	if m := integerText.FindStringSubmatch(folded); m != nil {
		digits := strings.TrimLeft(m[2], "0")
		switch {
		case digits == "":
			return "0"
		case m[1] == "-":
			return "-" + digits
		default:
			return digits
		}
	}

	f, err := strconv.ParseFloat(folded, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return s
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// integerText matches a signed integer with an optional all-zero fraction.
var integerText = regexp.MustCompile(`^([+-]?)([0-9]+)(?:\.0*)?$`)

// maxExactFloat is the largest magnitude below which every integer has an
// exact float64 form.
const maxExactFloat = 1 << 53

// invalidKeys are placeholder spellings left behind by spreadsheet tools.
var invalidKeys = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"nat":  true,
	"<na>": true,
}

// IsInvalidKey reports whether raw cannot take part in linkage.
func IsInvalidKey(raw string) bool {
	return invalidKeys[strings.ToLower(strings.TrimSpace(raw))]
}
