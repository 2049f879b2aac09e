package core

// convert.go turns the messy text of schedule exports into comparable values.
//
// These functions handle the reality of spreadsheet and database exports:
//   - Multiple timestamp formats (ISO, day-first, month-first, Excel serials)
//   - Excel formula prefixes (="value") and stray quotes
//   - Tier labels that carry their number inside text ("Tier 2")
//   - Database values arriving as pgtype or native Go types
//
// Nothing here returns an error: unparsable input yields an empty result and
// the caller decides whether that means "unvalidated" or "no key".

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// digitsRegex finds the first run of digits in a value.
var digitsRegex = regexp.MustCompile(`\d+`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// DateLayout is the canonical calendar-date form used for date-part keys.
const DateLayout = "2006-01-02"

// excelEpoch is day zero of the Excel 1900 date system (with its leap-year bug).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Timestamp layouts split by ambiguity so day-first preference can be honored.
var (
	isoLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006/01/02",
		"20060102",
	}
	dayFirstLayouts = []string{
		"2/1/2006 15:04:05", "2/1/2006 15:04", "2/1/2006",
		"2-1-2006 15:04:05", "2-1-2006 15:04", "2-1-2006",
		"2.1.2006 15:04:05", "2.1.2006 15:04", "2.1.2006",
		"2 Jan 2006 15:04", "2 Jan 2006",
	}
	monthFirstLayouts = []string{
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006",
		"1-2-2006 15:04:05", "1-2-2006 15:04", "1-2-2006",
		"Jan 2, 2006 15:04", "Jan 2, 2006",
	}
	dayFirstShortLayouts   = []string{"2/1/06 15:04", "2/1/06", "2.1.06"}
	monthFirstShortLayouts = []string{"1/2/06 15:04", "1/2/06", "1-2-06"}
)

// ParseTimestamp parses a master timestamp.
// Ambiguous numeric dates are read day-first when dayFirst is set.
func ParseTimestamp(s string, dayFirst bool) (time.Time, bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	first, second := monthFirstLayouts, dayFirstLayouts
	firstShort, secondShort := monthFirstShortLayouts, dayFirstShortLayouts
	if dayFirst {
		first, second = second, first
		firstShort, secondShort = secondShort, firstShort
	}

	for _, layouts := range [][]string{first, second} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layouts := range [][]string{firstShort, secondShort} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				if t.Year() > pivotYear {
					t = t.AddDate(-100, 0, 0)
				}
				return t, true
			}
		}
	}

	return excelSerial(s)
}

// excelSerial interprets a bare number as an Excel serial date.
func excelSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 1 || f > 2958465 {
		return time.Time{}, false
	}
	days := math.Floor(f)
	frac := f - days
	t := excelEpoch.AddDate(0, 0, int(days))
	return t.Add(time.Duration(math.Round(frac*86400)) * time.Second), true
}

// DatePart returns the calendar date of a timestamp as YYYY-MM-DD.
// Returns "" when the value cannot be parsed.
func DatePart(s string, dayFirst bool) string {
	t, ok := ParseTimestamp(s, dayFirst)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}

// ExtractNumber returns the first run of digits in s, or "" if there is none.
func ExtractNumber(s string) string {
	return digitsRegex.FindString(s)
}

// TextValue renders a database value as cell text.
// Returns "" for NULL.
func TextValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return formatTime(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(DateLayout)
	case pgtype.Timestamp:
		if !val.Valid {
			return ""
		}
		return formatTime(val.Time)
	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return formatTime(val.Time.UTC())
	case pgtype.Numeric:
		return numericText(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}

func numericText(n pgtype.Numeric) string {
	if !n.Valid {
		return ""
	}
	v, err := n.Value()
	if err != nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching; the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}

	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}
