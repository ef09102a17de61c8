// Package numparse converts loosely formatted, human written numbers such as
// "1,234", "1.2k", "3,4 Mio" or "12.345,67" into float64 values.
//
// The conversion is a best-effort heuristic. Separators are ambiguous between
// locales and the parser guesses based on digit grouping, so the result must
// never be treated as authoritative.
package numparse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// numberRun matches digits with embedded separators followed by an optional magnitude suffix.
	// Separators include non-ASCII spaces such as NBSP and U+202F.
	numberRun = regexp.MustCompile(`([0-9][0-9.,\s\p{Zs}]*)([kmb])?`)
	digitRun  = regexp.MustCompile(`[0-9]+`)

	commaThousands = regexp.MustCompile(`\d,\d{3}(\D|$)`)
	commaDecimal   = regexp.MustCompile(`\d+,\d+$`)
	dotThousands   = regexp.MustCompile(`\d\.\d{3}(\D|$)`)

	magnitudeWords = []struct{ word, suffix string }{
		{"mio", "m"},
		{"millionen", "m"},
		{"milliarden", "b"},
	}
)

// Suffix scales for k/m/b magnitudes.
const (
	Thousand = 1_000
	Million  = 1_000_000
	Billion  = 1_000_000_000
)

// Parse returns the first number found in s. The second return value is false
// when s contains no digits at all.
func Parse(s string) (float64, bool) {
	txt := strings.ToLower(strings.TrimSpace(s))
	for _, w := range magnitudeWords {
		txt = strings.ReplaceAll(txt, w.word, w.suffix)
	}

	m := numberRun.FindStringSubmatch(txt)
	if m == nil {
		bare := digitRun.FindString(txt)
		if bare == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(bare, 64)
		if err != nil {
			return 0, false
		}

		return v, true
	}

	v, ok := parseToken(normalizeSeparators(m[1]))
	if !ok {
		return 0, false
	}

	switch m[2] {
	case "k":
		v *= Thousand
	case "m":
		v *= Million
	case "b":
		v *= Billion
	}

	return v, true
}

// normalizeSeparators rewrites a digit run into a form strconv understands.
// Both '.' and ',' present means European notation (1.234,5). Otherwise a comma
// followed by exactly three digits is a thousands separator, a trailing comma
// group is a decimal part, and a lone dot followed by three digits is treated
// as a stray thousands separator.
func normalizeSeparators(token string) string {
	if strings.Contains(token, ".") && strings.Contains(token, ",") {
		token = strings.ReplaceAll(token, ".", "")

		return strings.ReplaceAll(token, ",", ".")
	}

	token = stripSpaces(token)
	switch {
	case commaThousands.MatchString(token):
		token = strings.ReplaceAll(token, ",", "")
	case commaDecimal.MatchString(token):
		token = strings.ReplaceAll(token, ",", ".")
	default:
		token = strings.ReplaceAll(token, ",", "")
	}

	if dotThousands.MatchString(token) {
		token = strings.ReplaceAll(token, ".", "")
	}

	return token
}

func parseToken(token string) (float64, bool) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(token), 64); err == nil {
		return v, true
	}

	digits := strings.Join(digitRun.FindAllString(token, -1), "")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}
