package main

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalRegex  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	prefixedRegex = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
	infinityRegex = regexp.MustCompile(`^[+-]?Infinity$`)
)

// NumericFlag is a boolean filter received as a query string. The
// raw value is read as a number and a book flag matches when it
// equals 1 (true) or 0 (false). Any other value matches nothing.
type NumericFlag struct {
	set   bool
	value float64
}

// ParseNumericFlag builds a flag from a raw query value. An empty
// value leaves the flag unset so it does not filter anything.
func ParseNumericFlag(raw string) NumericFlag {
	if raw == "" {
		return NumericFlag{}
	}
	return NumericFlag{set: true, value: parseNumber(raw)}
}

// IsSet reports whether the flag takes part in filtering.
func (f NumericFlag) IsSet() bool {
	return f.set
}

// Matches reports whether the given boolean satisfies the flag.
func (f NumericFlag) Matches(b bool) bool {
	if !f.set {
		return true
	}
	if b {
		return f.value == 1
	}
	return f.value == 0
}

// parseNumber converts a query value to a number. Surrounding blanks
// are ignored, a blank value counts as zero and anything that is not
// a number yields NaN. Accepted forms are signed decimals with an
// optional exponent, unsigned 0x/0o/0b integers and Infinity.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return 0
	case decimalRegex.MatchString(s):
		// out of range values still parse to an infinity.
		n, _ := strconv.ParseFloat(s, 64)
		return n
	case prefixedRegex.MatchString(s):
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return math.Inf(1)
		}
		return float64(n)
	case infinityRegex.MatchString(s):
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return math.NaN()
}

// BookFilters holds the optional criteria used when listing books.
// All set criteria must match.
type BookFilters struct {
	Name     string
	Reading  NumericFlag
	Finished NumericFlag
}

// ParseBookFilters reads the `name`, `reading` and `finished` query parameters.
func ParseBookFilters(q url.Values) BookFilters {
	return BookFilters{
		Name:     q.Get("name"),
		Reading:  ParseNumericFlag(q.Get("reading")),
		Finished: ParseNumericFlag(q.Get("finished")),
	}
}

// Match reports whether a book satisfies every set criteria. The name
// criteria is a case-insensitive substring match.
func (f BookFilters) Match(b *Book) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(f.Name)) {
		return false
	}
	return f.Reading.Matches(b.Reading) && f.Finished.Matches(b.Finished)
}
