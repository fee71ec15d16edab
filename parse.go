package mandel

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParsePair splits s at the first occurrence of sep and parses both halves with parse.
// It reports false if sep is missing or either half fails to parse; "10,20,30" split on ','
// fails because "20,30" is not a number.
func ParsePair[T any](s string, sep rune, parse func(string) (T, error)) (T, T, bool) {
	var zero T
	i := strings.IndexRune(s, sep)
	if i < 0 {
		return zero, zero, false
	}
	l, err := parse(s[:i])
	if err != nil {
		return zero, zero, false
	}
	r, err := parse(s[i+utf8.RuneLen(sep):])
	if err != nil {
		return zero, zero, false
	}
	return l, r, true
}

// ParseInt parses a base 10 int. It is meant to be passed to ParsePair.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseFloat parses a decimal float64. It is meant to be passed to ParsePair.
// Hex floats and underscore digit separators are rejected.
func ParseFloat(s string) (float64, error) {
	if strings.ContainsAny(s, "xX_") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(s, 64)
}

// ParseComplex parses "re,im", e.g. "1.25,-0.0625".
func ParseComplex(s string) (complex128, bool) {
	re, im, ok := ParsePair(s, ',', ParseFloat)
	if !ok {
		return 0, false
	}
	return complex(re, im), true
}

// ParseBounds parses "WIDTHxHEIGHT", e.g. "1920x1080". Both dimensions must be positive.
func ParseBounds(s string) (Bounds, bool) {
	w, h, ok := ParsePair(s, 'x', ParseInt)
	if !ok {
		return Bounds{}, false
	}
	b := Bounds{Width: w, Height: h}
	if !b.Valid() {
		return Bounds{}, false
	}
	return b, true
}
