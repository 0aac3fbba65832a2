// Package textfold provides the two text normalizations used across the
// service: Clean, which keeps a string readable, and Fold, which produces a
// comparison key that ignores Arabic letter variants, diacritics, whitespace
// and case.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	alef       = 'ا'
	alefWasla  = 'ٱ'
	taMarbuta  = 'ة'
	ha         = 'ه'
	alefMaddah = 'آ'
)

// Clean removes invisible format characters (directional marks, zero-width
// joiners, BOM), trims the result and collapses whitespace runs to a single
// space.
func Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the loose comparison key for s. Two strings that differ only
// in alef/hamza form, ة versus ه, diacritics, spacing, invisible marks or
// letter case fold to the same key.
func Fold(s string) string {
	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(foldLetter),
		runes.Remove(runes.In(unicode.White_Space)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

func foldLetter(r rune) rune {
	switch r {
	case alefWasla, alefMaddah:
		return alef
	case taMarbuta:
		return ha
	}
	return r
}

// Equal reports whether a and b fold to the same key.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Contains reports whether the fold of needle occurs in the fold of haystack.
// An empty needle never matches.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// Overlaps reports whether either folded value contains the other. Empty
// values never overlap.
func Overlaps(a, b string) bool {
	fa, fb := Fold(a), Fold(b)
	if fa == "" || fb == "" {
		return false
	}
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}
