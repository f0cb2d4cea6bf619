// Package slug derives URL path segments from Czech display names.
package slug

import (
	"strings"
	"unicode"
)

// Transliterations maps lowercase Czech letters (and the few grave-accented
// variants that show up in older extracts) to their ASCII base letter.
var Transliterations = map[rune]rune{
	'á': 'a', 'à': 'a',
	'č': 'c',
	'ď': 'd',
	'é': 'e', 'ě': 'e', 'è': 'e',
	'í': 'i', 'ì': 'i',
	'ň': 'n',
	'ó': 'o', 'ò': 'o',
	'ř': 'r',
	'š': 's',
	'ť': 't',
	'ú': 'u', 'ů': 'u', 'ù': 'u',
	'ý': 'y', 'ỳ': 'y',
	'ž': 'z',
}

// Make lowercases name, transliterates it and keeps only [a-z0-9-].
// Spaces become hyphens, runs of hyphens collapse and the result never
// starts or ends with one. The result is empty when nothing survives.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range name {
		r = unicode.ToLower(r)
		if t, ok := Transliterations[r]; ok {
			r = t
		}
		switch {
		case r == ' ' || r == '-':
			pendingHyphen = true
		case isASCIIAlnum(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
