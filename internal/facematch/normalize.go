package facematch

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName trims surrounding whitespace and applies NFC so that the same
// name typed with composed or decomposed accents maps to one store key.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NameFromFile derives an identity name from an image file stem
// ("jan_novak" -> "jan novak").
func NameFromFile(stem string) string {
	return CanonicalName(strings.ReplaceAll(stem, "_", " "))
}
