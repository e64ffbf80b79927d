package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameKey normalizes a material name for lookups: NFC, trimmed,
// inner whitespace collapsed, lower case.
// "  Xi  Măng " and "xi măng" share a key.
func NameKey(name string) string {
	fields := strings.Fields(norm.NFC.String(name))
	return strings.ToLower(strings.Join(fields, " "))
}

// ASCIIFold strips diacritics, e.g. "Xi măng Đà Nẵng" -> "Xi mang Da Nang".
// Used where only Latin-1 fonts are available.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}
