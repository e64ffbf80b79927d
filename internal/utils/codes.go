package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomToken returns n random characters from [0-9A-Z]
func RandomToken(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		sb.WriteByte(tokenAlphabet[idx.Int64()])
	}
	return sb.String()
}

// MaterialCodePrefix builds "<first 3 of name>-<first 2 of unit>" in upper case.
// Empty inputs fall back to VT and DV.
func MaterialCodePrefix(name, unit string) string {
	if name == "" {
		name = "VT"
	}
	if unit == "" {
		unit = "DV"
	}
	return strings.ToUpper(firstRunes(name, 3) + "-" + firstRunes(unit, 2))
}

// MaterialCode appends a random suffix to MaterialCodePrefix
func MaterialCode(name, unit string) string {
	return MaterialCodePrefix(name, unit) + "-" + RandomToken(5)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
