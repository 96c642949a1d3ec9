package services

import (
	"sort"
	"strings"
	"unicode"
)

// NaturalLess orders strings with embedded numbers numerically, so that
// "img2.jpg" sorts before "img10.jpg". Runs of digits are compared by value
// without overflowing, and everything else byte-wise.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}

			n1 := strings.TrimLeft(a[si:i], "0")
			n2 := strings.TrimLeft(b[sj:j], "0")
			if len(n1) != len(n2) {
				return len(n1) < len(n2)
			}
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}

		ca := unicode.ToLower(rune(a[i]))
		cb := unicode.ToLower(rune(b[j]))
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	if len(a)-i != len(b)-j {
		return len(a)-i < len(b)-j
	}
	return a < b
}

// SortNatural sorts names in place using NaturalLess
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
