// Package brand flags domains whose second-level label looks like a well
// known trademark.
package brand

import "strings"

//nolint: gochecknoglobals
var brands = []string{
	"nike", "adidas", "amazon", "apple", "google", "microsoft", "facebook", "meta", "tesla", "samsung",
	"netflix", "paypal", "spotify", "reddit", "twitter", "x", "intel", "amd", "nvidia", "bmw", "mercedes",
	"audi", "shell", "coca", "cocacola", "coke", "pepsi", "mcdonalds", "mcdonald", "burgerking",
}

// Label returns the part of d before the first dot, or d itself.
func Label(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if i := strings.IndexByte(d, '.'); i >= 0 {
		return d[:i]
	}

	return d
}

// IsBrand reports whether the label of d equals, starts with or ends with a
// known brand. Short brands such as "x" over-match on purpose: any label
// ending in "x" is flagged and callers treat the flag as a hint only.
func IsBrand(d string) bool {
	label := Label(d)
	if label == "" {
		return false
	}
	for _, b := range brands {
		if strings.HasPrefix(label, b) || strings.HasSuffix(label, b) {
			return true
		}
	}

	return false
}
