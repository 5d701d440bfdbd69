// Package natsort orders file names the way people read them: "img2" sorts
// before "img10", and letters compare case-insensitively.
package natsort

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Less compares lowercased names naturally. Names that only differ in case
// or leading zeros fall back to byte order so the ordering stays strict.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if natural.Less(la, lb) {
		return true
	}
	if natural.Less(lb, la) {
		return false
	}
	return a < b
}

func Strings(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return Less(names[i], names[j]) })
}
