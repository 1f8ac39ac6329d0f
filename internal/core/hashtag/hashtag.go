// Package hashtag turns free-form category names into chat hashtags
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization and width fold
// 3 Remove format chars (ZWJ, ZWNJ, FEFF)
// 4 Whitespace runs become a single underscore
// 5 Punctuation and symbols are dropped, letters and digits kept with their case
package hashtag

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Fallback is used when nothing taggable survives normalization
const Fallback = "Неизвестная_подкатегория"

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Normalize returns the hashtag body for s (without the leading '#'), or "" when
// nothing taggable remains
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.TrimSpace(s) == "" {
		return ""
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	var b strings.Builder
	b.Grow(len(ns))
	pending := false
	for _, r := range ns {
		switch {
		case unicode.IsSpace(r) || r == '_':
			pending = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending {
				b.WriteByte('_')
				pending = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tag is Normalize with the fallback applied
func Tag(s string) string {
	if n := Normalize(s); n != "" {
		return n
	}
	return Fallback
}
