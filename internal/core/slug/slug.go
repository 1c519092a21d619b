// Package slug derives URL-safe lowercase tokens from free-text titles
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining marks and format chars
// 5 Width fold fullwidth to ASCII
// 6 Keep ascii letters digits spaces hyphens drop the rest
// 7 Collapse whitespace runs to single hyphens collapse hyphen runs trim hyphens
// Empty result falls back to the fixed token "post"
package slug

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Fallback is the token used when a title yields no usable characters
const Fallback = "post"

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Make returns the slug candidate for s following the pipeline described above
// It is total: any input, including empty or garbage, yields a non-empty token
func Make(s string) string {
	if out := derive(s); out != "" {
		return out
	}
	return Fallback
}

func derive(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6-7 keep [a-z0-9], turn separator runs into single hyphens
	var b strings.Builder
	b.Grow(len(ns))
	pendingSep := false
	for _, r := range ns {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingSep = true
		default:
			// outside letters/digits/whitespace/hyphen: dropped
		}
	}
	return b.String()
}
