package emit

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// canonicalCollator wraps a locale-aware collator used for the stable
// tie-break ordering of emitted rules and the objects declaration. A
// plain byte-order sort would work too, but a collator guards against
// the emitted file's ordering shifting under a reader's own
// locale-sensitive tooling (e.g. a diff viewer configured for collated
// sort).
type canonicalCollator struct {
	c *collate.Collator
}

func newCollator() canonicalCollator {
	return canonicalCollator{c: collate.New(language.Und)}
}

func (cc canonicalCollator) less(a, b string) bool {
	return cc.c.CompareString(a, b) < 0
}
