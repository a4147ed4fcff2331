// Package natsort orders strings the way people read them: case-insensitive,
// with runs of digits compared by numeric value, so "book 2" comes before
// "book 10".
package natsort

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator compares strings in natural order. It is not safe for
// concurrent use; build one per goroutine.
type Comparator struct {
	collator *collate.Collator
}

func New() *Comparator {
	return &Comparator{
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
	}
}

// Compare returns -1, 0 or 1. Strings that collate equally ("Book 1" and
// "book 01") are ordered by their raw bytes so the result is total.
func (c *Comparator) Compare(a, b string) int {
	if r := c.collator.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func (c *Comparator) Less(a, b string) bool {
	return c.Compare(a, b) < 0
}

func Compare(a, b string) int {
	return New().Compare(a, b)
}

// Sort sorts items in place by the natural order of key, keeping the input
// order of items whose keys are identical.
func Sort[T any](items []T, key func(T) string) {
	c := New()
	slices.SortStableFunc(items, func(a, b T) int {
		return c.Compare(key(a), key(b))
	})
}

// Strings sorts ss in place in natural order.
func Strings(ss []string) {
	Sort(ss, func(s string) string { return s })
}
