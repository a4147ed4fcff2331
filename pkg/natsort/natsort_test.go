package natsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"book 2", "book 10", -1},
		{"book 10", "book 2", 1},
		{"book 1", "book 002", -1},
		{"book 05", "book 6", -1},
		{"Book 3", "book 4", -1},
		{"Vol. 9", "vol. 10", -1},
		{"same", "same", 0},
		{"a", "b", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestCompare_EqualUnderCollationIsStillTotal(t *testing.T) {
	t.Parallel()

	c := New()
	assert.NotEqual(t, 0, c.Compare("Book 1", "book 1"))
	assert.Equal(t, -c.Compare("Book 1", "book 1"), c.Compare("book 1", "Book 1"))
}

func TestStrings(t *testing.T) {
	t.Parallel()

	names := []string{"book 6", "book 05", "book 1", "book 002"}
	Strings(names)
	assert.Equal(t, []string{"book 1", "book 002", "book 05", "book 6"}, names)

	names = []string{"Chapter 10", "chapter 9", "Chapter 100", "chapter 1a", "chapter 1"}
	Strings(names)
	assert.Equal(t, []string{"chapter 1", "chapter 1a", "chapter 9", "Chapter 10", "Chapter 100"}, names)
}

func TestSort(t *testing.T) {
	t.Parallel()

	type item struct {
		name string
		id   int
	}
	items := []item{{"b 10", 1}, {"b 2", 2}, {"a 1", 3}, {"b 2", 4}}
	Sort(items, func(i item) string { return i.name })
	assert.Equal(t, []item{{"a 1", 3}, {"b 2", 2}, {"b 2", 4}, {"b 10", 1}}, items)
}
