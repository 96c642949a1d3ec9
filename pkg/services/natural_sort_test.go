package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLess(t *testing.T) {
	assert.True(t, NaturalLess("img2.jpg", "img10.jpg"))
	assert.False(t, NaturalLess("img10.jpg", "img2.jpg"))
	assert.True(t, NaturalLess("a", "b"))
	assert.True(t, NaturalLess("abc", "abcd"))
	assert.False(t, NaturalLess("same", "same"))
	assert.True(t, NaturalLess("file99999999999999999999", "file100000000000000000000"))
}

func TestSortNatural(t *testing.T) {
	names := []string{"Trip 10", "trip 2", "Trip 1", "Album"}
	SortNatural(names)
	assert.Equal(t, []string{"Album", "Trip 1", "trip 2", "Trip 10"}, names)
}
