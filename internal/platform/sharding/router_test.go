package sharding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRouter_ReferenceSplit(t *testing.T) {
	// Two data partitions: 0-5 -> 1, 6-b -> 2, c-f -> fallback.
	r := NewRouter(2)

	tests := []struct {
		hash     string
		expected int
	}{
		{"0abc", 1},
		{"5fff", 1},
		{"6000", 2},
		{"b123", 2},
		{"c123", FallbackPartition},
		{"ffff", FallbackPartition},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, r.Route(tt.hash), "hash %q", tt.hash)
	}
	assert.Equal(t, 3, r.Partitions())
}

func TestRouter_Deterministic(t *testing.T) {
	r := NewRouter(4)
	for i := 0; i < 100; i++ {
		assert.Equal(t, r.Route("a1b2"), r.Route("a1b2"))
	}

	// Hashes sharing a first character always share a partition.
	assert.Equal(t, r.Route("7aaa"), r.Route("7000"))
	assert.Equal(t, r.Route("e123"), r.Route("efff"))
}

func TestRouter_FallbackCases(t *testing.T) {
	r := NewRouter(2)

	assert.Equal(t, FallbackPartition, r.Route(""), "empty hash")
	assert.Equal(t, FallbackPartition, r.Route("zzzz"), "non-hex first character")
	assert.Equal(t, FallbackPartition, r.Route("G123"), "uppercase is not canonical hex")
}

func TestNewRouter_ZeroDataPartitions(t *testing.T) {
	r := NewRouter(0)
	for _, h := range []string{"0", "7abc", "f000", ""} {
		assert.Equal(t, FallbackPartition, r.Route(h))
	}
	assert.Equal(t, 1, r.Partitions())
}

func TestNewRouter_CoversWholeSpace(t *testing.T) {
	// Every first character must route somewhere valid for any partition count.
	for n := 1; n <= 8; n++ {
		r := NewRouter(n)
		for _, c := range "0123456789abcdef" {
			p := r.Route(string(c))
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, n)
		}
	}
}

func TestNewRouterFromRanges_Explicit(t *testing.T) {
	r := NewRouterFromRanges([]Range{
		{Lo: 0, Hi: 7, Partition: 1},
		{Lo: 8, Hi: 15, Partition: 2},
	})

	assert.Equal(t, 1, r.Route("0"))
	assert.Equal(t, 1, r.Route("7"))
	assert.Equal(t, 2, r.Route("8"))
	assert.Equal(t, 2, r.Route("f"))
	assert.Equal(t, 3, r.Partitions())
}
