// Package sharding maps canonical-URL hashes onto storage partitions.
//
// Routing is a pure function of the first hex character of the hash: the 16
// possible values are split into contiguous ranges, one range per data
// partition. Values not covered by any range, and hashes that do not start
// with a hex character, go to the fallback partition, which also hosts the
// account store. Partition 0 is always the fallback; data partitions are
// numbered 1..N to match the ordered DSN list in the configuration.
package sharding

// Range assigns a contiguous span of first-hex-character values to one
// partition. Lo and Hi are inclusive positions in 0..15.
type Range struct {
	Lo        int
	Hi        int
	Partition int
}

// Router routes hashes to partitions using an immutable range table.
// It is safe for concurrent use; build it once at startup.
type Router struct {
	table    [16]int
	fallback int
	count    int
}

// FallbackPartition is the partition that absorbs every hash not covered by
// a configured range. It doubles as the master store for accounts.
const FallbackPartition = 0

// NewRouter builds a router for dataPartitions data partitions numbered
// 1..dataPartitions. The 16 first-character values are split into contiguous
// ranges of equal size; the remainder maps to the fallback partition. With
// two data partitions this yields the reference split: 0-5 to partition 1,
// 6-b to partition 2, c-f to the fallback.
func NewRouter(dataPartitions int) *Router {
	if dataPartitions <= 0 {
		return NewRouterFromRanges(nil)
	}

	per := (16 + dataPartitions) / (dataPartitions + 1)
	ranges := make([]Range, 0, dataPartitions)
	for i := 0; i < dataPartitions; i++ {
		lo := i * per
		hi := (i+1)*per - 1
		if lo > 15 {
			break
		}
		if hi > 15 {
			hi = 15
		}
		ranges = append(ranges, Range{Lo: lo, Hi: hi, Partition: i + 1})
	}
	return NewRouterFromRanges(ranges)
}

// NewRouterFromRanges builds a router from an explicit, ordered range table.
// Values outside every range route to the fallback partition. An empty table
// routes everything to the fallback.
func NewRouterFromRanges(ranges []Range) *Router {
	r := &Router{fallback: FallbackPartition, count: 1}
	for i := range r.table {
		r.table[i] = r.fallback
	}
	max := FallbackPartition
	for _, rg := range ranges {
		for v := rg.Lo; v <= rg.Hi && v < 16; v++ {
			if v < 0 {
				continue
			}
			r.table[v] = rg.Partition
		}
		if rg.Partition > max {
			max = rg.Partition
		}
	}
	r.count = max + 1
	return r
}

// Route returns the partition for a hex hash string. It is pure, total and
// O(1): repeated calls with the same hash always return the same partition.
func (r *Router) Route(hash string) int {
	if len(hash) == 0 {
		return r.fallback
	}
	v := hexValue(hash[0])
	if v < 0 {
		return r.fallback
	}
	return r.table[v]
}

// Partitions returns the total number of partitions the router addresses,
// including the fallback.
func (r *Router) Partitions() int {
	return r.count
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
