package wcsp

// Tuple is an ordered list of value-indices, one per scope position (spec
// §3).
type Tuple []int

// Key returns a stable, comparable string encoding of a tuple for use as a
// map key in sparse n-ary tables. Each element is varint-encoded, which is
// self-delimiting, so distinct tuples never share a key.
func (t Tuple) Key() string {
	buf := make([]byte, 0, len(t)*5)
	for _, v := range t {
		buf = appendVarint(buf, v)
	}
	return string(buf)
}

func appendVarint(buf []byte, v int) []byte {
	u := uint64(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// lexicographicIndex returns the row-major lexicographic index of a
// 2-or-3-element tuple against the given per-position domain sizes (spec
// §4.3: "row-major lexicographic order").
func lexicographicIndex(tuple []int, domainSizes []int) int {
	idx := 0
	for i, v := range tuple {
		idx = idx*domainSizes[i] + v
	}
	return idx
}

// product returns the product of domain sizes, i.e. the size of the full
// Cartesian-product cost table for that scope.
func product(domainSizes []int) int {
	p := 1
	for _, d := range domainSizes {
		p *= d
	}
	return p
}
