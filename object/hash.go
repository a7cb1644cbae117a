/*
File    : raven/object/hash.go
Package : object
*/
package object

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// entry is one key/value pair stored in a subTable bucket chain.
type entry struct {
	key  Value
	data Value
}

// subTable is a chained hash table over one key kind: an array of buckets,
// each bucket a chain of entries, plus the set of populated bucket indices
// so iteration and teardown need only visit non-empty buckets (spec
// section 3's Hash object invariant). A Go slice stands in for the
// original's hand-rolled linked list — both are a growable chain; the
// bucket-index bookkeeping this type exists to demonstrate is unaffected.
type subTable struct {
	buckets   [][]entry
	populated map[int]bool
}

func newSubTable() *subTable {
	return &subTable{buckets: make([][]entry, 16), populated: make(map[int]bool)}
}

func (t *subTable) bucketFor(h uint64) int {
	return int(h % uint64(len(t.buckets)))
}

func (t *subTable) get(h uint64, key Value, eq func(Value, Value) bool) (Value, bool) {
	b := t.bucketFor(h)
	for _, e := range t.buckets[b] {
		if eq(e.key, key) {
			return e.data, true
		}
	}
	return nil, false
}

func (t *subTable) set(h uint64, key, value Value, eq func(Value, Value) bool) {
	b := t.bucketFor(h)
	for i, e := range t.buckets[b] {
		if eq(e.key, key) {
			t.buckets[b][i].data = value
			return
		}
	}
	t.buckets[b] = append(t.buckets[b], entry{key: key, data: value})
	t.populated[b] = true
}

func (t *subTable) len() int {
	n := 0
	for b := range t.populated {
		n += len(t.buckets[b])
	}
	return n
}

func identityEq(a, b Value) bool { return a == b }
func int64Eq(a, b Value) bool    { return a.(*Int).Value == b.(*Int).Value }
func float64Eq(a, b Value) bool  { return a.(*Float).Value == b.(*Float).Value }
func stringEq(a, b Value) bool   { return a.(*String).Value == b.(*String).Value }

func hashInt(i int64) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24),
		byte(i >> 32), byte(i >> 40), byte(i >> 48), byte(i >> 56)})
	return h.Sum64()
}

func hashFloat(f float64) uint64 {
	bits := math.Float64bits(f)
	h := fnv.New64a()
	h.Write([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56)})
	return h.Sum64()
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// hashIdentity hashes a value by its pointer address, for the
// object-identity sub-table (bool/list/hash/nil keys). Collisions only
// cost an extra bucket-chain comparison — identityEq still decides
// equality by pointer, so this only needs to distribute well, not be
// collision-free.
func hashIdentity(v Value) uint64 {
	h := fnv.New64a()
	h.Write([]byte(fmt.Sprintf("%p", v)))
	return h.Sum64()
}

// Hash is Raven's keyed collection: four sub-tables partitioned by key
// kind (int, float, string, and object-identity for bool/list/hash/nil),
// matching the data model in spec section 3.
type Hash struct {
	ints    *subTable
	floats  *subTable
	strings *subTable
	idents  *subTable
	// keyOrder preserves first-insertion order across all four tables, for
	// hash-literal printing and deterministic `for`-over-hash iteration
	// independent of bucket layout.
	keyOrder []Value
}

func NewHash() *Hash {
	return &Hash{
		ints:    newSubTable(),
		floats:  newSubTable(),
		strings: newSubTable(),
		idents:  newSubTable(),
	}
}

func (*Hash) Type() Type { return HashType }

func (h *Hash) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	h.Each(func(k, v Value) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(Echo(k))
		b.WriteString(": ")
		b.WriteString(Echo(v))
	})
	b.WriteByte('}')
	return b.String()
}

func (h *Hash) tableFor(key Value) (*subTable, uint64, func(Value, Value) bool) {
	switch k := key.(type) {
	case *Int:
		return h.ints, hashInt(k.Value), int64Eq
	case *Float:
		return h.floats, hashFloat(k.Value), float64Eq
	case *String:
		return h.strings, hashString(k.Value), stringEq
	default:
		return h.idents, hashIdentity(key), identityEq
	}
}

// Get looks up key, returning (value, true) if present.
func (h *Hash) Get(key Value) (Value, bool) {
	t, hv, eq := h.tableFor(key)
	return t.get(hv, key, eq)
}

// Set inserts or overwrites key's value.
func (h *Hash) Set(key, value Value) {
	t, hv, eq := h.tableFor(key)
	if _, existed := t.get(hv, key, eq); !existed {
		h.keyOrder = append(h.keyOrder, key)
	}
	t.set(hv, key, value, eq)
}

// Len reports the number of entries across all four sub-tables.
func (h *Hash) Len() int {
	return h.ints.len() + h.floats.len() + h.strings.len() + h.idents.len()
}

// Each visits every entry in first-insertion order.
func (h *Hash) Each(fn func(key, value Value)) {
	for _, k := range h.keyOrder {
		if v, ok := h.Get(k); ok {
			fn(k, v)
		}
	}
}
