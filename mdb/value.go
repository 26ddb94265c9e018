package mdb

import (
	"math"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	NumberKind ValueKind = iota
	BytesKind
	ArrayKind
)

func (k ValueKind) String() string {
	switch k {
	case NumberKind:
		return "number"
	case BytesKind:
		return "bytes"
	case ArrayKind:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed host value: a number, a length-qualified
// byte string, or an associative array.
type Value struct {
	kind ValueKind
	num  float64
	buf  []byte
	arr  *Array
}

func Number(f float64) Value { return Value{kind: NumberKind, num: f} }

func Int(i int64) Value { return Value{kind: NumberKind, num: float64(i)} }

func Uint(u uint64) Value { return Value{kind: NumberKind, num: float64(u)} }

// Bytes wraps b without copying.
func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: BytesKind, buf: b}
}

func String(s string) Value { return Value{kind: BytesKind, buf: []byte(s)} }

func ArrayValue(a *Array) Value {
	if a == nil {
		a = NewArray()
	}
	return Value{kind: ArrayKind, arr: a}
}

func (v Value) Kind() ValueKind { return v.kind }

// Num returns the numeric payload; zero for non-numbers.
func (v Value) Num() float64 { return v.num }

// Bytes returns the byte payload; nil for non-byte values.
func (v Value) Bytes() []byte { return v.buf }

// Array returns the array payload; nil for non-arrays.
func (v Value) Array() *Array { return v.arr }

// String renders the value the way awk would print it: integral numbers
// without a fraction, other numbers with six significant digits.
func (v Value) String() string {
	switch v.kind {
	case NumberKind:
		return formatNumber(v.num)
	case BytesKind:
		return string(v.buf)
	default:
		return "<array>"
	}
}

func formatNumber(f float64) string {
	if i, ok := exactInt(f); ok {
		return strconv.FormatInt(i, 10)
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// exactInt converts f to an int64 when no fractional part or range is lost.
func exactInt(f float64) (int64, bool) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	i := int64(f)
	return i, float64(i) == f
}

// Array is an ordered associative container keyed by string subscripts.
// Iteration order is insertion order.
type Array struct {
	keys  []string
	elems map[string]Value
}

func NewArray() *Array {
	return &Array{elems: make(map[string]Value)}
}

func (a *Array) Get(sub string) (Value, bool) {
	v, ok := a.elems[sub]
	return v, ok
}

func (a *Array) Set(sub string, v Value) {
	if _, ok := a.elems[sub]; !ok {
		a.keys = append(a.keys, sub)
	}
	a.elems[sub] = v
}

func (a *Array) Delete(sub string) {
	if _, ok := a.elems[sub]; !ok {
		return
	}
	delete(a.elems, sub)
	for i, k := range a.keys {
		if k == sub {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

func (a *Array) Clear() {
	a.keys = nil
	a.elems = make(map[string]Value)
}

func (a *Array) Len() int { return len(a.keys) }

// Keys returns the subscripts in insertion order.
func (a *Array) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}
