package mdbtest

import (
	"bytes"
	"sort"
)

type entry struct {
	key  []byte
	vals [][]byte // sorted when the table is DupSort, otherwise exactly one
}

type table struct {
	flags   uint
	entries []entry
}

// store is one database file: the main table under "" plus named tables.
type store struct {
	tables map[string]*table
}

func newStore() *store {
	return &store{tables: map[string]*table{"": {}}}
}

func (s *store) clone() *store {
	out := &store{tables: make(map[string]*table, len(s.tables))}
	for name, t := range s.tables {
		out.tables[name] = t.clone()
	}
	return out
}

func (t *table) clone() *table {
	out := &table{flags: t.flags, entries: make([]entry, len(t.entries))}
	for i, e := range t.entries {
		vals := make([][]byte, len(e.vals))
		copy(vals, e.vals)
		out.entries[i] = entry{key: e.key, vals: vals}
	}
	return out
}

func (t *table) dupsort() bool { return t.flags&DupSort != 0 }

// find returns the index of the first entry with key >= k.
func (t *table) find(k []byte) (int, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return bytes.Compare(t.entries[i].key, k) >= 0
	})
	return i, i < len(t.entries) && bytes.Equal(t.entries[i].key, k)
}

// findVal returns the index of the first value >= v within entry i.
func (t *table) findVal(i int, v []byte) (int, bool) {
	vals := t.entries[i].vals
	j := sort.Search(len(vals), func(j int) bool {
		return bytes.Compare(vals[j], v) >= 0
	})
	return j, j < len(vals) && bytes.Equal(vals[j], v)
}

func (t *table) put(k, v []byte, flags uint) error {
	k, v = bytes.Clone(k), bytes.Clone(v)
	if v == nil {
		v = []byte{}
	}
	i, found := t.find(k)
	if !found {
		t.entries = append(t.entries, entry{})
		copy(t.entries[i+1:], t.entries[i:])
		t.entries[i] = entry{key: k, vals: [][]byte{v}}
		return nil
	}
	if flags&NoOverwrite != 0 {
		return Errno(KeyExist)
	}
	if !t.dupsort() {
		t.entries[i].vals[0] = v
		return nil
	}
	j, dup := t.findVal(i, v)
	if dup {
		if flags&NoDupData != 0 {
			return Errno(KeyExist)
		}
		return nil
	}
	vals := append(t.entries[i].vals, nil)
	copy(vals[j+1:], vals[j:])
	vals[j] = v
	t.entries[i].vals = vals
	return nil
}

// del removes a whole key, or a single duplicate when v is given on a
// DupSort table.
func (t *table) del(k, v []byte) error {
	i, found := t.find(k)
	if !found {
		return Errno(NotFound)
	}
	if v == nil || !t.dupsort() {
		if v != nil && !bytes.Equal(t.entries[i].vals[0], v) {
			return Errno(NotFound)
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		return nil
	}
	j, dup := t.findVal(i, v)
	if !dup {
		return Errno(NotFound)
	}
	vals := t.entries[i].vals
	t.entries[i].vals = append(vals[:j], vals[j+1:]...)
	if len(t.entries[i].vals) == 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
	}
	return nil
}
