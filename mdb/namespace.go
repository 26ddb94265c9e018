package mdb

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// HandleKind names one of the four resource namespaces.
type HandleKind string

const (
	EnvHandle    HandleKind = "env"
	TxnHandle    HandleKind = "txn"
	DBIHandle    HandleKind = "dbi"
	CursorHandle HandleKind = "cursor"
)

// HandleKinds lists the four handle namespaces.
func HandleKinds() []HandleKind {
	return []HandleKind{EnvHandle, TxnHandle, DBIHandle, CursorHandle}
}

type record struct {
	res any

	// parent transaction token; txn records only
	parent string
	// owning environment token; txn, dbi and cursor records
	env string
}

// namespace maps tokens of one kind to live resources. Tokens are
// <kind><n> with n taken from a counter that never goes backwards, so a
// released token can never alias a later resource.
type namespace struct {
	kind  HandleKind
	next  uint64
	table map[string]*record
	fatal func(*Error)
}

func newNamespace(kind HandleKind, fatal func(*Error)) *namespace {
	return &namespace{
		kind:  kind,
		table: make(map[string]*record),
		fatal: fatal,
	}
}

func (ns *namespace) allocate(op string, rec *record) string {
	tok := string(ns.kind) + strconv.FormatUint(ns.next, 10)
	ns.next++
	if _, dup := ns.table[tok]; dup {
		ns.fatal(fatalf(op, "%s: hash %s corruption detected: handle %s is not unique", op, ns.kind, tok))
	}
	if rec == nil || isNil(rec.res) {
		ns.fatal(fatalf(op, "%s: refusing to register a nil %s resource as %s", op, ns.kind, tok))
	}
	ns.table[tok] = rec
	return tok
}

// lookup resolves the handle at argument position pos. An empty token is
// accepted only when emptyOK is set, and then yields a nil record.
func (ns *namespace) lookup(op string, args []Value, pos int, emptyOK bool) (*record, string, *Error) {
	if pos >= len(args) || args[pos].Kind() != BytesKind {
		return nil, "", userErrorf(op, "%s: argument #%d must be a string identifying the %s", op, pos+1, ns.kind)
	}
	tok := string(args[pos].Bytes())
	if tok == "" {
		if emptyOK {
			return nil, "", nil
		}
		return nil, "", userErrorf(op, "%s: argument #%d empty string invalid as a %s handle", op, pos+1, ns.kind)
	}
	rec, ok := ns.table[tok]
	if !ok {
		return nil, "", userErrorf(op, "%s: argument #%d `%s' does not map to a known %s handle", op, pos+1, tok, ns.kind)
	}
	if rec == nil || isNil(rec.res) {
		ns.fatal(fatalf(op, "%s: corruption detected: %s handle `%s' maps to a nil resource", op, ns.kind, tok))
	}
	return rec, tok, nil
}

func (ns *namespace) release(op, tok string) {
	if _, ok := ns.table[tok]; !ok {
		ns.fatal(fatalf(op, "%s: unable to release %s handle `%s'", op, ns.kind, tok))
	}
	delete(ns.table, tok)
}

func (ns *namespace) get(tok string) (*record, bool) {
	rec, ok := ns.table[tok]
	return rec, ok
}

// tokens lists live tokens in allocation order.
func (ns *namespace) tokens() []string {
	out := make([]string, 0, len(ns.table))
	for tok := range ns.table {
		out = append(out, tok)
	}
	prefix := string(ns.kind)
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseUint(strings.TrimPrefix(out[i], prefix), 10, 64)
		b, _ := strconv.ParseUint(strings.TrimPrefix(out[j], prefix), 10, 64)
		return a < b
	})
	return out
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
