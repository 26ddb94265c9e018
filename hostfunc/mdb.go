package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/caffeineduck/mdbsh/mdb"
)

// MDB exposes one mdb.Binding as host functions. Every binding operation
// becomes mdb_<op>, taking {"argv": [...]} and returning an MDBResponse.
type MDB struct {
	binding *mdb.Binding
	paths   *Paths
	rdonly  uint64
}

type MDBOption func(*MDB)

// WithMounts confines environment paths to the given mounts. Scripts then
// name environments by virtual path. Without mounts, paths reach the engine
// unchanged.
func WithMounts(mounts ...Mount) MDBOption {
	return func(m *MDB) {
		m.paths = NewPaths(mounts...)
	}
}

func NewMDB(b *mdb.Binding, opts ...MDBOption) *MDB {
	m := &MDB{binding: b}
	if v, ok := b.Constant("RDONLY"); ok {
		m.rdonly = uint64(v)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds the mdb_* functions to r.
func (m *MDB) Register(r *Registry) {
	for _, op := range m.binding.Ops() {
		r.Register("mdb_"+op, m.op(op))
	}
	r.Register("mdb_errno", m.Errno)
	r.Register("mdb_constants", m.Constants)
	r.Register("mdb_handles", m.Handles)
}

func (m *MDB) op(name string) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		argv, err := decodeArgv(args)
		if err != nil {
			return nil, fmt.Errorf("mdb_%s: %w", name, err)
		}
		if err := m.confine(name, argv); err != nil {
			return nil, fmt.Errorf("mdb_%s: %w", name, err)
		}

		result, callErr := m.binding.Call(name, argv...)
		resp := MDBResponse{Result: encodeValue(result)}
		var e *mdb.Error
		if errors.As(callErr, &e) {
			resp.Errno = e.Code
			resp.Error = e.Error()
		}
		if name == "env_get_path" && callErr == nil && m.paths != nil {
			resp.Result = m.paths.virtual(result.String())
		}
		for i, v := range argv {
			if v.Kind() != mdb.ArrayKind {
				continue
			}
			if resp.Out == nil {
				resp.Out = make(map[string]any)
			}
			resp.Out[strconv.Itoa(i)] = encodeValue(v)
		}
		return resp, nil
	}
}

// confine rewrites the path argument of env_open and env_copy from a
// virtual path to a host path. Numbers are confined by the text the binding
// would format them as; arrays never reach the engine.
func (m *MDB) confine(name string, argv []mdb.Value) error {
	if m.paths == nil || len(argv) < 2 || argv[1].Kind() == mdb.ArrayKind {
		return nil
	}
	need := accessCreate
	switch name {
	case "env_open":
		need = accessWrite
		if len(argv) > 2 && argv[2].Kind() == mdb.NumberKind && uint64(argv[2].Num())&m.rdonly != 0 {
			need = accessRead
		}
	case "env_copy", "env_copy2":
	default:
		return nil
	}
	host, err := m.paths.resolve(argv[1].String(), need)
	if err != nil {
		return err
	}
	argv[1] = mdb.String(host)
	return nil
}

// Errno reports the binding's error channel.
func (m *MDB) Errno(ctx context.Context, args map[string]any) (any, error) {
	return MDBStatus{Errno: m.binding.Errno(), Error: m.binding.Message()}, nil
}

// Constants returns the symbolic name table.
func (m *MDB) Constants(ctx context.Context, args map[string]any) (any, error) {
	out := make(map[string]int64)
	for _, c := range m.binding.Constants() {
		out[c.Name] = c.Value
	}
	return out, nil
}

// Handles lists live tokens per kind.
func (m *MDB) Handles(ctx context.Context, args map[string]any) (any, error) {
	out := make(map[string][]string)
	for _, kind := range mdb.HandleKinds() {
		toks := m.binding.Handles(kind)
		if toks == nil {
			toks = []string{}
		}
		out[string(kind)] = toks
	}
	return out, nil
}
