package libmdbx_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/mdbsh/engine/libmdbx"
	"github.com/caffeineduck/mdbsh/mdb"
)

func newBinding(t *testing.T) (*mdb.Binding, *libmdbx.Engine) {
	t.Helper()
	eng := libmdbx.New(libmdbx.WithLabel("test"))
	b, err := mdb.New(eng)
	require.NoError(t, err)
	t.Cleanup(func() {
		b.Close()
		eng.Close()
	})
	return b, eng
}

func constant(t *testing.T, b *mdb.Binding, name string) mdb.Value {
	t.Helper()
	v, ok := b.Constant(name)
	require.True(t, ok, "missing constant %s", name)
	return mdb.Int(v)
}

func call(t *testing.T, b *mdb.Binding, name string, args ...mdb.Value) mdb.Value {
	t.Helper()
	v, err := b.Call(name, args...)
	require.NoError(t, err, "mdb_%s", name)
	return v
}

func openEnv(t *testing.T, b *mdb.Binding) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mdbx")
	env := call(t, b, "env_create").String()
	call(t, b, "env_set_maxdbs", mdb.String(env), mdb.Int(8))
	call(t, b, "env_set_mapsize", mdb.String(env), mdb.Int(64<<20))
	call(t, b, "env_open", mdb.String(env), mdb.String(path), constant(t, b, "NOSUBDIR"), mdb.Int(0o644))
	return env, path
}

func TestPutGetCommit(t *testing.T) {
	b, _ := newBinding(t)
	env, path := openEnv(t, b)
	s := mdb.String

	txn := call(t, b, "txn_begin", s(env), s(""), mdb.Int(0)).String()
	dbi := call(t, b, "dbi_open", s(txn), s("items"), constant(t, b, "CREATE")).String()
	call(t, b, "put", s(txn), s(dbi), s("k"), s("v\x00v"), mdb.Int(0))

	v, err := b.Call("put", s(txn), s(dbi), s("k"), s("x"), constant(t, b, "NOOVERWRITE"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mdb.ErrEngine))
	keyExist, _ := b.Constant("KEYEXIST")
	assert.Equal(t, float64(keyExist), v.Num())
	assert.Contains(t, b.Message(), "mdb_put failed")

	call(t, b, "txn_commit", s(txn))

	ro := call(t, b, "txn_begin", s(env), s(""), constant(t, b, "RDONLY")).String()
	assert.Equal(t, []byte("v\x00v"), call(t, b, "get", s(ro), s(dbi), s("k")).Bytes())
	assert.Equal(t, path, call(t, b, "env_get_path", s(env)).String())
	assert.Positive(t, call(t, b, "env_get_maxkeysize", s(env)).Num())
	call(t, b, "txn_abort", s(ro))
}

func TestCursorWalk(t *testing.T) {
	b, _ := newBinding(t)
	env, _ := openEnv(t, b)
	s := mdb.String

	txn := call(t, b, "txn_begin", s(env), s(""), mdb.Int(0)).String()
	dbi := call(t, b, "dbi_open", s(txn), s(""), mdb.Int(0)).String()
	for _, k := range []string{"c", "a", "b"} {
		call(t, b, "put", s(txn), s(dbi), s(k), s(k+k), mdb.Int(0))
	}

	cur := call(t, b, "cursor_open", s(txn), s(dbi)).String()
	kv := mdb.NewArray()
	var keys []string
	op := constant(t, b, "FIRST")
	for {
		if _, err := b.Call("cursor_get", s(cur), mdb.ArrayValue(kv), op); err != nil {
			notFound, _ := b.Constant("NOTFOUND")
			assert.Equal(t, int(notFound), b.Errno())
			break
		}
		k, _ := kv.Get(mdb.KeySubscript)
		keys = append(keys, k.String())
		op = constant(t, b, "NEXT")
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	call(t, b, "cursor_close", s(cur))
	call(t, b, "txn_abort", s(txn))
}

func TestNestedTransaction(t *testing.T) {
	b, _ := newBinding(t)
	env, _ := openEnv(t, b)
	s := mdb.String

	parent := call(t, b, "txn_begin", s(env), s(""), mdb.Int(0)).String()
	dbi := call(t, b, "dbi_open", s(parent), s(""), mdb.Int(0)).String()
	child := call(t, b, "txn_begin", s(env), s(parent), mdb.Int(0)).String()
	call(t, b, "put", s(child), s(dbi), s("inner"), s("1"), mdb.Int(0))
	call(t, b, "txn_abort", s(child))

	_, err := b.Call("get", s(parent), s(dbi), s("inner"))
	assert.True(t, errors.Is(err, mdb.ErrEngine), "aborted child must not leak writes")
	call(t, b, "txn_commit", s(parent))
	assert.Empty(t, b.Handles(mdb.TxnHandle))
}

func TestCodeAndStrError(t *testing.T) {
	eng := libmdbx.New()
	defer eng.Close()

	assert.Equal(t, mdb.Success, eng.Code(nil))
	assert.Equal(t, 22, eng.Code(errors.New("plain")))
	assert.NotEmpty(t, eng.StrError(-30798))

	names := make(map[string]bool)
	for _, c := range eng.Constants() {
		assert.False(t, names[c.Name], "duplicate constant %s", c.Name)
		names[c.Name] = true
		assert.NotEqual(t, int64(mdb.APIError), c.Value)
	}
}

func TestVersionOpReportsLinkedLibrary(t *testing.T) {
	b, _ := newBinding(t)
	out := mdb.NewArray()
	assert.Equal(t, libmdbx.Linked.String(), call(t, b, "version", mdb.ArrayValue(out)).String())
	minor, _ := out.Get("minor")
	assert.Equal(t, float64(libmdbx.Header.Minor), minor.Num())
}
