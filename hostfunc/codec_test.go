package hostfunc

import (
	"testing"

	"github.com/caffeineduck/mdbsh/mdb"
)

func TestDecodeValue(t *testing.T) {
	v, err := decodeValue(map[string]any{"1": "b", "0": "a", "x": float64(2)})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if v.Kind() != mdb.ArrayKind {
		t.Fatalf("expected array, got %s", v.Kind())
	}
	keys := v.Array().Keys()
	if len(keys) != 3 || keys[0] != "0" || keys[1] != "1" || keys[2] != "x" {
		t.Errorf("unexpected key order %v", keys)
	}

	v, _ = decodeValue([]any{"a", float64(1)})
	if v.Array().Len() != 2 {
		t.Errorf("expected 2 elements, got %d", v.Array().Len())
	}

	v, _ = decodeValue(map[string]any{"b64": "AAE="})
	if v.Kind() != mdb.BytesKind || string(v.Bytes()) != "\x00\x01" {
		t.Errorf("expected decoded bytes, got %v", v)
	}

	v, _ = decodeValue(true)
	if v.Num() != 1 {
		t.Errorf("expected true to decode as 1, got %v", v)
	}

	if _, err := decodeValue(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestEncodeValue(t *testing.T) {
	if got := encodeValue(mdb.Int(-30798)); got != int64(-30798) {
		t.Errorf("expected int64, got %T %v", got, got)
	}
	if got := encodeValue(mdb.Number(0.25)); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
	if got := encodeValue(mdb.String("ok")); got != "ok" {
		t.Errorf("expected ok, got %v", got)
	}
	got, ok := encodeValue(mdb.Bytes([]byte{0xff})).(map[string]any)
	if !ok || got["b64"] != "/w==" {
		t.Errorf("expected b64 object, got %v", got)
	}
}
