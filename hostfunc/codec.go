package hostfunc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/caffeineduck/mdbsh/mdb"
)

// b64Key marks a JSON object that carries binary data: {"b64": "..."}.
const b64Key = "b64"

// decodeArgv converts the JSON argument list of an mdb_* call.
func decodeArgv(args map[string]any) ([]mdb.Value, error) {
	raw, ok := args["argv"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("argv must be an array, got %T", raw)
	}
	out := make([]mdb.Value, len(list))
	for i, item := range list {
		v, err := decodeValue(item)
		if err != nil {
			return nil, fmt.Errorf("argv[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeValue(raw any) (mdb.Value, error) {
	switch v := raw.(type) {
	case nil:
		return mdb.String(""), nil
	case bool:
		if v {
			return mdb.Int(1), nil
		}
		return mdb.Int(0), nil
	case float64:
		return mdb.Number(v), nil
	case int:
		return mdb.Int(int64(v)), nil
	case int64:
		return mdb.Int(v), nil
	case uint64:
		return mdb.Uint(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return mdb.Value{}, err
		}
		return mdb.Number(f), nil
	case string:
		return mdb.String(v), nil
	case []byte:
		return mdb.Bytes(v), nil
	case map[string]any:
		if enc, ok := v[b64Key].(string); ok && len(v) == 1 {
			b, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return mdb.Value{}, fmt.Errorf("invalid base64: %w", err)
			}
			return mdb.Bytes(b), nil
		}
		arr := mdb.NewArray()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sortSubscripts(keys)
		for _, k := range keys {
			elem, err := decodeValue(v[k])
			if err != nil {
				return mdb.Value{}, fmt.Errorf("[%q]: %w", k, err)
			}
			arr.Set(k, elem)
		}
		return mdb.ArrayValue(arr), nil
	case []any:
		arr := mdb.NewArray()
		for i, item := range v {
			elem, err := decodeValue(item)
			if err != nil {
				return mdb.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Set(strconv.Itoa(i), elem)
		}
		return mdb.ArrayValue(arr), nil
	}
	return mdb.Value{}, fmt.Errorf("unsupported argument type %T", raw)
}

// sortSubscripts orders numeric subscripts numerically ahead of the rest.
func sortSubscripts(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}

// encodeValue converts a binding value into something encoding/json writes
// faithfully. Byte strings that are not valid UTF-8 travel as {"b64": ...}.
func encodeValue(v mdb.Value) any {
	switch v.Kind() {
	case mdb.NumberKind:
		f := v.Num()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}
		return f
	case mdb.BytesKind:
		b := v.Bytes()
		if utf8.Valid(b) {
			return string(b)
		}
		return map[string]any{b64Key: base64.StdEncoding.EncodeToString(b)}
	case mdb.ArrayKind:
		arr := v.Array()
		out := make(map[string]any, arr.Len())
		for _, k := range arr.Keys() {
			elem, _ := arr.Get(k)
			out[k] = encodeValue(elem)
		}
		return out
	}
	return nil
}
