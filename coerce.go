package swaggermcp

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

// coercionStage is one fallible conversion attempt from query text to a
// runtime value.
type coercionStage func(string) (pylang.Value, error)

var errCoerce = errors.New("coercion failed")

// coercionChain is the fixed-priority conversion order applied to every
// inbound string: integer, float, boolean, JSON literal, then the original
// string. The order is observable behavior ("1" must become the integer 1,
// "true" the boolean true) and must not be rearranged.
var coercionChain = []coercionStage{
	coerceInt,
	coerceFloat,
	coerceBool,
	coerceJSON,
}

// CoerceParam converts raw query text into a typed value via the coercion
// chain. Stage failures are swallowed; the final fallback is the input
// string itself, so CoerceParam never fails.
func CoerceParam(raw string) pylang.Value {
	for _, stage := range coercionChain {
		if v, err := stage(raw); err == nil {
			return v
		}
	}
	return pylang.Str(raw)
}

func coerceInt(raw string) (pylang.Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return pylang.None, errCoerce
	}
	return pylang.Int(n), nil
}

func coerceFloat(raw string) (pylang.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return pylang.None, errCoerce
	}
	return pylang.Float(f), nil
}

func coerceBool(raw string) (pylang.Value, error) {
	switch strings.ToLower(raw) {
	case "true":
		return pylang.Bool(true), nil
	case "false":
		return pylang.Bool(false), nil
	}
	return pylang.None, errCoerce
}

func coerceJSON(raw string) (pylang.Value, error) {
	var decoded any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return pylang.None, errCoerce
	}
	if _, err := dec.Token(); err != io.EOF {
		// Trailing garbage after a valid prefix is not a JSON literal.
		return pylang.None, errCoerce
	}
	return fromJSON(decoded), nil
}

func fromJSON(x any) pylang.Value {
	switch t := x.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return pylang.Int(n)
		}
		f, _ := t.Float64()
		return pylang.Float(f)
	case []any:
		elems := make([]pylang.Value, len(t))
		for i, e := range t {
			elems[i] = fromJSON(e)
		}
		return pylang.List(elems)
	case map[string]any:
		// Go map iteration order is random; sort keys for determinism.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := pylang.NewDict()
		for _, k := range keys {
			d.Set(k, fromJSON(t[k]))
		}
		return pylang.Dict(d)
	default:
		return pylang.FromGo(t)
	}
}
