package pylang

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	TagNone    ValueTag = iota // no payload
	TagBool                    // bool
	TagInt                     // int64
	TagFloat                   // float64
	TagStr                     // string
	TagList                    // *ListObject
	TagTuple                   // *ListObject (immutable by convention)
	TagDict                    // *DictObject
	TagFunc                    // *Function
	TagBuiltin                 // *Builtin
	TagModule                  // *ModuleObject
)

// Value is the universal runtime carrier. Tag determines which Go type Data
// holds; see ValueTag.
type Value struct {
	Tag  ValueTag
	Data any
}

// None is the singleton null value.
var None = Value{Tag: TagNone}

func Bool(b bool) Value     { return Value{Tag: TagBool, Data: b} }
func Int(n int64) Value     { return Value{Tag: TagInt, Data: n} }
func Float(f float64) Value { return Value{Tag: TagFloat, Data: f} }
func Str(s string) Value    { return Value{Tag: TagStr, Data: s} }

func List(elems []Value) Value  { return Value{Tag: TagList, Data: &ListObject{Elems: elems}} }
func Tuple(elems []Value) Value { return Value{Tag: TagTuple, Data: &ListObject{Elems: elems}} }

// ListObject backs lists and tuples. Lists share the object across bindings,
// so in-place mutation (append, index assignment) is visible to all holders.
type ListObject struct {
	Elems []Value
}

// DictObject is an ordered string-keyed map preserving insertion order.
type DictObject struct {
	Entries map[string]Value
	Keys    []string
}

func NewDict() *DictObject {
	return &DictObject{Entries: make(map[string]Value)}
}

func (d *DictObject) Set(key string, v Value) {
	if _, ok := d.Entries[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Entries[key] = v
}

func (d *DictObject) Get(key string) (Value, bool) {
	v, ok := d.Entries[key]
	return v, ok
}

func Dict(d *DictObject) Value { return Value{Tag: TagDict, Data: d} }

// Function is a user-defined function value: parameters, body, and the
// lexical environment captured at definition time.
type Function struct {
	Name   string
	Params []Param
	Body   []Stmt
	Env    *Env
	Doc    string
}

func FuncVal(f *Function) Value { return Value{Tag: TagFunc, Data: f} }

// Builtin is a host-implemented function value.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func BuiltinVal(name string, fn func(args []Value) (Value, error)) Value {
	return Value{Tag: TagBuiltin, Data: &Builtin{Name: name, Fn: fn}}
}

// ModuleObject is a named bag of values (e.g. the math module).
type ModuleObject struct {
	Name  string
	Attrs map[string]Value
}

func ModuleVal(name string, attrs map[string]Value) Value {
	return Value{Tag: TagModule, Data: &ModuleObject{Name: name, Attrs: attrs}}
}

// Truthy reports Python-style truthiness.
func (v Value) Truthy() bool {
	switch v.Tag {
	case TagNone:
		return false
	case TagBool:
		return v.Data.(bool)
	case TagInt:
		return v.Data.(int64) != 0
	case TagFloat:
		return v.Data.(float64) != 0
	case TagStr:
		return v.Data.(string) != ""
	case TagList, TagTuple:
		return len(v.Data.(*ListObject).Elems) > 0
	case TagDict:
		return len(v.Data.(*DictObject).Keys) > 0
	default:
		return true
	}
}

// Equal reports structural equality. Ints and floats compare numerically.
func Equal(a, b Value) bool {
	if an, aok := asFloat(a); aok {
		if bn, bok := asFloat(b); bok {
			// bool participates in numeric equality like Python (True == 1)
			return an == bn
		}
		return false
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNone:
		return true
	case TagStr:
		return a.Data.(string) == b.Data.(string)
	case TagList, TagTuple:
		ae, be := a.Data.(*ListObject).Elems, b.Data.(*ListObject).Elems
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equal(ae[i], be[i]) {
				return false
			}
		}
		return true
	case TagDict:
		ad, bd := a.Data.(*DictObject), b.Data.(*DictObject)
		if len(ad.Keys) != len(bd.Keys) {
			return false
		}
		for k, av := range ad.Entries {
			bv, ok := bd.Entries[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return a.Data == b.Data
	}
}

func asFloat(v Value) (float64, bool) {
	switch v.Tag {
	case TagInt:
		return float64(v.Data.(int64)), true
	case TagFloat:
		return v.Data.(float64), true
	case TagBool:
		if v.Data.(bool) {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Str renders the value the way str() would: strings unquoted.
func (v Value) Str() string {
	if v.Tag == TagStr {
		return v.Data.(string)
	}
	return v.Repr()
}

// Repr renders a debug representation: strings quoted, containers recursive.
func (v Value) Repr() string {
	switch v.Tag {
	case TagNone:
		return "None"
	case TagBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case TagInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case TagFloat:
		return formatFloat(v.Data.(float64))
	case TagStr:
		return strconv.Quote(v.Data.(string))
	case TagList, TagTuple:
		opener, closer := "[", "]"
		if v.Tag == TagTuple {
			opener, closer = "(", ")"
		}
		elems := v.Data.(*ListObject).Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.Repr()
		}
		return opener + strings.Join(parts, ", ") + closer
	case TagDict:
		d := v.Data.(*DictObject)
		parts := make([]string, len(d.Keys))
		for i, k := range d.Keys {
			parts[i] = strconv.Quote(k) + ": " + d.Entries[k].Repr()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TagFunc:
		return fmt.Sprintf("<function %s>", v.Data.(*Function).Name)
	case TagBuiltin:
		return fmt.Sprintf("<builtin %s>", v.Data.(*Builtin).Name)
	case TagModule:
		return fmt.Sprintf("<module %s>", v.Data.(*ModuleObject).Name)
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep whole floats visibly floating-point ("2.0", not "2").
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

// ToGo converts a Value to plain Go data suitable for encoding/json.
// Functions, builtins, and modules have no JSON form and convert to their
// textual representation instead.
func (v Value) ToGo() any {
	switch v.Tag {
	case TagNone:
		return nil
	case TagBool:
		return v.Data.(bool)
	case TagInt:
		return v.Data.(int64)
	case TagFloat:
		return v.Data.(float64)
	case TagStr:
		return v.Data.(string)
	case TagList, TagTuple:
		elems := v.Data.(*ListObject).Elems
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = e.ToGo()
		}
		return out
	case TagDict:
		d := v.Data.(*DictObject)
		out := make(map[string]any, len(d.Keys))
		for _, k := range d.Keys {
			out[k] = d.Entries[k].ToGo()
		}
		return out
	default:
		return v.Repr()
	}
}

// FromGo converts decoded JSON data (any combination of nil, bool, float64,
// string, []any, map[string]any) into a Value. Whole floats stay floats;
// json.Number inputs preserve int64 when possible.
func FromGo(x any) Value {
	switch t := x.(type) {
	case nil:
		return None
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case string:
		return Str(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = FromGo(e)
		}
		return List(elems)
	case map[string]any:
		d := NewDict()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Set(k, FromGo(t[k]))
		}
		return Dict(d)
	default:
		return Str(fmt.Sprintf("%v", t))
	}
}

// TypeName returns the Python-style type name for error messages.
func (v Value) TypeName() string {
	switch v.Tag {
	case TagNone:
		return "NoneType"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagStr:
		return "str"
	case TagList:
		return "list"
	case TagTuple:
		return "tuple"
	case TagDict:
		return "dict"
	case TagFunc, TagBuiltin:
		return "function"
	case TagModule:
		return "module"
	default:
		return "object"
	}
}

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward; Define binds in the current frame.
type Env struct {
	parent *Env
	table  map[string]Value
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

func (e *Env) Define(name string, v Value) { e.table[name] = v }

func (e *Env) Get(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.table[name]; ok {
			return v, true
		}
	}
	return None, false
}

// Assignment always binds in the current frame (Python local semantics;
// global/nonlocal declarations are not supported), so Define covers writes.
