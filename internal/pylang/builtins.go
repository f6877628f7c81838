package pylang

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// builtinsEnv constructs the shared read-only frame holding builtin
// functions. It sits at the root of every interpreter's environment chain.
func builtinsEnv() *Env {
	env := NewEnv(nil)
	for name, fn := range builtinTable {
		env.Define(name, BuiltinVal(name, fn))
	}
	return env
}

var builtinTable = map[string]func(args []Value) (Value, error){
	"int":    builtinInt,
	"float":  builtinFloat,
	"str":    builtinStr,
	"bool":   builtinBool,
	"len":    builtinLen,
	"abs":    builtinAbs,
	"min":    builtinMin,
	"max":    builtinMax,
	"sum":    builtinSum,
	"range":  builtinRange,
	"round":  builtinRound,
	"sorted": builtinSorted,
	"print":  builtinPrint,
}

func arity(name string, args []Value, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%s() takes %d argument(s), got %d", name, lo, len(args))
		}
		return fmt.Errorf("%s() takes %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

func builtinInt(args []Value) (Value, error) {
	if err := arity("int", args, 1, 1); err != nil {
		return None, err
	}
	v := args[0]
	switch v.Tag {
	case TagInt:
		return v, nil
	case TagBool:
		if v.Data.(bool) {
			return Int(1), nil
		}
		return Int(0), nil
	case TagFloat:
		return Int(int64(math.Trunc(v.Data.(float64)))), nil
	case TagStr:
		s := strings.TrimSpace(v.Data.(string))
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return None, fmt.Errorf("invalid literal for int(): %q", v.Data.(string))
		}
		return Int(n), nil
	}
	return None, fmt.Errorf("int() argument must be a number or string, not %s", v.TypeName())
}

func builtinFloat(args []Value) (Value, error) {
	if err := arity("float", args, 1, 1); err != nil {
		return None, err
	}
	v := args[0]
	switch v.Tag {
	case TagFloat:
		return v, nil
	case TagInt, TagBool:
		f, _ := asFloat(v)
		return Float(f), nil
	case TagStr:
		s := strings.TrimSpace(v.Data.(string))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return None, fmt.Errorf("could not convert string to float: %q", v.Data.(string))
		}
		return Float(f), nil
	}
	return None, fmt.Errorf("float() argument must be a number or string, not %s", v.TypeName())
}

func builtinStr(args []Value) (Value, error) {
	if err := arity("str", args, 0, 1); err != nil {
		return None, err
	}
	if len(args) == 0 {
		return Str(""), nil
	}
	return Str(args[0].Str()), nil
}

func builtinBool(args []Value) (Value, error) {
	if err := arity("bool", args, 0, 1); err != nil {
		return None, err
	}
	if len(args) == 0 {
		return Bool(false), nil
	}
	return Bool(args[0].Truthy()), nil
}

func builtinLen(args []Value) (Value, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return None, err
	}
	switch v := args[0]; v.Tag {
	case TagStr:
		return Int(int64(len([]rune(v.Data.(string))))), nil
	case TagList, TagTuple:
		return Int(int64(len(v.Data.(*ListObject).Elems))), nil
	case TagDict:
		return Int(int64(len(v.Data.(*DictObject).Keys))), nil
	}
	return None, fmt.Errorf("object of type %s has no len()", args[0].TypeName())
}

func builtinAbs(args []Value) (Value, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return None, err
	}
	switch v := args[0]; v.Tag {
	case TagInt:
		n := v.Data.(int64)
		if n < 0 {
			n = -n
		}
		return Int(n), nil
	case TagFloat:
		return Float(math.Abs(v.Data.(float64))), nil
	case TagBool:
		f, _ := asFloat(v)
		return Int(int64(f)), nil
	}
	return None, fmt.Errorf("bad operand type for abs(): %s", args[0].TypeName())
}

// minMaxOperands flattens min/max arguments: a single list/tuple argument
// compares its elements, otherwise the arguments themselves compare.
func minMaxOperands(name string, args []Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s() expected at least 1 argument", name)
	}
	operands := args
	if len(args) == 1 && (args[0].Tag == TagList || args[0].Tag == TagTuple) {
		operands = args[0].Data.(*ListObject).Elems
	}
	if len(operands) == 0 {
		return nil, fmt.Errorf("%s() arg is an empty sequence", name)
	}
	return operands, nil
}

func pickExtreme(name string, args []Value, wantGreater bool) (Value, error) {
	operands, err := minMaxOperands(name, args)
	if err != nil {
		return None, err
	}
	best := operands[0]
	for _, v := range operands[1:] {
		res, err := compareValues(nil, GT, v, best)
		if err != nil {
			return None, err
		}
		if res.Data.(bool) == wantGreater {
			best = v
		}
	}
	return best, nil
}

func builtinMin(args []Value) (Value, error) { return pickExtreme("min", args, false) }

func builtinMax(args []Value) (Value, error) { return pickExtreme("max", args, true) }

func builtinSum(args []Value) (Value, error) {
	if err := arity("sum", args, 1, 2); err != nil {
		return None, err
	}
	if args[0].Tag != TagList && args[0].Tag != TagTuple {
		return None, fmt.Errorf("sum() argument must be a sequence, not %s", args[0].TypeName())
	}
	total := Int(0)
	if len(args) == 2 {
		total = args[1]
	}
	for _, v := range args[0].Data.(*ListObject).Elems {
		res, err := binaryOp(nil, PLUS, total, v)
		if err != nil {
			return None, err
		}
		total = res
	}
	return total, nil
}

func builtinRange(args []Value) (Value, error) {
	if err := arity("range", args, 1, 3); err != nil {
		return None, err
	}
	nums := make([]int64, len(args))
	for i, a := range args {
		if a.Tag != TagInt {
			return None, fmt.Errorf("range() arguments must be integers, got %s", a.TypeName())
		}
		nums[i] = a.Data.(int64)
	}
	var start, stop, step int64 = 0, 0, 1
	switch len(nums) {
	case 1:
		stop = nums[0]
	case 2:
		start, stop = nums[0], nums[1]
	case 3:
		start, stop, step = nums[0], nums[1], nums[2]
	}
	if step == 0 {
		return None, errors.New("range() step argument must not be zero")
	}
	var out []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, Int(i))
		}
	}
	return List(out), nil
}

func builtinRound(args []Value) (Value, error) {
	if err := arity("round", args, 1, 2); err != nil {
		return None, err
	}
	f, ok := asFloat(args[0])
	if !ok {
		return None, fmt.Errorf("round() argument must be a number, not %s", args[0].TypeName())
	}
	if len(args) == 1 {
		if args[0].Tag == TagInt {
			return args[0], nil
		}
		return Int(int64(math.RoundToEven(f))), nil
	}
	if args[1].Tag != TagInt {
		return None, fmt.Errorf("round() ndigits must be an integer, not %s", args[1].TypeName())
	}
	nd := args[1].Data.(int64)
	scale := math.Pow(10, float64(nd))
	return Float(math.RoundToEven(f*scale) / scale), nil
}

func builtinSorted(args []Value) (Value, error) {
	if err := arity("sorted", args, 1, 1); err != nil {
		return None, err
	}
	elems, err := iterate(nil, args[0])
	if err != nil {
		return None, fmt.Errorf("sorted() argument must be iterable, not %s", args[0].TypeName())
	}
	var sortErr error
	sort.SliceStable(elems, func(i, j int) bool {
		res, err := compareValues(nil, LT, elems[i], elems[j])
		if err != nil {
			sortErr = err
			return false
		}
		return res.Data.(bool)
	})
	if sortErr != nil {
		return None, sortErr
	}
	return List(elems), nil
}

// print is accepted but discarded: generated endpoints have no stdout.
func builtinPrint(args []Value) (Value, error) {
	return None, nil
}

var mathModule = func() Value {
	attrs := map[string]Value{
		"pi": Float(math.Pi),
		"e":  Float(math.E),
	}
	unary := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"exp":   math.Exp,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"fabs":  math.Abs,
	}
	for name, fn := range unary {
		attrs[name] = BuiltinVal(name, func(args []Value) (Value, error) {
			if err := arity(name, args, 1, 1); err != nil {
				return None, err
			}
			f, ok := asFloat(args[0])
			if !ok {
				return None, fmt.Errorf("%s() argument must be a number, not %s", name, args[0].TypeName())
			}
			res := fn(f)
			if math.IsNaN(res) || math.IsInf(res, 0) {
				return None, fmt.Errorf("math domain error")
			}
			return Float(res), nil
		})
	}
	attrs["pow"] = BuiltinVal("pow", func(args []Value) (Value, error) {
		if err := arity("pow", args, 2, 2); err != nil {
			return None, err
		}
		a, aok := asFloat(args[0])
		b, bok := asFloat(args[1])
		if !aok || !bok {
			return None, errors.New("pow() arguments must be numbers")
		}
		return Float(math.Pow(a, b)), nil
	})
	return ModuleVal("math", attrs)
}()

// stdModule resolves the importable modules this runtime ships.
func stdModule(name string) (Value, bool) {
	switch name {
	case "math":
		return mathModule, true
	default:
		return None, false
	}
}

func strMethod(n Node, s, name string) (Value, error) {
	method := func(fn func(args []Value) (Value, error)) (Value, error) {
		return BuiltinVal(name, fn), nil
	}
	switch name {
	case "lower":
		return method(func(args []Value) (Value, error) {
			return Str(strings.ToLower(s)), nil
		})
	case "upper":
		return method(func(args []Value) (Value, error) {
			return Str(strings.ToUpper(s)), nil
		})
	case "strip":
		return method(func(args []Value) (Value, error) {
			if len(args) == 1 && args[0].Tag == TagStr {
				return Str(strings.Trim(s, args[0].Data.(string))), nil
			}
			return Str(strings.TrimSpace(s)), nil
		})
	case "split":
		return method(func(args []Value) (Value, error) {
			var parts []string
			if len(args) == 0 {
				parts = strings.Fields(s)
			} else if args[0].Tag == TagStr {
				parts = strings.Split(s, args[0].Data.(string))
			} else {
				return None, fmt.Errorf("split() separator must be a string, not %s", args[0].TypeName())
			}
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = Str(p)
			}
			return List(out), nil
		})
	case "join":
		return method(func(args []Value) (Value, error) {
			if err := arity("join", args, 1, 1); err != nil {
				return None, err
			}
			elems, err := iterate(nil, args[0])
			if err != nil {
				return None, err
			}
			parts := make([]string, len(elems))
			for i, e := range elems {
				if e.Tag != TagStr {
					return None, fmt.Errorf("join() requires string elements, got %s", e.TypeName())
				}
				parts[i] = e.Data.(string)
			}
			return Str(strings.Join(parts, s)), nil
		})
	case "replace":
		return method(func(args []Value) (Value, error) {
			if err := arity("replace", args, 2, 2); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr || args[1].Tag != TagStr {
				return None, errors.New("replace() arguments must be strings")
			}
			return Str(strings.ReplaceAll(s, args[0].Data.(string), args[1].Data.(string))), nil
		})
	case "startswith":
		return method(func(args []Value) (Value, error) {
			if err := arity("startswith", args, 1, 1); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr {
				return None, errors.New("startswith() argument must be a string")
			}
			return Bool(strings.HasPrefix(s, args[0].Data.(string))), nil
		})
	case "endswith":
		return method(func(args []Value) (Value, error) {
			if err := arity("endswith", args, 1, 1); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr {
				return None, errors.New("endswith() argument must be a string")
			}
			return Bool(strings.HasSuffix(s, args[0].Data.(string))), nil
		})
	case "find":
		return method(func(args []Value) (Value, error) {
			if err := arity("find", args, 1, 1); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr {
				return None, errors.New("find() argument must be a string")
			}
			return Int(int64(strings.Index(s, args[0].Data.(string)))), nil
		})
	case "count":
		return method(func(args []Value) (Value, error) {
			if err := arity("count", args, 1, 1); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr {
				return None, errors.New("count() argument must be a string")
			}
			return Int(int64(strings.Count(s, args[0].Data.(string)))), nil
		})
	case "title":
		return method(func(args []Value) (Value, error) {
			return Str(titleCase(s)), nil
		})
	default:
		return None, runtimeErrorf(n, "str object has no attribute %q", name)
	}
}

func titleCase(s string) string {
	var sb strings.Builder
	newWord := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			newWord = true
			sb.WriteRune(r)
		case newWord:
			sb.WriteString(strings.ToUpper(string(r)))
			newWord = false
		default:
			sb.WriteString(strings.ToLower(string(r)))
		}
	}
	return sb.String()
}

func listMethod(n Node, lo *ListObject, name string) (Value, error) {
	switch name {
	case "append":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			if err := arity("append", args, 1, 1); err != nil {
				return None, err
			}
			lo.Elems = append(lo.Elems, args[0])
			return None, nil
		}), nil
	case "pop":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			if err := arity("pop", args, 0, 1); err != nil {
				return None, err
			}
			if len(lo.Elems) == 0 {
				return None, errors.New("pop from empty list")
			}
			i := len(lo.Elems) - 1
			if len(args) == 1 {
				var err error
				if i, err = normalizeIndex(nil, args[0], len(lo.Elems)); err != nil {
					return None, err
				}
			}
			v := lo.Elems[i]
			lo.Elems = append(lo.Elems[:i], lo.Elems[i+1:]...)
			return v, nil
		}), nil
	case "reverse":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			for i, j := 0, len(lo.Elems)-1; i < j; i, j = i+1, j-1 {
				lo.Elems[i], lo.Elems[j] = lo.Elems[j], lo.Elems[i]
			}
			return None, nil
		}), nil
	default:
		return None, runtimeErrorf(n, "list object has no attribute %q", name)
	}
}

func dictMethod(n Node, d *DictObject, name string) (Value, error) {
	switch name {
	case "get":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			if err := arity("get", args, 1, 2); err != nil {
				return None, err
			}
			if args[0].Tag != TagStr {
				return None, fmt.Errorf("dict keys must be strings, got %s", args[0].TypeName())
			}
			if v, ok := d.Get(args[0].Data.(string)); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return None, nil
		}), nil
	case "keys":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			out := make([]Value, len(d.Keys))
			for i, k := range d.Keys {
				out[i] = Str(k)
			}
			return List(out), nil
		}), nil
	case "values":
		return BuiltinVal(name, func(args []Value) (Value, error) {
			out := make([]Value, len(d.Keys))
			for i, k := range d.Keys {
				out[i] = d.Entries[k]
			}
			return List(out), nil
		}), nil
	default:
		return None, runtimeErrorf(n, "dict object has no attribute %q", name)
	}
}
