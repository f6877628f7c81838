package pylang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runModule parses and executes src, returning the interpreter for
// inspection. Fails the test on parse or top-level execution errors.
func runModule(t *testing.T, src string) *Interp {
	t.Helper()
	m, err := Parse(src)
	require.NoError(t, err)
	ip := NewInterp()
	errs := ip.ExecModule(m)
	require.Empty(t, errs)
	return ip
}

// callFn invokes a module-level function by name with positional args.
func callFn(t *testing.T, ip *Interp, name string, args ...Value) Value {
	t.Helper()
	fn, ok := ip.Globals.Get(name)
	require.True(t, ok, "function %s not defined", name)
	v, err := ip.Apply(fn, args)
	require.NoError(t, err)
	return v
}

func TestArithmetic(t *testing.T) {
	ip := runModule(t, `
def calc(a, b):
    return a + b * 2 - 7 // 2
`)
	assert.Equal(t, Int(4), callFn(t, ip, "calc", Int(1), Int(3)))
}

func TestDivisionAlwaysFloat(t *testing.T) {
	ip := runModule(t, "def div(a, b): return a / b\n")
	assert.Equal(t, Float(2.5), callFn(t, ip, "div", Int(5), Int(2)))
}

func TestFloorDivAndModNegative(t *testing.T) {
	ip := runModule(t, "def fd(a, b): return a // b\ndef md(a, b): return a % b\n")
	assert.Equal(t, Int(-3), callFn(t, ip, "fd", Int(-5), Int(2)))
	assert.Equal(t, Int(1), callFn(t, ip, "md", Int(-5), Int(2)))
}

func TestPower(t *testing.T) {
	ip := runModule(t, "def p(a, b): return a ** b\n")
	assert.Equal(t, Int(1024), callFn(t, ip, "p", Int(2), Int(10)))
	assert.Equal(t, Float(0.5), callFn(t, ip, "p", Int(2), Int(-1)))
}

func TestRecursion(t *testing.T) {
	ip := runModule(t, `
def factorial(n):
    if n == 0:
        return 1
    else:
        return n * factorial(n-1)
`)
	assert.Equal(t, Int(720), callFn(t, ip, "factorial", Int(6)))
}

func TestRecursionDepthLimit(t *testing.T) {
	ip := runModule(t, "def loop(n): return loop(n + 1)\n")
	fn, _ := ip.Globals.Get("loop")
	_, err := ip.Apply(fn, []Value{Int(0)})
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Msg, "recursion")
}

func TestWhileLoopWithTupleAssignment(t *testing.T) {
	ip := runModule(t, `
def gcd(a, b):
    a, b = abs(a), abs(b)
    while b:
        a, b = b, a % b
    return a
`)
	assert.Equal(t, Int(6), callFn(t, ip, "gcd", Int(48), Int(-18)))
}

func TestForLoopOverRange(t *testing.T) {
	ip := runModule(t, `
def total(n):
    s = 0
    for i in range(1, n + 1):
        s += i
    return s
`)
	assert.Equal(t, Int(55), callFn(t, ip, "total", Int(10)))
}

func TestBreakAndContinue(t *testing.T) {
	ip := runModule(t, `
def evens_below(n):
    out = []
    for i in range(n):
        if i % 2 == 1:
            continue
        if i >= 10:
            break
        out.append(i)
    return out
`)
	got := callFn(t, ip, "evens_below", Int(100))
	assert.Equal(t, List([]Value{Int(0), Int(2), Int(4), Int(6), Int(8)}), got)
}

func TestForLoopOverDictKeys(t *testing.T) {
	ip := runModule(t, `
def joined(d):
    out = ""
    for k in d:
        out += k
    return out
`)
	d := NewDict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	assert.Equal(t, Str("ab"), callFn(t, ip, "joined", Dict(d)))
}

func TestForLoopTupleUnpacking(t *testing.T) {
	ip := runModule(t, `
def dot(pairs):
    s = 0
    for a, b in pairs:
        s += a * b
    return s
`)
	pairs := List([]Value{
		Tuple([]Value{Int(1), Int(10)}),
		Tuple([]Value{Int(2), Int(20)}),
	})
	assert.Equal(t, Int(50), callFn(t, ip, "dot", pairs))
}

func TestStringMethodsAndSlicing(t *testing.T) {
	ip := runModule(t, `
def tidy(text):
    return text.strip().lower()

def backwards(text):
    return text[::-1]

def word_count(text):
    return len(text.split())
`)
	assert.Equal(t, Str("hello"), callFn(t, ip, "tidy", Str("  HELLO  ")))
	assert.Equal(t, Str("golf"), callFn(t, ip, "backwards", Str("flog")))
	assert.Equal(t, Int(3), callFn(t, ip, "word_count", Str("a b  c")))
}

func TestDictOperations(t *testing.T) {
	ip := runModule(t, `
def describe(name, age):
    d = {"name": name}
    d["age"] = age
    return d
`)
	v := callFn(t, ip, "describe", Str("ada"), Int(36))
	require.Equal(t, TagDict, v.Tag)
	d := v.Data.(*DictObject)
	assert.Equal(t, []string{"name", "age"}, d.Keys)
	got, _ := d.Get("age")
	assert.Equal(t, Int(36), got)
}

func TestDefaultsEvaluateAtCallTime(t *testing.T) {
	ip := runModule(t, "def rep(s, n=3): return s * n\n")
	assert.Equal(t, Str("ababab"), callFn(t, ip, "rep", Str("ab")))
	assert.Equal(t, Str("ab"), callFn(t, ip, "rep", Str("ab"), Int(1)))
}

func TestApplyNamed(t *testing.T) {
	ip := runModule(t, "def area(w, h=2): return w * h\n")
	fn, _ := ip.Globals.Get("area")
	f := fn.Data.(*Function)

	v, err := ip.ApplyNamed(f, map[string]Value{"w": Int(5)})
	require.NoError(t, err)
	assert.Equal(t, Int(10), v)

	_, err = ip.ApplyNamed(f, map[string]Value{"h": Int(5)})
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Msg, "missing required argument")
}

func TestMathModule(t *testing.T) {
	ip := runModule(t, `
import math

def hyp(a, b):
    return math.sqrt(a ** 2 + b ** 2)
`)
	assert.Equal(t, Float(5), callFn(t, ip, "hyp", Int(3), Int(4)))
}

func TestFromImport(t *testing.T) {
	ip := runModule(t, "from math import sqrt\ndef r(x): return sqrt(x)\n")
	assert.Equal(t, Float(3), callFn(t, ip, "r", Int(9)))
}

func TestUnknownImportBindsNone(t *testing.T) {
	ip := runModule(t, "import requests\ndef f(): return requests\n")
	assert.Equal(t, None, callFn(t, ip, "f"))
}

func TestTopLevelAssertFailureIsCollectedNotFatal(t *testing.T) {
	m, err := Parse(`
def f():
    return 1

assert f() == 2, "wrong"

def g():
    return 3
`)
	require.NoError(t, err)
	ip := NewInterp()
	errs := ip.ExecModule(m)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "assertion failed")

	// Definitions on both sides of the failing assert still bound.
	_, ok := ip.Globals.Get("f")
	assert.True(t, ok)
	_, ok = ip.Globals.Get("g")
	assert.True(t, ok)
}

func TestRuntimeErrorPosition(t *testing.T) {
	ip := runModule(t, "def boom():\n    return undefined_name\n")
	fn, _ := ip.Globals.Get("boom")
	_, err := ip.Apply(fn, nil)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 2, re.Line)
	assert.Contains(t, re.Msg, "undefined_name")
}

func TestDivisionByZero(t *testing.T) {
	ip := runModule(t, "def div(a, b): return a / b\n")
	fn, _ := ip.Globals.Get("div")
	_, err := ip.Apply(fn, []Value{Int(1), Int(0)})
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Msg, "division by zero")
}

func TestShortCircuitBool(t *testing.T) {
	ip := runModule(t, "def safe(a, b): return b != 0 and a / b > 1\n")
	assert.Equal(t, Bool(false), callFn(t, ip, "safe", Int(1), Int(0)))
}

func TestBuiltins(t *testing.T) {
	ip := runModule(t, `
def stats(xs):
    return {"min": min(xs), "max": max(xs), "sum": sum(xs), "sorted": sorted(xs)}
`)
	v := callFn(t, ip, "stats", List([]Value{Int(3), Int(1), Int(2)}))
	d := v.Data.(*DictObject)
	gotMin, _ := d.Get("min")
	gotSorted, _ := d.Get("sorted")
	assert.Equal(t, Int(1), gotMin)
	assert.Equal(t, List([]Value{Int(1), Int(2), Int(3)}), gotSorted)
}

func TestValueToGo(t *testing.T) {
	d := NewDict()
	d.Set("xs", List([]Value{Int(1), Float(2.5)}))
	d.Set("ok", Bool(true))
	got := Dict(d).ToGo()
	assert.Equal(t, map[string]any{
		"xs": []any{int64(1), 2.5},
		"ok": true,
	}, got)
}

func TestValueRepr(t *testing.T) {
	assert.Equal(t, "None", None.Repr())
	assert.Equal(t, "True", Bool(true).Repr())
	assert.Equal(t, `["a", 1, 2.0]`, List([]Value{Str("a"), Int(1), Float(2)}).Repr())
}
