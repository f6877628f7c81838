package pylang

import (
	"fmt"
	"math"
	"strings"
)

// RuntimeError is an evaluation failure with a 1-based source position.
type RuntimeError struct {
	Msg  string
	Line int
	Col  int
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("runtime error at line %d, col %d: %s", e.Line, e.Col, e.Msg)
	}
	return "runtime error: " + e.Msg
}

func runtimeErrorf(n Node, format string, args ...any) *RuntimeError {
	e := &RuntimeError{Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		p := n.Pos()
		e.Line, e.Col = p.Line, p.Col
	}
	return e
}

// Control-flow signals propagate as errors through exec and are absorbed by
// the enclosing loop or function call.
type returnSignal struct{ v Value }

func (returnSignal) Error() string { return "return outside function" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break outside loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue outside loop" }

const maxCallDepth = 1000

// Interp evaluates parsed modules. Globals is the module-level environment;
// its parent frame holds the builtins and is shared and read-only.
type Interp struct {
	Globals *Env
}

func NewInterp() *Interp {
	return &Interp{Globals: NewEnv(builtinsEnv())}
}

// ExecModule executes every top-level statement in order against Globals.
// Statement failures are collected and returned, not fatal: a failing
// top-level assert must not prevent later definitions from binding.
func (ip *Interp) ExecModule(m *Module) []error {
	mc := &machine{ip: ip}
	var errs []error
	for _, s := range m.Stmts {
		if err := mc.execStmt(s, ip.Globals); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Apply calls a function or builtin value with positional arguments.
func (ip *Interp) Apply(fn Value, args []Value) (Value, error) {
	mc := &machine{ip: ip}
	return mc.call(nil, fn, args)
}

// ApplyNamed calls a user function binding arguments by parameter name.
// Parameters absent from args fall back to their default expression; a
// required parameter with no argument is an error.
func (ip *Interp) ApplyNamed(f *Function, args map[string]Value) (Value, error) {
	mc := &machine{ip: ip}
	frame := NewEnv(f.Env)
	for _, p := range f.Params {
		if v, ok := args[p.Name]; ok {
			frame.Define(p.Name, v)
			continue
		}
		if p.Default == nil {
			return None, &RuntimeError{Msg: fmt.Sprintf("%s() missing required argument: %q", f.Name, p.Name)}
		}
		dv, err := mc.eval(p.Default, f.Env)
		if err != nil {
			return None, err
		}
		frame.Define(p.Name, dv)
	}
	return mc.callBody(f, frame)
}

// machine carries per-call-chain state (recursion depth) so that one Interp
// can serve concurrent invocations.
type machine struct {
	ip    *Interp
	depth int
}

func (mc *machine) execBlock(stmts []Stmt, env *Env) error {
	for _, s := range stmts {
		if err := mc.execStmt(s, env); err != nil {
			return err
		}
	}
	return nil
}

func (mc *machine) execStmt(s Stmt, env *Env) error {
	switch st := s.(type) {
	case *FuncDef:
		env.Define(st.Name, FuncVal(&Function{
			Name:   st.Name,
			Params: st.Params,
			Body:   st.Body,
			Env:    env,
			Doc:    st.Doc,
		}))
		return nil
	case *ReturnStmt:
		v := None
		if st.Value != nil {
			var err error
			if v, err = mc.eval(st.Value, env); err != nil {
				return err
			}
		}
		return returnSignal{v}
	case *PassStmt:
		return nil
	case *BreakStmt:
		return breakSignal{}
	case *ContinueStmt:
		return continueSignal{}
	case *IfStmt:
		cond, err := mc.eval(st.Cond, env)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return mc.execBlock(st.Body, env)
		}
		return mc.execBlock(st.Else, env)
	case *WhileStmt:
		for {
			cond, err := mc.eval(st.Cond, env)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				return nil
			}
			if err := mc.execBlock(st.Body, env); err != nil {
				switch err.(type) {
				case breakSignal:
					return nil
				case continueSignal:
					continue
				}
				return err
			}
		}
	case *ForStmt:
		iter, err := mc.eval(st.Iter, env)
		if err != nil {
			return err
		}
		elems, err := iterate(st, iter)
		if err != nil {
			return err
		}
		for _, el := range elems {
			if err := mc.assignTargets(st.Targets, el, env); err != nil {
				return err
			}
			if err := mc.execBlock(st.Body, env); err != nil {
				switch err.(type) {
				case breakSignal:
					return nil
				case continueSignal:
					continue
				}
				return err
			}
		}
		return nil
	case *AssertStmt:
		cond, err := mc.eval(st.Cond, env)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return nil
		}
		if st.Msg != nil {
			msg, err := mc.eval(st.Msg, env)
			if err != nil {
				return err
			}
			return runtimeErrorf(st, "assertion failed: %s", msg.Str())
		}
		return runtimeErrorf(st, "assertion failed")
	case *ImportStmt:
		return execImport(st, env)
	case *AssignStmt:
		return mc.execAssign(st, env)
	case *ExprStmt:
		_, err := mc.eval(st.Value, env)
		return err
	default:
		return runtimeErrorf(s, "unsupported statement")
	}
}

func execImport(st *ImportStmt, env *Env) error {
	mod, known := stdModule(st.Module)
	if len(st.Names) > 0 { // from X import a, b
		for _, n := range st.Names {
			if !known {
				env.Define(n, None)
				continue
			}
			attr, ok := mod.Data.(*ModuleObject).Attrs[n]
			if !ok {
				attr = None
			}
			env.Define(n, attr)
		}
		return nil
	}
	if !known {
		// Unknown imports bind None so the name resolves; use fails at
		// call time, not at definition time.
		env.Define(st.Alias, None)
		return nil
	}
	env.Define(st.Alias, mod)
	return nil
}

func iterate(n Node, v Value) ([]Value, error) {
	switch v.Tag {
	case TagList, TagTuple:
		elems := v.Data.(*ListObject).Elems
		out := make([]Value, len(elems))
		copy(out, elems)
		return out, nil
	case TagStr:
		s := v.Data.(string)
		out := make([]Value, 0, len(s))
		for _, r := range s {
			out = append(out, Str(string(r)))
		}
		return out, nil
	case TagDict:
		d := v.Data.(*DictObject)
		out := make([]Value, len(d.Keys))
		for i, k := range d.Keys {
			out[i] = Str(k)
		}
		return out, nil
	default:
		return nil, runtimeErrorf(n, "%s object is not iterable", v.TypeName())
	}
}

func (mc *machine) execAssign(st *AssignStmt, env *Env) error {
	if st.Op != ASSIGN {
		cur, err := mc.eval(st.Targets[0], env)
		if err != nil {
			return err
		}
		rhs, err := mc.eval(st.Value, env)
		if err != nil {
			return err
		}
		var binOp TokenType
		switch st.Op {
		case PLUSEQ:
			binOp = PLUS
		case MINUSEQ:
			binOp = MINUS
		case STAREQ:
			binOp = STAR
		case SLASHEQ:
			binOp = SLASH
		case FLOORDIVEQ:
			binOp = FLOORDIV
		case PERCENTEQ:
			binOp = PERCENT
		}
		v, err := binaryOp(st, binOp, cur, rhs)
		if err != nil {
			return err
		}
		return mc.assignTo(st.Targets[0], v, env)
	}

	v, err := mc.eval(st.Value, env)
	if err != nil {
		return err
	}
	return mc.assignTargets(st.Targets, v, env)
}

// assignTargets handles both single-target assignment and tuple unpacking.
func (mc *machine) assignTargets(targets []Expr, v Value, env *Env) error {
	if len(targets) == 1 {
		return mc.assignTo(targets[0], v, env)
	}
	if v.Tag != TagList && v.Tag != TagTuple {
		return runtimeErrorf(targets[0], "cannot unpack %s into %d targets", v.TypeName(), len(targets))
	}
	elems := v.Data.(*ListObject).Elems
	if len(elems) != len(targets) {
		return runtimeErrorf(targets[0], "expected %d values to unpack, got %d", len(targets), len(elems))
	}
	for i, t := range targets {
		if err := mc.assignTo(t, elems[i], env); err != nil {
			return err
		}
	}
	return nil
}

func (mc *machine) assignTo(target Expr, v Value, env *Env) error {
	switch t := target.(type) {
	case *Ident:
		env.Define(t.Name, v)
		return nil
	case *IndexExpr:
		obj, err := mc.eval(t.Obj, env)
		if err != nil {
			return err
		}
		idx, err := mc.eval(t.Index, env)
		if err != nil {
			return err
		}
		switch obj.Tag {
		case TagList:
			lo := obj.Data.(*ListObject)
			i, err := normalizeIndex(t, idx, len(lo.Elems))
			if err != nil {
				return err
			}
			lo.Elems[i] = v
			return nil
		case TagDict:
			if idx.Tag != TagStr {
				return runtimeErrorf(t, "dict keys must be strings, got %s", idx.TypeName())
			}
			obj.Data.(*DictObject).Set(idx.Data.(string), v)
			return nil
		default:
			return runtimeErrorf(t, "%s object does not support item assignment", obj.TypeName())
		}
	default:
		return runtimeErrorf(target, "cannot assign to this expression")
	}
}

func (mc *machine) eval(e Expr, env *Env) (Value, error) {
	switch ex := e.(type) {
	case *Ident:
		if v, ok := env.Get(ex.Name); ok {
			return v, nil
		}
		return None, runtimeErrorf(ex, "name %q is not defined", ex.Name)
	case *IntLit:
		return Int(ex.Value), nil
	case *FloatLit:
		return Float(ex.Value), nil
	case *StringLit:
		return Str(ex.Value), nil
	case *BoolLit:
		return Bool(ex.Value), nil
	case *NoneLit:
		return None, nil
	case *ListLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := mc.eval(el, env)
			if err != nil {
				return None, err
			}
			elems[i] = v
		}
		return List(elems), nil
	case *TupleLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := mc.eval(el, env)
			if err != nil {
				return None, err
			}
			elems[i] = v
		}
		return Tuple(elems), nil
	case *DictLit:
		d := NewDict()
		for i := range ex.Keys {
			k, err := mc.eval(ex.Keys[i], env)
			if err != nil {
				return None, err
			}
			if k.Tag != TagStr {
				return None, runtimeErrorf(ex.Keys[i], "dict keys must be strings, got %s", k.TypeName())
			}
			v, err := mc.eval(ex.Values[i], env)
			if err != nil {
				return None, err
			}
			d.Set(k.Data.(string), v)
		}
		return Dict(d), nil
	case *UnaryExpr:
		operand, err := mc.eval(ex.Operand, env)
		if err != nil {
			return None, err
		}
		return unaryOp(ex, ex.Op, operand)
	case *BinaryExpr:
		return mc.evalBinary(ex, env)
	case *CallExpr:
		fn, err := mc.eval(ex.Func, env)
		if err != nil {
			return None, err
		}
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			v, err := mc.eval(a, env)
			if err != nil {
				return None, err
			}
			args[i] = v
		}
		return mc.call(ex, fn, args)
	case *IndexExpr:
		obj, err := mc.eval(ex.Obj, env)
		if err != nil {
			return None, err
		}
		idx, err := mc.eval(ex.Index, env)
		if err != nil {
			return None, err
		}
		return indexValue(ex, obj, idx)
	case *SliceExpr:
		return mc.evalSlice(ex, env)
	case *AttrExpr:
		obj, err := mc.eval(ex.Obj, env)
		if err != nil {
			return None, err
		}
		return attrValue(ex, obj)
	default:
		return None, runtimeErrorf(e, "unsupported expression")
	}
}

func (mc *machine) evalBinary(ex *BinaryExpr, env *Env) (Value, error) {
	// and/or short-circuit and yield the deciding operand.
	if ex.Op == KwAnd || ex.Op == KwOr {
		left, err := mc.eval(ex.Left, env)
		if err != nil {
			return None, err
		}
		if ex.Op == KwAnd && !left.Truthy() {
			return left, nil
		}
		if ex.Op == KwOr && left.Truthy() {
			return left, nil
		}
		return mc.eval(ex.Right, env)
	}
	left, err := mc.eval(ex.Left, env)
	if err != nil {
		return None, err
	}
	right, err := mc.eval(ex.Right, env)
	if err != nil {
		return None, err
	}
	return binaryOp(ex, ex.Op, left, right)
}

func (mc *machine) call(n Node, fn Value, args []Value) (Value, error) {
	switch fn.Tag {
	case TagBuiltin:
		b := fn.Data.(*Builtin)
		v, err := b.Fn(args)
		if err != nil {
			if _, ok := err.(*RuntimeError); !ok {
				err = runtimeErrorf(n, "%s", err.Error())
			}
			return None, err
		}
		return v, nil
	case TagFunc:
		f := fn.Data.(*Function)
		if len(args) > len(f.Params) {
			return None, runtimeErrorf(n, "%s() takes %d arguments, got %d", f.Name, len(f.Params), len(args))
		}
		frame := NewEnv(f.Env)
		for i, p := range f.Params {
			if i < len(args) {
				frame.Define(p.Name, args[i])
				continue
			}
			if p.Default == nil {
				return None, runtimeErrorf(n, "%s() missing required argument: %q", f.Name, p.Name)
			}
			dv, err := mc.eval(p.Default, f.Env)
			if err != nil {
				return None, err
			}
			frame.Define(p.Name, dv)
		}
		return mc.callBody(f, frame)
	default:
		return None, runtimeErrorf(n, "%s object is not callable", fn.TypeName())
	}
}

func (mc *machine) callBody(f *Function, frame *Env) (Value, error) {
	mc.depth++
	defer func() { mc.depth-- }()
	if mc.depth > maxCallDepth {
		return None, &RuntimeError{Msg: "maximum recursion depth exceeded"}
	}
	err := mc.execBlock(f.Body, frame)
	if err == nil {
		return None, nil
	}
	if ret, ok := err.(returnSignal); ok {
		return ret.v, nil
	}
	return None, err
}

func (mc *machine) evalSlice(ex *SliceExpr, env *Env) (Value, error) {
	obj, err := mc.eval(ex.Obj, env)
	if err != nil {
		return None, err
	}
	evalOpt := func(e Expr) (int64, bool, error) {
		if e == nil {
			return 0, false, nil
		}
		v, err := mc.eval(e, env)
		if err != nil {
			return 0, false, err
		}
		if v.Tag != TagInt {
			return 0, false, runtimeErrorf(e, "slice indices must be integers, got %s", v.TypeName())
		}
		return v.Data.(int64), true, nil
	}
	low, hasLow, err := evalOpt(ex.Low)
	if err != nil {
		return None, err
	}
	high, hasHigh, err := evalOpt(ex.High)
	if err != nil {
		return None, err
	}
	step, hasStep, err := evalOpt(ex.Step)
	if err != nil {
		return None, err
	}
	if !hasStep {
		step = 1
	}
	if step == 0 {
		return None, runtimeErrorf(ex, "slice step cannot be zero")
	}

	switch obj.Tag {
	case TagStr:
		runes := []rune(obj.Data.(string))
		idxs := sliceIndices(low, hasLow, high, hasHigh, step, len(runes))
		var sb strings.Builder
		for _, i := range idxs {
			sb.WriteRune(runes[i])
		}
		return Str(sb.String()), nil
	case TagList, TagTuple:
		elems := obj.Data.(*ListObject).Elems
		idxs := sliceIndices(low, hasLow, high, hasHigh, step, len(elems))
		out := make([]Value, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, elems[i])
		}
		if obj.Tag == TagTuple {
			return Tuple(out), nil
		}
		return List(out), nil
	default:
		return None, runtimeErrorf(ex, "%s object is not subscriptable", obj.TypeName())
	}
}

// sliceIndices resolves Python slice semantics (negative bounds, negative
// step, clamping) into the concrete index sequence.
func sliceIndices(low int64, hasLow bool, high int64, hasHigh bool, step int64, length int) []int {
	n := int64(length)
	clamp := func(i, lo, hi int64) int64 {
		if i < lo {
			return lo
		}
		if i > hi {
			return hi
		}
		return i
	}
	norm := func(i int64) int64 {
		if i < 0 {
			i += n
		}
		return i
	}

	var start, stop int64
	if step > 0 {
		start, stop = 0, n
		if hasLow {
			start = clamp(norm(low), 0, n)
		}
		if hasHigh {
			stop = clamp(norm(high), 0, n)
		}
	} else {
		start, stop = n-1, -1
		if hasLow {
			start = clamp(norm(low), -1, n-1)
		}
		if hasHigh {
			stop = clamp(norm(high), -1, n-1)
		}
	}

	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, int(i))
		}
	}
	return out
}

func normalizeIndex(n Node, idx Value, length int) (int, error) {
	if idx.Tag != TagInt {
		return 0, runtimeErrorf(n, "indices must be integers, got %s", idx.TypeName())
	}
	i := idx.Data.(int64)
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, runtimeErrorf(n, "index out of range")
	}
	return int(i), nil
}

func indexValue(n Node, obj, idx Value) (Value, error) {
	switch obj.Tag {
	case TagStr:
		runes := []rune(obj.Data.(string))
		i, err := normalizeIndex(n, idx, len(runes))
		if err != nil {
			return None, err
		}
		return Str(string(runes[i])), nil
	case TagList, TagTuple:
		elems := obj.Data.(*ListObject).Elems
		i, err := normalizeIndex(n, idx, len(elems))
		if err != nil {
			return None, err
		}
		return elems[i], nil
	case TagDict:
		if idx.Tag != TagStr {
			return None, runtimeErrorf(n, "dict keys must be strings, got %s", idx.TypeName())
		}
		v, ok := obj.Data.(*DictObject).Get(idx.Data.(string))
		if !ok {
			return None, runtimeErrorf(n, "key %q not found", idx.Data.(string))
		}
		return v, nil
	default:
		return None, runtimeErrorf(n, "%s object is not subscriptable", obj.TypeName())
	}
}

func unaryOp(n Node, op TokenType, v Value) (Value, error) {
	switch op {
	case KwNot:
		return Bool(!v.Truthy()), nil
	case MINUS:
		switch v.Tag {
		case TagInt:
			return Int(-v.Data.(int64)), nil
		case TagFloat:
			return Float(-v.Data.(float64)), nil
		case TagBool:
			f, _ := asFloat(v)
			return Int(-int64(f)), nil
		}
		return None, runtimeErrorf(n, "bad operand type for unary -: %s", v.TypeName())
	case PLUS:
		switch v.Tag {
		case TagInt, TagFloat:
			return v, nil
		}
		return None, runtimeErrorf(n, "bad operand type for unary +: %s", v.TypeName())
	}
	return None, runtimeErrorf(n, "unsupported unary operator")
}

func binaryOp(n Node, op TokenType, a, b Value) (Value, error) {
	switch op {
	case EQ:
		return Bool(Equal(a, b)), nil
	case NEQ:
		return Bool(!Equal(a, b)), nil
	case KwIn:
		return containsValue(n, a, b)
	case LT, LTE, GT, GTE:
		return compareValues(n, op, a, b)
	}

	// String and sequence forms first.
	if a.Tag == TagStr && b.Tag == TagStr && op == PLUS {
		return Str(a.Data.(string) + b.Data.(string)), nil
	}
	if op == STAR {
		if s, cnt, ok := strRepeat(a, b); ok {
			return Str(strings.Repeat(s, cnt)), nil
		}
	}
	if (a.Tag == TagList && b.Tag == TagList) && op == PLUS {
		ae := a.Data.(*ListObject).Elems
		be := b.Data.(*ListObject).Elems
		out := make([]Value, 0, len(ae)+len(be))
		out = append(out, ae...)
		out = append(out, be...)
		return List(out), nil
	}

	// Numeric forms.
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return None, runtimeErrorf(n, "unsupported operand types: %s and %s", a.TypeName(), b.TypeName())
	}
	bothInt := (a.Tag == TagInt || a.Tag == TagBool) && (b.Tag == TagInt || b.Tag == TagBool)

	switch op {
	case PLUS:
		if bothInt {
			return Int(int64(af) + int64(bf)), nil
		}
		return Float(af + bf), nil
	case MINUS:
		if bothInt {
			return Int(int64(af) - int64(bf)), nil
		}
		return Float(af - bf), nil
	case STAR:
		if bothInt {
			return Int(int64(af) * int64(bf)), nil
		}
		return Float(af * bf), nil
	case SLASH:
		if bf == 0 {
			return None, runtimeErrorf(n, "division by zero")
		}
		return Float(af / bf), nil
	case FLOORDIV:
		if bf == 0 {
			return None, runtimeErrorf(n, "division by zero")
		}
		if bothInt {
			return Int(floorDivInt(int64(af), int64(bf))), nil
		}
		return Float(math.Floor(af / bf)), nil
	case PERCENT:
		if bf == 0 {
			return None, runtimeErrorf(n, "modulo by zero")
		}
		if bothInt {
			return Int(pyModInt(int64(af), int64(bf))), nil
		}
		m := math.Mod(af, bf)
		if m != 0 && (m < 0) != (bf < 0) {
			m += bf
		}
		return Float(m), nil
	case POW:
		if bothInt && bf >= 0 {
			return Int(intPow(int64(af), int64(bf))), nil
		}
		return Float(math.Pow(af, bf)), nil
	}
	return None, runtimeErrorf(n, "unsupported binary operator")
}

func strRepeat(a, b Value) (string, int, bool) {
	if a.Tag == TagStr && b.Tag == TagInt {
		return a.Data.(string), repeatCount(b.Data.(int64)), true
	}
	if b.Tag == TagStr && a.Tag == TagInt {
		return b.Data.(string), repeatCount(a.Data.(int64)), true
	}
	return "", 0, false
}

func repeatCount(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pyModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compareValues(n Node, op TokenType, a, b Value) (Value, error) {
	var cmp int
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return None, runtimeErrorf(n, "cannot compare %s and %s", a.TypeName(), b.TypeName())
		}
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else if a.Tag == TagStr && b.Tag == TagStr {
		cmp = strings.Compare(a.Data.(string), b.Data.(string))
	} else {
		return None, runtimeErrorf(n, "cannot compare %s and %s", a.TypeName(), b.TypeName())
	}
	switch op {
	case LT:
		return Bool(cmp < 0), nil
	case LTE:
		return Bool(cmp <= 0), nil
	case GT:
		return Bool(cmp > 0), nil
	default:
		return Bool(cmp >= 0), nil
	}
}

func containsValue(n Node, needle, haystack Value) (Value, error) {
	switch haystack.Tag {
	case TagStr:
		if needle.Tag != TagStr {
			return None, runtimeErrorf(n, "'in <string>' requires string operand, got %s", needle.TypeName())
		}
		return Bool(strings.Contains(haystack.Data.(string), needle.Data.(string))), nil
	case TagList, TagTuple:
		for _, e := range haystack.Data.(*ListObject).Elems {
			if Equal(e, needle) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case TagDict:
		if needle.Tag != TagStr {
			return Bool(false), nil
		}
		_, ok := haystack.Data.(*DictObject).Get(needle.Data.(string))
		return Bool(ok), nil
	default:
		return None, runtimeErrorf(n, "%s object is not a container", haystack.TypeName())
	}
}

func attrValue(n Node, obj Value) (Value, error) {
	attr := n.(*AttrExpr).Name
	switch obj.Tag {
	case TagModule:
		mod := obj.Data.(*ModuleObject)
		if v, ok := mod.Attrs[attr]; ok {
			return v, nil
		}
		return None, runtimeErrorf(n, "module %q has no attribute %q", mod.Name, attr)
	case TagStr:
		return strMethod(n, obj.Data.(string), attr)
	case TagList:
		return listMethod(n, obj.Data.(*ListObject), attr)
	case TagDict:
		return dictMethod(n, obj.Data.(*DictObject), attr)
	default:
		return None, runtimeErrorf(n, "%s object has no attribute %q", obj.TypeName(), attr)
	}
}
