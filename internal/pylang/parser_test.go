package pylang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Module {
	t.Helper()
	m, err := Parse(src)
	require.NoError(t, err)
	return m
}

func TestParseFuncDef(t *testing.T) {
	m := mustParse(t, `
def greet(name, excited=False, times: int = 1) -> str:
    """Say hello.

    Longer description here.
    """
    return name
`)
	require.Len(t, m.Stmts, 1)
	fd, ok := m.Stmts[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "greet", fd.Name)
	require.Len(t, fd.Params, 3)

	assert.Equal(t, "name", fd.Params[0].Name)
	assert.Nil(t, fd.Params[0].Default)

	assert.Equal(t, "excited", fd.Params[1].Name)
	assert.Equal(t, "False", fd.Params[1].DefaultText)
	require.NotNil(t, fd.Params[1].Default)

	assert.Equal(t, "times", fd.Params[2].Name)
	assert.Equal(t, "int", fd.Params[2].Annotation)
	assert.Equal(t, "1", fd.Params[2].DefaultText)

	assert.Equal(t, "str", fd.ReturnHint)
	assert.Contains(t, fd.Doc, "Say hello.")
}

func TestParseInlineSuite(t *testing.T) {
	m := mustParse(t, "def add(x,y): return int(x)+int(y)\n")
	fd := m.Stmts[0].(*FuncDef)
	require.Len(t, fd.Body, 1)
	_, ok := fd.Body[0].(*ReturnStmt)
	assert.True(t, ok)
}

func TestParseFuncSpanCoversDefinition(t *testing.T) {
	src := "x = 1\ndef f(a):\n    return a\ny = 2\n"
	m := mustParse(t, src)
	fd := m.Stmts[1].(*FuncDef)
	assert.Equal(t, "def f(a):\n    return a", src[fd.Span.Start:fd.Span.End])
}

func TestParseNestedFunctionStaysNested(t *testing.T) {
	m := mustParse(t, `
def outer():
    def inner():
        return 1
    return inner
`)
	require.Len(t, m.Stmts, 1)
	outer := m.Stmts[0].(*FuncDef)
	_, ok := outer.Body[0].(*FuncDef)
	assert.True(t, ok, "inner def should be a body statement of outer")
}

func TestParseElifChain(t *testing.T) {
	m := mustParse(t, `
if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`)
	top := m.Stmts[0].(*IfStmt)
	require.Len(t, top.Else, 1)
	nested, ok := top.Else[0].(*IfStmt)
	require.True(t, ok)
	assert.Len(t, nested.Else, 1)
}

func TestParseTupleAssignment(t *testing.T) {
	m := mustParse(t, "a, b = b, a % b\n")
	as := m.Stmts[0].(*AssignStmt)
	assert.Len(t, as.Targets, 2)
	_, ok := as.Value.(*TupleLit)
	assert.True(t, ok)
}

func TestParseParenthesizedTuples(t *testing.T) {
	m := mustParse(t, "x = (1)\ny = (1,)\nz = (1, 2)\n")

	_, isTuple := m.Stmts[0].(*AssignStmt).Value.(*TupleLit)
	assert.False(t, isTuple, "(1) is grouping, not a tuple")

	one, ok := m.Stmts[1].(*AssignStmt).Value.(*TupleLit)
	require.True(t, ok, "(1,) is a 1-tuple")
	assert.Len(t, one.Elems, 1)

	two, ok := m.Stmts[2].(*AssignStmt).Value.(*TupleLit)
	require.True(t, ok)
	assert.Len(t, two.Elems, 2)
}

func TestParseForLoopHeader(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		targets int
	}{
		{"single target", "for i in range(1, n + 1):\n    s += i\n", 1},
		{"dict iteration", "for k in d:\n    total += d[k]\n", 1},
		{"tuple targets", "for a, b in pairs:\n    s += a * b\n", 2},
		{"subscript target", "for xs[0] in seq:\n    pass\n", 1},
		{"membership in body", "for x in xs:\n    found = x in seen\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParse(t, tt.src)
			fs, ok := m.Stmts[0].(*ForStmt)
			require.True(t, ok)
			assert.Len(t, fs.Targets, tt.targets)
			assert.NotNil(t, fs.Iter)
		})
	}
}

func TestParseAugmentedAssignment(t *testing.T) {
	m := mustParse(t, "n //= d\n")
	as := m.Stmts[0].(*AssignStmt)
	assert.Equal(t, FLOORDIVEQ, as.Op)
}

func TestParseImportForms(t *testing.T) {
	m := mustParse(t, "import math\nimport os.path as p\nfrom math import sqrt, pi\n")
	im0 := m.Stmts[0].(*ImportStmt)
	assert.Equal(t, "math", im0.Module)
	assert.Equal(t, "math", im0.Alias)

	im1 := m.Stmts[1].(*ImportStmt)
	assert.Equal(t, "os.path", im1.Module)
	assert.Equal(t, "p", im1.Alias)

	im2 := m.Stmts[2].(*ImportStmt)
	assert.Equal(t, []string{"sqrt", "pi"}, im2.Names)
}

func TestParsePrecedence(t *testing.T) {
	m := mustParse(t, "r = 1 + 2 * 3 ** 2\n")
	as := m.Stmts[0].(*AssignStmt)
	add := as.Value.(*BinaryExpr)
	assert.Equal(t, PLUS, add.Op)
	mul := add.Right.(*BinaryExpr)
	assert.Equal(t, STAR, mul.Op)
	pow := mul.Right.(*BinaryExpr)
	assert.Equal(t, POW, pow.Op)
}

func TestParseNotIn(t *testing.T) {
	m := mustParse(t, "r = x not in ys\n")
	as := m.Stmts[0].(*AssignStmt)
	un := as.Value.(*UnaryExpr)
	assert.Equal(t, KwNot, un.Op)
	bin := un.Operand.(*BinaryExpr)
	assert.Equal(t, KwIn, bin.Op)
}

func TestParseSlice(t *testing.T) {
	m := mustParse(t, "r = text[::-1]\n")
	as := m.Stmts[0].(*AssignStmt)
	sl, ok := as.Value.(*SliceExpr)
	require.True(t, ok)
	assert.Nil(t, sl.Low)
	assert.Nil(t, sl.High)
	require.NotNil(t, sl.Step)
}

func TestParseCallChain(t *testing.T) {
	m := mustParse(t, "r = text.strip().split(\",\")\n")
	as := m.Stmts[0].(*AssignStmt)
	call, ok := as.Value.(*CallExpr)
	require.True(t, ok)
	attr := call.Func.(*AttrExpr)
	assert.Equal(t, "split", attr.Name)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing colon":    "def f(x)\n    return x\n",
		"bad indent block": "def f(x):\nreturn x\n",
		"dangling expr":    "x = \n",
		"unclosed paren":   "f(1, 2\n",
		"stray else":       "else:\n    pass\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			var se *SyntaxError
			require.ErrorAs(t, err, &se, "source: %q", src)
		})
	}
}
