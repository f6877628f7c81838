package pylang

// Position is a 1-based source location.
type Position struct {
	Line int
	Col  int
}

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start int
	End   int
}

type Node interface {
	Pos() Position
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// Module is the root of a parsed source file.
type Module struct {
	Stmts []Stmt
}

type position struct{ P Position }

func (p position) Pos() Position { return p.P }

// Param is one declared function parameter.
type Param struct {
	Name        string
	Default     Expr   // nil when the parameter is required
	DefaultText string // unevaluated default expression text
	Annotation  string // unevaluated type annotation text, may be empty
}

// FuncDef is a top-level or nested function definition.
type FuncDef struct {
	position
	Name       string
	Params     []Param
	ReturnHint string // unevaluated return annotation text, may be empty
	Doc        string // full leading string literal, or ""
	Body       []Stmt
	Span       Span // byte range of the whole definition in the source
}

type ReturnStmt struct {
	position
	Value Expr // nil for a bare return
}

type PassStmt struct{ position }

type BreakStmt struct{ position }

type ContinueStmt struct{ position }

type IfStmt struct {
	position
	Cond Expr
	Body []Stmt
	Else []Stmt // nil, an []Stmt, or a single nested IfStmt for elif chains
}

type WhileStmt struct {
	position
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	position
	Targets []Expr // assignable expressions; len > 1 means tuple unpacking
	Iter    Expr
	Body    []Stmt
}

type AssertStmt struct {
	position
	Cond Expr
	Msg  Expr // nil when no message
}

// ImportStmt covers both "import x [as y]" and "from x import a, b".
type ImportStmt struct {
	position
	Module string
	Alias  string   // for plain import; defaults to Module
	Names  []string // non-empty for the from-import form
}

// AssignStmt is "targets = value" or an augmented assignment. For augmented
// forms Op is the compound token (PLUSEQ etc.) and Targets has length 1.
type AssignStmt struct {
	position
	Targets []Expr
	Op      TokenType
	Value   Expr
}

type ExprStmt struct {
	position
	Value Expr
}

func (*FuncDef) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*PassStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*AssertStmt) stmtNode()   {}
func (*ImportStmt) stmtNode()   {}
func (*AssignStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}

type Ident struct {
	position
	Name string
}

type IntLit struct {
	position
	Value int64
}

type FloatLit struct {
	position
	Value float64
}

type StringLit struct {
	position
	Value string
}

type BoolLit struct {
	position
	Value bool
}

type NoneLit struct{ position }

type ListLit struct {
	position
	Elems []Expr
}

type TupleLit struct {
	position
	Elems []Expr
}

type DictLit struct {
	position
	Keys   []Expr
	Values []Expr
}

// UnaryExpr is prefix "-", "+", or "not".
type UnaryExpr struct {
	position
	Op      TokenType
	Operand Expr
}

// BinaryExpr covers arithmetic, comparison, membership, and boolean
// operators. "not in" parses as UnaryExpr{KwNot, BinaryExpr{KwIn, ...}}.
type BinaryExpr struct {
	position
	Op    TokenType
	Left  Expr
	Right Expr
}

type CallExpr struct {
	position
	Func Expr
	Args []Expr
}

type IndexExpr struct {
	position
	Obj   Expr
	Index Expr
}

// SliceExpr is obj[low:high:step]; any of the three may be nil.
type SliceExpr struct {
	position
	Obj  Expr
	Low  Expr
	High Expr
	Step Expr
}

type AttrExpr struct {
	position
	Obj  Expr
	Name string
}

func (*Ident) exprNode()      {}
func (*IntLit) exprNode()     {}
func (*FloatLit) exprNode()   {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NoneLit) exprNode()    {}
func (*ListLit) exprNode()    {}
func (*TupleLit) exprNode()   {}
func (*DictLit) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*SliceExpr) exprNode()  {}
func (*AttrExpr) exprNode()   {}
