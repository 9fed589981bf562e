package lang

import (
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Node is implemented by every syntax tree element.
type Node interface {
	// Pos returns the position of the node's first character.
	Pos() Position
	// End returns the byte offset immediately after the node.
	End() int
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type span struct {
	pos Position
	end int
}

func (s span) Pos() Position { return s.pos }
func (s span) End() int      { return s.end }

// Chunk is a parsed source unit.
type Chunk struct {
	Source string
	Block  *Block
}

// Text returns the source text spanned by n.
func (c *Chunk) Text(n Node) string {
	if c == nil || n == nil {
		return ""
	}

	start, end := n.Pos().Offset, n.End()
	if start < 0 || end > len(c.Source) || start > end {
		return ""
	}

	return c.Source[start:end]
}

// Block is a sequence of statements with an optional trailing return.
type Block struct {
	span
	Stmts  []Stmt
	Return *ReturnStmt
}

// Statements.
type (
	// AssignStmt is "targets = values".
	AssignStmt struct {
		span
		Targets []Expr
		Values  []Expr
	}

	// LocalStmt is "local names [= values]".
	LocalStmt struct {
		span
		Names  []LocalName
		Values []Expr
	}

	// FunctionStmt is "function a.b.c[:m] body".
	FunctionStmt struct {
		span
		Path   []string
		Method string
		Func   *FunctionExpr
	}

	// LocalFunctionStmt is "local function name body".
	LocalFunctionStmt struct {
		span
		Name string
		Func *FunctionExpr
	}

	// CallStmt is a function call used as a statement.
	CallStmt struct {
		span
		Call *CallExpr
	}

	DoStmt struct {
		span
		Body *Block
	}

	WhileStmt struct {
		span
		Cond Expr
		Body *Block
	}

	RepeatStmt struct {
		span
		Body *Block
		Cond Expr
	}

	// IfStmt holds the "if" and every "elseif" arm in Clauses.
	IfStmt struct {
		span
		Clauses []IfClause
		Else    *Block
	}

	NumericForStmt struct {
		span
		Var   string
		Start Expr
		Limit Expr
		Step  Expr // nil if omitted
		Body  *Block
	}

	GenericForStmt struct {
		span
		Names []string
		Exprs []Expr
		Body  *Block
	}

	ReturnStmt struct {
		span
		Values []Expr
	}

	BreakStmt struct{ span }

	GotoStmt struct {
		span
		Label string
	}

	LabelStmt struct {
		span
		Name string
	}

	// EmptyStmt is a lone ";".
	EmptyStmt struct{ span }
)

// LocalName is a name declared by a local statement, with its optional
// attribute ("const" or "close").
type LocalName struct {
	Name   string
	Attrib string
}

// IfClause is one conditional arm of an if statement.
type IfClause struct {
	Cond Expr
	Body *Block
}

func (*AssignStmt) stmtNode()        {}
func (*LocalStmt) stmtNode()         {}
func (*FunctionStmt) stmtNode()      {}
func (*LocalFunctionStmt) stmtNode() {}
func (*CallStmt) stmtNode()          {}
func (*DoStmt) stmtNode()            {}
func (*WhileStmt) stmtNode()         {}
func (*RepeatStmt) stmtNode()        {}
func (*IfStmt) stmtNode()            {}
func (*NumericForStmt) stmtNode()    {}
func (*GenericForStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()        {}
func (*BreakStmt) stmtNode()         {}
func (*GotoStmt) stmtNode()          {}
func (*LabelStmt) stmtNode()         {}
func (*EmptyStmt) stmtNode()         {}

// Expressions.
type (
	NilExpr    struct{ span }
	TrueExpr   struct{ span }
	FalseExpr  struct{ span }
	VarargExpr struct{ span }

	// NumberExpr is a numeric literal. Text is the lexeme as written.
	NumberExpr struct {
		span
		Text string
	}

	// StringExpr is a string literal. Text is the lexeme as written,
	// including its delimiters.
	StringExpr struct {
		span
		Text string
	}

	FunctionExpr struct {
		span
		Params   []string
		Variadic bool
		Body     *Block
	}

	// TableExpr is a table constructor.
	TableExpr struct {
		span
		Fields []*Field
	}

	NameExpr struct {
		span
		Name string
	}

	// IndexExpr is "object[key]".
	IndexExpr struct {
		span
		Object Expr
		Key    Expr
	}

	// MemberExpr is "object.name".
	MemberExpr struct {
		span
		Object Expr
		Name   string
	}

	// CallExpr is "fn(args)" or, when Method is set, "fn:method(args)".
	CallExpr struct {
		span
		Func   Expr
		Method string
		Args   []Expr
	}

	ParenExpr struct {
		span
		Inner Expr
	}

	UnaryExpr struct {
		span
		Op      Operator
		Operand Expr
	}

	BinaryExpr struct {
		span
		Op    Operator
		Left  Expr
		Right Expr
	}
)

func (*NilExpr) exprNode()      {}
func (*TrueExpr) exprNode()     {}
func (*FalseExpr) exprNode()    {}
func (*VarargExpr) exprNode()   {}
func (*NumberExpr) exprNode()   {}
func (*StringExpr) exprNode()   {}
func (*FunctionExpr) exprNode() {}
func (*TableExpr) exprNode()    {}
func (*NameExpr) exprNode()     {}
func (*IndexExpr) exprNode()    {}
func (*MemberExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
func (*ParenExpr) exprNode()    {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}

// FieldKind distinguishes the three table constructor field shapes.
type FieldKind uint8

const (
	FieldPositional FieldKind = iota // exp
	FieldBracketed                   // [exp] = exp
	FieldNamed                       // name = exp
)

func (k FieldKind) String() string {
	switch k {
	case FieldPositional:
		return "positional"
	case FieldBracketed:
		return "bracketed"
	case FieldNamed:
		return "named"
	default:
		return "FieldKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is one entry of a table constructor. Key is set for bracketed
// fields and Name for named fields.
type Field struct {
	span
	Kind  FieldKind
	Key   Expr
	Name  string
	Value Expr
}

// Operator is a unary or binary operator.
type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpPow
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBand
	OpBor
	OpBxor
	OpShl
	OpShr

	OpNeg
	OpNot
	OpLen
	OpBnot
)

var operatorSymbols = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpIDiv:   "//",
	OpMod:    "%",
	OpPow:    "^",
	OpConcat: "..",
	OpEq:     "==",
	OpNe:     "~=",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpAnd:    "and",
	OpOr:     "or",
	OpBand:   "&",
	OpBor:    "|",
	OpBxor:   "~",
	OpShl:    "<<",
	OpShr:    ">>",
	OpNeg:    "-",
	OpNot:    "not",
	OpLen:    "#",
	OpBnot:   "~",
}

// String returns the operator as written in source.
func (op Operator) String() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}

	return "Operator(" + strconv.Itoa(int(op)) + ")"
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || reflect.ValueOf(n).IsNil() || !f(n) {
		return
	}

	for _, c := range children(n) {
		Inspect(c, f)
	}
}

//nolint:cyclop,funlen
func children(n Node) []Node {
	var out []Node

	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !reflect.ValueOf(c).IsNil() {
				out = append(out, c)
			}
		}
	}
	exprs := func(xs []Expr) {
		for _, x := range xs {
			add(x)
		}
	}

	switch n := n.(type) {
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}

		if n.Return != nil {
			add(n.Return)
		}
	case *AssignStmt:
		exprs(n.Targets)
		exprs(n.Values)
	case *LocalStmt:
		exprs(n.Values)
	case *FunctionStmt:
		add(n.Func)
	case *LocalFunctionStmt:
		add(n.Func)
	case *CallStmt:
		add(n.Call)
	case *DoStmt:
		add(n.Body)
	case *WhileStmt:
		add(n.Cond, n.Body)
	case *RepeatStmt:
		add(n.Body, n.Cond)
	case *IfStmt:
		for _, c := range n.Clauses {
			add(c.Cond, c.Body)
		}

		if n.Else != nil {
			add(n.Else)
		}
	case *NumericForStmt:
		add(n.Start, n.Limit)

		if n.Step != nil {
			add(n.Step)
		}

		add(n.Body)
	case *GenericForStmt:
		exprs(n.Exprs)
		add(n.Body)
	case *ReturnStmt:
		exprs(n.Values)
	case *FunctionExpr:
		add(n.Body)
	case *TableExpr:
		for _, f := range n.Fields {
			add(f)
		}
	case *Field:
		if n.Key != nil {
			add(n.Key)
		}

		add(n.Value)
	case *IndexExpr:
		add(n.Object, n.Key)
	case *MemberExpr:
		add(n.Object)
	case *CallExpr:
		add(n.Func)
		exprs(n.Args)
	case *ParenExpr:
		add(n.Inner)
	case *UnaryExpr:
		add(n.Operand)
	case *BinaryExpr:
		add(n.Left, n.Right)
	}

	return out
}

// nodeName returns the type name of n without package or pointer.
func nodeName(n Node) string {
	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Name()
}

func writer(w io.Writer) func(eol string, item ...string) error {
	return func(eol string, item ...string) error {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)

		return err
	}
}

// Print writes an indented outline of the syntax tree to w, one node per
// line with its position and, for leaves, its source text.
func (c *Chunk) Print(w io.Writer) error {
	put := writer(w)

	var err error

	depth := 0

	var visit func(n Node)
	visit = func(n Node) {
		if err != nil {
			return
		}

		prefix := strings.Repeat("  ", depth)
		label := prefix + nodeName(n) + " " + n.Pos().String()

		switch n := n.(type) {
		case *NameExpr:
			err = put("\n", label, n.Name)
		case *NumberExpr:
			err = put("\n", label, n.Text)
		case *StringExpr:
			err = put("\n", label, clip(n.Text))
		case *UnaryExpr:
			err = put("\n", label, n.Op.String())
		case *BinaryExpr:
			err = put("\n", label, n.Op.String())
		case *Field:
			err = put("\n", label, n.Kind.String())
		default:
			err = put("\n", label)
		}

		depth++

		for _, child := range children(n) {
			visit(child)
		}

		depth--
	}

	visit(c.Block)

	return err
}
