package lang

import (
	"log/slog"
	"strings"
)

// parser is a recursive descent parser for the complete Lua 5.4 grammar.
// Statements the walker does not evaluate still parse, so that a chunk
// containing them is accepted and they can be skipped.
type parser struct {
	lex      *lexer
	src      string
	tok      token // current token
	prev     token // last consumed token
	depth    int
	maxDepth int
}

func newParser(src string, maxDepth int) *parser {
	p := &parser{
		lex:      newLexer(src),
		src:      src,
		maxDepth: maxDepth,
	}

	p.next()

	return p
}

// chunk parses: block EOF.
func (p *parser) chunk() (*Chunk, error) {
	b, err := p.block()
	if err != nil {
		return nil, err
	}

	if !p.check(tokEOF) {
		return nil, p.errorExpected(tokEOF.String())
	}

	return &Chunk{Source: p.src, Block: b}, nil
}

func blockFollow(k tokenKind, withUntil bool) bool {
	switch k {
	case tokElse, tokElseif, tokEnd, tokEOF:
		return true
	case tokUntil:
		return withUntil
	default:
		return false
	}
}

// block parses: {stat} [retstat].
func (p *parser) block() (*Block, error) {
	start := p.tok.pos
	b := new(Block)

	for !blockFollow(p.tok.kind, true) {
		if p.check(tokReturn) {
			r, err := p.returnStmt()
			if err != nil {
				return nil, err
			}

			b.Return = r

			break
		}

		s, err := p.statement()
		if err != nil {
			return nil, err
		}

		b.Stmts = append(b.Stmts, s)
	}

	b.span = p.spanFrom(start)

	return b, nil
}

// returnStmt parses: return [explist] [';'].
func (p *parser) returnStmt() (*ReturnStmt, error) {
	start := p.tok.pos
	p.next()

	r := new(ReturnStmt)

	if !blockFollow(p.tok.kind, true) && !p.check(tokSemi) {
		values, err := p.exprList()
		if err != nil {
			return nil, err
		}

		r.Values = values
	}

	p.accept(tokSemi)
	r.span = p.spanFrom(start)

	return r, nil
}

//nolint:cyclop,funlen
func (p *parser) statement() (Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.tok.pos

	switch p.tok.kind {
	case tokSemi:
		p.next()

		return &EmptyStmt{p.spanFrom(start)}, nil

	case tokIf:
		return p.ifStmt()

	case tokWhile:
		p.next()

		cond, err := p.expr()
		if err != nil {
			return nil, err
		}

		body, err := p.doBlock()
		if err != nil {
			return nil, err
		}

		return &WhileStmt{span: p.spanFrom(start), Cond: cond, Body: body}, nil

	case tokDo:
		body, err := p.doBlock()
		if err != nil {
			return nil, err
		}

		return &DoStmt{span: p.spanFrom(start), Body: body}, nil

	case tokFor:
		return p.forStmt()

	case tokRepeat:
		p.next()

		body, err := p.block()
		if err != nil {
			return nil, err
		}

		if err := p.expect(tokUntil); err != nil {
			return nil, err
		}

		cond, err := p.expr()
		if err != nil {
			return nil, err
		}

		return &RepeatStmt{span: p.spanFrom(start), Body: body, Cond: cond}, nil

	case tokFunction:
		return p.functionStmt()

	case tokLocal:
		p.next()

		if p.accept(tokFunction) {
			name, err := p.name()
			if err != nil {
				return nil, err
			}

			fn, err := p.funcBody(start)
			if err != nil {
				return nil, err
			}

			return &LocalFunctionStmt{
				span: p.spanFrom(start),
				Name: name,
				Func: fn,
			}, nil
		}

		return p.localStmt(start)

	case tokDoubleColon:
		p.next()

		name, err := p.name()
		if err != nil {
			return nil, err
		}

		if err := p.expect(tokDoubleColon); err != nil {
			return nil, err
		}

		return &LabelStmt{span: p.spanFrom(start), Name: name}, nil

	case tokBreak:
		p.next()

		return &BreakStmt{p.spanFrom(start)}, nil

	case tokGoto:
		p.next()

		name, err := p.name()
		if err != nil {
			return nil, err
		}

		return &GotoStmt{span: p.spanFrom(start), Label: name}, nil

	default:
		return p.exprStmt()
	}
}

// doBlock parses: do block end.
func (p *parser) doBlock() (*Block, error) {
	if err := p.expect(tokDo); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	if err := p.expect(tokEnd); err != nil {
		return nil, err
	}

	return body, nil
}

// ifStmt parses: if exp then block {elseif exp then block} [else block] end.
func (p *parser) ifStmt() (Stmt, error) {
	start := p.tok.pos
	s := new(IfStmt)

	for p.check(tokIf) || p.check(tokElseif) {
		p.next()

		cond, err := p.expr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(tokThen); err != nil {
			return nil, err
		}

		body, err := p.block()
		if err != nil {
			return nil, err
		}

		s.Clauses = append(s.Clauses, IfClause{Cond: cond, Body: body})
	}

	if p.accept(tokElse) {
		body, err := p.block()
		if err != nil {
			return nil, err
		}

		s.Else = body
	}

	if err := p.expect(tokEnd); err != nil {
		return nil, err
	}

	s.span = p.spanFrom(start)

	return s, nil
}

// forStmt parses the numeric and generic for loops.
func (p *parser) forStmt() (Stmt, error) {
	start := p.tok.pos
	p.next()

	first, err := p.name()
	if err != nil {
		return nil, err
	}

	if p.accept(tokAssign) {
		s := &NumericForStmt{Var: first}

		if s.Start, err = p.expr(); err != nil {
			return nil, err
		}

		if err := p.expect(tokComma); err != nil {
			return nil, err
		}

		if s.Limit, err = p.expr(); err != nil {
			return nil, err
		}

		if p.accept(tokComma) {
			if s.Step, err = p.expr(); err != nil {
				return nil, err
			}
		}

		if s.Body, err = p.doBlock(); err != nil {
			return nil, err
		}

		s.span = p.spanFrom(start)

		return s, nil
	}

	s := &GenericForStmt{Names: []string{first}}

	for p.accept(tokComma) {
		name, err := p.name()
		if err != nil {
			return nil, err
		}

		s.Names = append(s.Names, name)
	}

	if !p.accept(tokIn) {
		return nil, p.errorExpected(tokAssign.String(), tokIn.String())
	}

	if s.Exprs, err = p.exprList(); err != nil {
		return nil, err
	}

	if s.Body, err = p.doBlock(); err != nil {
		return nil, err
	}

	s.span = p.spanFrom(start)

	return s, nil
}

// functionStmt parses: function Name {'.' Name} [':' Name] funcbody.
func (p *parser) functionStmt() (Stmt, error) {
	start := p.tok.pos
	p.next()

	s := new(FunctionStmt)

	name, err := p.name()
	if err != nil {
		return nil, err
	}

	s.Path = append(s.Path, name)

	for p.accept(tokDot) {
		if name, err = p.name(); err != nil {
			return nil, err
		}

		s.Path = append(s.Path, name)
	}

	if p.accept(tokColon) {
		if s.Method, err = p.name(); err != nil {
			return nil, err
		}
	}

	if s.Func, err = p.funcBody(start); err != nil {
		return nil, err
	}

	s.span = p.spanFrom(start)

	return s, nil
}

// localStmt parses: Name attrib {',' Name attrib} ['=' explist].
func (p *parser) localStmt(start Position) (Stmt, error) {
	s := new(LocalStmt)

	for {
		name, err := p.name()
		if err != nil {
			return nil, err
		}

		local := LocalName{Name: name}

		if p.accept(tokLt) {
			if local.Attrib, err = p.name(); err != nil {
				return nil, err
			}

			if err := p.expect(tokGt); err != nil {
				return nil, err
			}
		}

		s.Names = append(s.Names, local)

		if !p.accept(tokComma) {
			break
		}
	}

	if p.accept(tokAssign) {
		values, err := p.exprList()
		if err != nil {
			return nil, err
		}

		s.Values = values
	}

	s.span = p.spanFrom(start)

	return s, nil
}

// exprStmt parses an assignment or a function call statement.
func (p *parser) exprStmt() (Stmt, error) {
	start := p.tok.pos

	first, err := p.suffixedExpr()
	if err != nil {
		return nil, err
	}

	if p.check(tokAssign) || p.check(tokComma) {
		targets := []Expr{first}

		for p.accept(tokComma) {
			t, err := p.suffixedExpr()
			if err != nil {
				return nil, err
			}

			targets = append(targets, t)
		}

		for _, t := range targets {
			switch t.(type) {
			case *NameExpr, *IndexExpr, *MemberExpr:
			default:
				return nil, ErrSyntax.WithPosition(t.Pos()).
					With(slog.String("reason", "cannot assign to expression")).
					With(slog.String("near", clip(p.src[t.Pos().Offset:t.End()])))
			}
		}

		if err := p.expect(tokAssign); err != nil {
			return nil, err
		}

		values, err := p.exprList()
		if err != nil {
			return nil, err
		}

		return &AssignStmt{
			span:    p.spanFrom(start),
			Targets: targets,
			Values:  values,
		}, nil
	}

	call, ok := first.(*CallExpr)
	if !ok {
		return nil, p.errorExpected(tokAssign.String(), tokLParen.String())
	}

	return &CallStmt{span: call.span, Call: call}, nil
}

// funcBody parses: '(' [parlist] ')' block end.
func (p *parser) funcBody(start Position) (*FunctionExpr, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	fn := new(FunctionExpr)

	if !p.check(tokRParen) {
		for {
			if p.accept(tokEllipsis) {
				fn.Variadic = true

				break
			}

			name, err := p.name()
			if err != nil {
				return nil, err
			}

			fn.Params = append(fn.Params, name)

			if !p.accept(tokComma) {
				break
			}
		}
	}

	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	if err := p.expect(tokEnd); err != nil {
		return nil, err
	}

	fn.Body = body
	fn.span = p.spanFrom(start)

	return fn, nil
}

func (p *parser) exprList() ([]Expr, error) {
	var list []Expr

	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}

		list = append(list, e)

		if !p.accept(tokComma) {
			return list, nil
		}
	}
}

// primaryExpr parses: Name | '(' expr ')'.
func (p *parser) primaryExpr() (Expr, error) {
	start := p.tok.pos

	switch p.tok.kind {
	case tokName:
		name := p.text(p.tok)
		p.next()

		return &NameExpr{span: p.spanFrom(start), Name: name}, nil

	case tokLParen:
		p.next()

		inner, err := p.expr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}

		return &ParenExpr{span: p.spanFrom(start), Inner: inner}, nil

	default:
		return nil, p.errorExpected(tokName.String(), tokLParen.String())
	}
}

// suffixedExpr parses: primaryexp { '.' Name | '[' exp ']' | ':' Name args |
// args }.
func (p *parser) suffixedExpr() (Expr, error) {
	start := p.tok.pos

	e, err := p.primaryExpr()
	if err != nil {
		return nil, err
	}

	for {
		switch p.tok.kind {
		case tokDot:
			p.next()

			name, err := p.name()
			if err != nil {
				return nil, err
			}

			e = &MemberExpr{span: p.spanFrom(start), Object: e, Name: name}

		case tokLBracket:
			p.next()

			key, err := p.expr()
			if err != nil {
				return nil, err
			}

			if err := p.expect(tokRBracket); err != nil {
				return nil, err
			}

			e = &IndexExpr{span: p.spanFrom(start), Object: e, Key: key}

		case tokColon:
			p.next()

			method, err := p.name()
			if err != nil {
				return nil, err
			}

			args, err := p.args()
			if err != nil {
				return nil, err
			}

			e = &CallExpr{
				span:   p.spanFrom(start),
				Func:   e,
				Method: method,
				Args:   args,
			}

		case tokLParen, tokString, tokLBrace:
			args, err := p.args()
			if err != nil {
				return nil, err
			}

			e = &CallExpr{span: p.spanFrom(start), Func: e, Args: args}

		default:
			return e, nil
		}
	}
}

// args parses: '(' [explist] ')' | tableconstructor | String.
func (p *parser) args() ([]Expr, error) {
	switch p.tok.kind {
	case tokString:
		s := &StringExpr{
			span: span{pos: p.tok.pos, end: p.tok.end},
			Text: p.text(p.tok),
		}
		p.next()

		return []Expr{s}, nil

	case tokLBrace:
		t, err := p.tableConstructor()
		if err != nil {
			return nil, err
		}

		return []Expr{t}, nil

	default:
		if err := p.expect(tokLParen); err != nil {
			return nil, err
		}

		var args []Expr

		if !p.check(tokRParen) {
			list, err := p.exprList()
			if err != nil {
				return nil, err
			}

			args = list
		}

		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}

		return args, nil
	}
}

// simpleExpr parses literals, constructors, function bodies and suffixed
// expressions.
func (p *parser) simpleExpr() (Expr, error) {
	start := p.tok.pos
	leaf := span{pos: p.tok.pos, end: p.tok.end}

	switch p.tok.kind {
	case tokNumber:
		e := &NumberExpr{span: leaf, Text: p.text(p.tok)}
		p.next()

		return e, nil

	case tokString:
		e := &StringExpr{span: leaf, Text: p.text(p.tok)}
		p.next()

		return e, nil

	case tokNil:
		p.next()

		return &NilExpr{leaf}, nil

	case tokTrue:
		p.next()

		return &TrueExpr{leaf}, nil

	case tokFalse:
		p.next()

		return &FalseExpr{leaf}, nil

	case tokEllipsis:
		p.next()

		return &VarargExpr{leaf}, nil

	case tokLBrace:
		return p.tableConstructor()

	case tokFunction:
		p.next()

		return p.funcBody(start)

	default:
		return p.suffixedExpr()
	}
}

// Operator priorities, as in the Lua reference implementation.
type priority struct{ left, right int }

const unaryPriority = 12

var binaryOperators = map[tokenKind]Operator{
	tokPlus:        OpAdd,
	tokMinus:       OpSub,
	tokStar:        OpMul,
	tokSlash:       OpDiv,
	tokDoubleSlash: OpIDiv,
	tokPercent:     OpMod,
	tokCaret:       OpPow,
	tokConcat:      OpConcat,
	tokEq:          OpEq,
	tokNe:          OpNe,
	tokLt:          OpLt,
	tokLe:          OpLe,
	tokGt:          OpGt,
	tokGe:          OpGe,
	tokAnd:         OpAnd,
	tokOr:          OpOr,
	tokAmp:         OpBand,
	tokPipe:        OpBor,
	tokTilde:       OpBxor,
	tokShl:         OpShl,
	tokShr:         OpShr,
}

var unaryOperators = map[tokenKind]Operator{
	tokMinus: OpNeg,
	tokNot:   OpNot,
	tokHash:  OpLen,
	tokTilde: OpBnot,
}

var priorities = map[Operator]priority{
	OpOr:     {1, 1},
	OpAnd:    {2, 2},
	OpEq:     {3, 3},
	OpNe:     {3, 3},
	OpLt:     {3, 3},
	OpLe:     {3, 3},
	OpGt:     {3, 3},
	OpGe:     {3, 3},
	OpBor:    {4, 4},
	OpBxor:   {5, 5},
	OpBand:   {6, 6},
	OpShl:    {7, 7},
	OpShr:    {7, 7},
	OpConcat: {9, 8}, // right associative
	OpAdd:    {10, 10},
	OpSub:    {10, 10},
	OpMul:    {11, 11},
	OpDiv:    {11, 11},
	OpIDiv:   {11, 11},
	OpMod:    {11, 11},
	OpPow:    {14, 13}, // right associative
}

func (p *parser) expr() (Expr, error) {
	return p.subExpr(0)
}

// subExpr parses: (simpleexp | unop subexpr) { binop subexpr }, where each
// binop has a left priority greater than limit.
func (p *parser) subExpr(limit int) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.tok.pos

	var (
		left Expr
		err  error
	)

	if op, ok := unaryOperators[p.tok.kind]; ok {
		p.next()

		operand, err := p.subExpr(unaryPriority)
		if err != nil {
			return nil, err
		}

		left = &UnaryExpr{span: p.spanFrom(start), Op: op, Operand: operand}
	} else if left, err = p.simpleExpr(); err != nil {
		return nil, err
	}

	for {
		op, ok := binaryOperators[p.tok.kind]
		if !ok || priorities[op].left <= limit {
			return left, nil
		}

		p.next()

		right, err := p.subExpr(priorities[op].right)
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{
			span:  p.spanFrom(start),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

// tableConstructor parses: '{' [field {sep field} [sep]] '}'.
func (p *parser) tableConstructor() (*TableExpr, error) {
	start := p.tok.pos

	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}

	t := new(TableExpr)

	for !p.check(tokRBrace) {
		f, err := p.field()
		if err != nil {
			return nil, err
		}

		t.Fields = append(t.Fields, f)

		if !p.accept(tokComma) && !p.accept(tokSemi) {
			break
		}
	}

	if err := p.expect(tokRBrace); err != nil {
		return nil, err
	}

	t.span = p.spanFrom(start)

	return t, nil
}

// field parses: '[' exp ']' '=' exp | Name '=' exp | exp.
func (p *parser) field() (*Field, error) {
	start := p.tok.pos
	f := new(Field)

	var err error

	switch {
	case p.check(tokLBracket):
		p.next()

		if f.Key, err = p.expr(); err != nil {
			return nil, err
		}

		if err := p.expect(tokRBracket); err != nil {
			return nil, err
		}

		if err := p.expect(tokAssign); err != nil {
			return nil, err
		}

		f.Kind = FieldBracketed

	case p.check(tokName) && p.lookahead().kind == tokAssign:
		f.Name = p.text(p.tok)
		f.Kind = FieldNamed

		p.next()
		p.next()

	default:
		f.Kind = FieldPositional
	}

	if f.Value, err = p.expr(); err != nil {
		return nil, err
	}

	f.span = p.spanFrom(start)

	return f, nil
}

// Helper methods

func (p *parser) next() {
	p.prev = p.tok
	p.tok = p.lex.next()
}

// lookahead returns the token after the current one without consuming it.
func (p *parser) lookahead() token {
	la := *p.lex

	return la.next()
}

func (p *parser) check(k tokenKind) bool {
	return p.tok.kind == k
}

func (p *parser) accept(k tokenKind) bool {
	if p.check(k) {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(k tokenKind) error {
	if p.accept(k) {
		return nil
	}

	return p.errorExpected(k.String())
}

func (p *parser) name() (string, error) {
	if !p.check(tokName) {
		return "", p.errorExpected(tokName.String())
	}

	name := p.text(p.tok)
	p.next()

	return name, nil
}

func (p *parser) text(t token) string {
	return p.src[t.pos.Offset:t.end]
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *parser) spanFrom(start Position) span {
	return span{pos: start, end: max(p.prev.end, start.Offset)}
}

func (p *parser) errorExpected(expected ...string) error {
	if p.tok.kind == tokInvalid && p.lex.err != nil {
		return p.lex.err
	}

	near := tokEOF.String()
	if p.tok.kind != tokEOF {
		near = clip(p.text(p.tok))
	}

	return ErrSyntax.WithPosition(p.tok.pos).
		With(slog.String("expected", strings.Join(expected, " or "))).
		With(slog.String("near", near))
}

func (p *parser) enter() error {
	p.depth++

	if p.depth > p.maxDepth {
		return ErrDepthExceeded.WithPosition(p.tok.pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	return nil
}

func (p *parser) leave() { p.depth-- }
