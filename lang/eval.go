package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/dcsmiz/log"
)

// evaluator reduces expressions to values against a namespace.
type evaluator struct {
	ctx      context.Context
	chunk    *Chunk
	ns       *Namespace
	depth    int
	maxDepth int
	logger   log.Logger
}

//nolint:cyclop
func (e *evaluator) eval(x Expr) (Value, error) {
	if err := e.enter(x); err != nil {
		return Value{}, err
	}
	defer e.leave()

	switch x := x.(type) {
	case *NilExpr:
		return Nil(), nil

	case *TrueExpr:
		return Bool(true), nil

	case *FalseExpr:
		return Bool(false), nil

	case *NumberExpr:
		v, err := DecodeNumber(x.Text)
		if err != nil {
			return Value{}, e.locate(err, x)
		}

		return v, nil

	case *StringExpr:
		s, err := DecodeString(x.Text)
		if err != nil {
			return Value{}, e.locate(err, x)
		}

		return String(s), nil

	case *TableExpr:
		return e.table(x)

	case *NameExpr:
		v, ok := e.ns.Get(x.Name)
		if !ok {
			return Value{}, e.fail(ErrUndefinedVariable, x).
				With(slog.String("name", x.Name))
		}

		return v, nil

	case *ParenExpr:
		return e.eval(x.Inner)

	case *UnaryExpr:
		return e.unary(x)

	case *BinaryExpr:
		return e.binary(x)

	default:
		return Value{}, e.fail(ErrUnsupportedExpression, x).
			With(slog.String("node", nodeName(x)))
	}
}

func (e *evaluator) unary(x *UnaryExpr) (Value, error) {
	if x.Op != OpNeg {
		return Value{}, e.fail(ErrUnsupportedOperator, x).
			With(slog.String("operator", x.Op.String()))
	}

	v, err := e.eval(x.Operand)
	if err != nil {
		return Value{}, err
	}

	switch v.kind {
	case KindInteger:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	default:
		return Value{}, e.fail(ErrTypeMismatch, x).
			With(slog.String("operator", x.Op.String())).
			With(slog.String("operand", v.kind.String()))
	}
}

// binary evaluates x together with the binary expressions along its left
// operand in one loop, so a left-associative chain such as 1 + 2 + ... + n
// does not count against the depth limit. Operators are checked outermost
// first and operands are evaluated left to right.
func (e *evaluator) binary(x *BinaryExpr) (Value, error) {
	var spine []*BinaryExpr

	for b := x; b != nil; b, _ = b.Left.(*BinaryExpr) {
		switch b.Op {
		case OpAdd, OpSub, OpMul, OpDiv:
		case OpIDiv, OpMod:
			return Value{}, e.fail(ErrUnsupportedOperator, b).
				With(slog.String("operator", b.Op.String()))
		default:
			return Value{}, e.fail(ErrUnsupportedExpression, b).
				With(slog.String("operator", b.Op.String()))
		}

		spine = append(spine, b)
	}

	left, err := e.eval(spine[len(spine)-1].Left)
	if err != nil {
		return Value{}, err
	}

	for i := len(spine) - 1; i >= 0; i-- {
		b := spine[i]

		right, err := e.eval(b.Right)
		if err != nil {
			return Value{}, err
		}

		left, err = arith(b.Op, left, right)
		if err != nil {
			return Value{}, e.locate(err, b)
		}
	}

	return left, nil
}

// arith applies a supported arithmetic operator. Integer operands produce an
// integer for +, - and *, wrapping on overflow; any float operand produces a
// float. Division always produces a float.
func arith(op Operator, a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, ErrTypeMismatch.
			With(slog.String("operator", op.String())).
			With(slog.String("left", a.kind.String())).
			With(slog.String("right", b.kind.String()))
	}

	if op == OpDiv {
		d, _ := b.AsNumber()
		if d == 0 {
			return Value{}, ErrDivisionByZero
		}

		n, _ := a.AsNumber()

		return Float(n / d), nil
	}

	if a.kind == KindInteger && b.kind == KindInteger {
		switch op {
		case OpAdd:
			return Int(a.i + b.i), nil
		case OpSub:
			return Int(a.i - b.i), nil
		case OpMul:
			return Int(a.i * b.i), nil
		}
	}

	l, _ := a.AsNumber()
	r, _ := b.AsNumber()

	switch op {
	case OpAdd:
		return Float(l + r), nil
	case OpSub:
		return Float(l - r), nil
	case OpMul:
		return Float(l * r), nil
	default:
		return Value{}, ErrUnsupportedOperator.
			With(slog.String("operator", op.String()))
	}
}

// table evaluates a constructor. Positional fields are stored at an implicit
// counter starting at 1. A bracketed field whose key is an integer already
// passed by the counter is discarded; any other bracketed key is stored, the
// last write winning.
func (e *evaluator) table(x *TableExpr) (Value, error) {
	t := NewTable()

	var counter int64 = 1

	for _, f := range x.Fields {
		switch f.Kind {
		case FieldPositional:
			v, err := e.eval(f.Value)
			if err != nil {
				return Value{}, err
			}

			t.Set(IntKey(counter), v)
			counter++

		case FieldBracketed:
			kv, err := e.eval(f.Key)
			if err != nil {
				return Value{}, err
			}

			v, err := e.eval(f.Value)
			if err != nil {
				return Value{}, err
			}

			key, err := KeyOf(kv)
			if err != nil {
				return Value{}, e.locate(err, f.Key)
			}

			if i, ok := key.AsInt(); ok && i >= 1 && i < counter {
				e.logger.TraceContext(e.ctx, "table field discarded",
					slog.String("key", key.String()),
					slog.Int64("counter", counter),
					slog.String("position", f.Pos().String()))

				continue
			}

			t.Set(key, v)

		default:
			return Value{}, e.fail(ErrUnsupportedTableField, f).
				With(slog.String("field", f.Kind.String()))
		}
	}

	return TableOf(t), nil
}

// fail derives an error of the given kind located at n.
func (e *evaluator) fail(kind *Error, n Node) *Error {
	return kind.WithPosition(n.Pos()).
		With(slog.String("source", clip(e.chunk.Text(n))))
}

// locate attaches the position and source text of n to err if it does not
// carry a position already.
func (e *evaluator) locate(err error, n Node) error {
	var le *Error
	if !errors.As(err, &le) {
		return err
	}

	if _, ok := le.Position(); ok {
		return err
	}

	return le.WithPosition(n.Pos()).
		With(slog.String("source", clip(e.chunk.Text(n))))
}

func (e *evaluator) enter(n Node) error {
	e.depth++

	if e.depth > e.maxDepth {
		return ErrDepthExceeded.WithPosition(n.Pos()).
			With(slog.Int("max_depth", e.maxDepth))
	}

	return nil
}

func (e *evaluator) leave() { e.depth-- }
