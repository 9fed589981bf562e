package repl

import (
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/dcsmiz/lang"
)

// exprSignatures holds the parameter names of the expr-lang builtins most
// useful on mission data. Other builtins have no hint.
var exprSignatures = map[string][]string{
	"len":     {"v"},
	"all":     {"array", "predicate"},
	"any":     {"array", "predicate"},
	"none":    {"array", "predicate"},
	"map":     {"array", "mapper"},
	"filter":  {"array", "predicate"},
	"find":    {"array", "predicate"},
	"count":   {"array", "predicate"},
	"groupBy": {"array", "mapper"},
	"sortBy":  {"array", "mapper", "order"},
	"sum":     {"array"},
	"min":     {"array"},
	"max":     {"array"},
	"keys":    {"map"},
	"values":  {"map"},
	"join":    {"array", "separator"},
	"split":   {"string", "separator"},
	"replace": {"string", "old", "new"},
	"trim":    {"string"},
	"upper":   {"string"},
	"lower":   {"string"},
	"int":     {"v"},
	"float":   {"v"},
	"string":  {"v"},
	"type":    {"v"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call enclosing the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// counts the commas of its argument list.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++
		case '(', '[':
			if depth == 0 && input[i] == '(' {
				open = i
			} else if depth > 0 {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 && isIdentByte(input[start-1]) {
		start--
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// signature returns the parameter names of the function name. Query helpers
// are described by the types of their parameters.
func signature(ns *lang.Namespace, name string) ([]string, bool) {
	if params, ok := exprSignatures[name]; ok {
		return params, true
	}

	// Variables shadow helpers, so a bound name is never a function.
	if _, bound := ns.Get(name); bound {
		return nil, false
	}

	fn, ok := ns.Env()[name]
	if !ok {
		return nil, false
	}

	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, false
	}

	params := make([]string, t.NumIn())
	for i := range params {
		params[i] = typeName(t.In(i))
	}

	return params, true
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Map:
		return "table"
	case reflect.Slice:
		return "array"
	case reflect.Interface:
		return "any"
	case reflect.Int, reflect.Int64:
		return "int"
	default:
		return t.Kind().String()
	}
}

// renderSignatureHint renders name(params...) with the parameter at index
// current highlighted.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
