package lang

// tokenKind classifies lexical tokens.
type tokenKind uint8

const (
	tokInvalid tokenKind = iota
	tokEOF
	tokName
	tokNumber
	tokString

	// Keywords.
	tokAnd
	tokBreak
	tokDo
	tokElse
	tokElseif
	tokEnd
	tokFalse
	tokFor
	tokFunction
	tokGoto
	tokIf
	tokIn
	tokLocal
	tokNil
	tokNot
	tokOr
	tokRepeat
	tokReturn
	tokThen
	tokTrue
	tokUntil
	tokWhile

	// Operators and punctuation.
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokDoubleSlash
	tokPercent
	tokCaret
	tokHash
	tokAmp
	tokTilde
	tokPipe
	tokShl
	tokShr
	tokEq
	tokNe
	tokLe
	tokGe
	tokLt
	tokGt
	tokAssign
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokDoubleColon
	tokSemi
	tokColon
	tokComma
	tokDot
	tokConcat
	tokEllipsis
)

var tokenNames = [...]string{
	tokInvalid:     "<invalid>",
	tokEOF:         "<eof>",
	tokName:        "<name>",
	tokNumber:      "<number>",
	tokString:      "<string>",
	tokAnd:         "and",
	tokBreak:       "break",
	tokDo:          "do",
	tokElse:        "else",
	tokElseif:      "elseif",
	tokEnd:         "end",
	tokFalse:       "false",
	tokFor:         "for",
	tokFunction:    "function",
	tokGoto:        "goto",
	tokIf:          "if",
	tokIn:          "in",
	tokLocal:       "local",
	tokNil:         "nil",
	tokNot:         "not",
	tokOr:          "or",
	tokRepeat:      "repeat",
	tokReturn:      "return",
	tokThen:        "then",
	tokTrue:        "true",
	tokUntil:       "until",
	tokWhile:       "while",
	tokPlus:        "+",
	tokMinus:       "-",
	tokStar:        "*",
	tokSlash:       "/",
	tokDoubleSlash: "//",
	tokPercent:     "%",
	tokCaret:       "^",
	tokHash:        "#",
	tokAmp:         "&",
	tokTilde:       "~",
	tokPipe:        "|",
	tokShl:         "<<",
	tokShr:         ">>",
	tokEq:          "==",
	tokNe:          "~=",
	tokLe:          "<=",
	tokGe:          ">=",
	tokLt:          "<",
	tokGt:          ">",
	tokAssign:      "=",
	tokLParen:      "(",
	tokRParen:      ")",
	tokLBrace:      "{",
	tokRBrace:      "}",
	tokLBracket:    "[",
	tokRBracket:    "]",
	tokDoubleColon: "::",
	tokSemi:        ";",
	tokColon:       ":",
	tokComma:       ",",
	tokDot:         ".",
	tokConcat:      "..",
	tokEllipsis:    "...",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "<unknown>"
}

var keywords = map[string]tokenKind{
	"and":      tokAnd,
	"break":    tokBreak,
	"do":       tokDo,
	"else":     tokElse,
	"elseif":   tokElseif,
	"end":      tokEnd,
	"false":    tokFalse,
	"for":      tokFor,
	"function": tokFunction,
	"goto":     tokGoto,
	"if":       tokIf,
	"in":       tokIn,
	"local":    tokLocal,
	"nil":      tokNil,
	"not":      tokNot,
	"or":       tokOr,
	"repeat":   tokRepeat,
	"return":   tokReturn,
	"then":     tokThen,
	"true":     tokTrue,
	"until":    tokUntil,
	"while":    tokWhile,
}

// token is a lexical token. Its text is src[pos.Offset:end].
type token struct {
	kind tokenKind
	pos  Position
	end  int
}
