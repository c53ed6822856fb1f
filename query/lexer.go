package query

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokName
	tokString
	tokNumber
	tokSlash       // /
	tokDoubleSlash // //
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
	tokDot
	tokDotDot
	tokAt
	tokPipe
	tokStar // wildcard name test
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokPlus
	tokMinus
	tokMul // * used as an operator
	tokDiv
	tokMod
	tokAnd
	tokOr
)

var tokenNames = map[tokenType]string{
	tokEOF: "end of query", tokName: "name", tokString: "string", tokNumber: "number",
	tokSlash: "'/'", tokDoubleSlash: "'//'", tokLBracket: "'['", tokRBracket: "']'",
	tokLParen: "'('", tokRParen: "')'", tokComma: "','", tokDot: "'.'", tokDotDot: "'..'",
	tokAt: "'@'", tokPipe: "'|'", tokStar: "'*'", tokEq: "'='", tokNeq: "'!='",
	tokLt: "'<'", tokLte: "'<='", tokGt: "'>'", tokGte: "'>='", tokPlus: "'+'",
	tokMinus: "'-'", tokMul: "'*'", tokDiv: "'div'", tokMod: "'mod'", tokAnd: "'and'", tokOr: "'or'",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	typ  tokenType
	text string
	pos  int
}

type lexer struct {
	src    string
	pos    int
	tokens []token
}

// lex splits src into tokens. '*' and the names and/or/div/mod are
// operators only when the previous token can end an operand.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, token{typ: tokEOF, pos: l.pos})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && strings.IndexByte(" \t\r\n", l.src[l.pos]) >= 0 {
		l.pos++
	}
}

func (l *lexer) emit(typ tokenType, start int) {
	l.tokens = append(l.tokens, token{typ: typ, text: l.src[start:l.pos], pos: start})
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Query: l.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// operandEnded reports whether the previous token closes an operand, which
// makes the following '*' or name an operator.
func (l *lexer) operandEnded() bool {
	if len(l.tokens) == 0 {
		return false
	}
	switch l.tokens[len(l.tokens)-1].typ {
	case tokName, tokString, tokNumber, tokRBracket, tokRParen, tokDot, tokDotDot, tokStar:
		return true
	default:
		return false
	}
}

func (l *lexer) next() error {
	start := l.pos
	c := l.src[l.pos]
	l.pos++

	switch c {
	case '/':
		if l.peek() == '/' {
			l.pos++
			l.emit(tokDoubleSlash, start)
		} else {
			l.emit(tokSlash, start)
		}
	case '[':
		l.emit(tokLBracket, start)
	case ']':
		l.emit(tokRBracket, start)
	case '(':
		l.emit(tokLParen, start)
	case ')':
		l.emit(tokRParen, start)
	case ',':
		l.emit(tokComma, start)
	case '@':
		l.emit(tokAt, start)
	case '|':
		l.emit(tokPipe, start)
	case '+':
		l.emit(tokPlus, start)
	case '-':
		l.emit(tokMinus, start)
	case '=':
		l.emit(tokEq, start)
	case '!':
		if l.peek() != '=' {
			return l.errorf(start, "unexpected '!'")
		}
		l.pos++
		l.emit(tokNeq, start)
	case '<':
		if l.peek() == '=' {
			l.pos++
			l.emit(tokLte, start)
		} else {
			l.emit(tokLt, start)
		}
	case '>':
		if l.peek() == '=' {
			l.pos++
			l.emit(tokGte, start)
		} else {
			l.emit(tokGt, start)
		}
	case '*':
		if l.operandEnded() {
			l.emit(tokMul, start)
		} else {
			l.emit(tokStar, start)
		}
	case '\'', '"':
		end := strings.IndexByte(l.src[l.pos:], c)
		if end < 0 {
			return l.errorf(start, "unterminated string literal")
		}
		l.tokens = append(l.tokens, token{typ: tokString, text: l.src[l.pos : l.pos+end], pos: start})
		l.pos += end + 1
	case '.':
		switch {
		case l.peek() == '.':
			l.pos++
			l.emit(tokDotDot, start)
		case isDigit(l.peek()):
			l.number(start)
		default:
			l.emit(tokDot, start)
		}
	default:
		switch {
		case isDigit(c):
			l.number(start)
		case isNameStart(c):
			l.name(start)
		default:
			return l.errorf(start, "unexpected character %q", c)
		}
	}
	return nil
}

func (l *lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *lexer) number(start int) {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	l.emit(tokNumber, start)
}

func (l *lexer) name(start int) {
	operator := l.operandEnded()
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if operator {
		switch text {
		case "and":
			l.emit(tokAnd, start)
			return
		case "or":
			l.emit(tokOr, start)
			return
		case "div":
			l.emit(tokDiv, start)
			return
		case "mod":
			l.emit(tokMod, start)
			return
		}
	}
	l.emit(tokName, start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '-' || c == '.'
}
