package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tEOF tokenType = iota

	tLeftParen
	tRightParen
	tLeftBracket
	tRightBracket
	tLeftBrace
	tRightBrace
	tComma
	tDot
	tColon
	tSemicolon

	tPlus
	tMinus
	tStar
	tSlash
	tPercent

	tEqual
	tPlusEqual
	tMinusEqual
	tStarEqual
	tSlashEqual
	tPercentEqual

	tEqualTo
	tNotEqual
	tNot
	tGreater
	tLess
	tGreaterEqual
	tLessEqual

	tIf
	tElse
	tAnd
	tOr
	tFn
	tImport
	tReturn

	tIdent
	tStr
	tNum
	tBool
	tNone
)

var tokenNames = map[tokenType]string{
	tEOF: "end of input", tLeftParen: "(", tRightParen: ")",
	tLeftBracket: "[", tRightBracket: "]", tLeftBrace: "{", tRightBrace: "}",
	tComma: ",", tDot: ".", tColon: ":", tSemicolon: ";",
	tPlus: "+", tMinus: "-", tStar: "*", tSlash: "/", tPercent: "%",
	tEqual: "=", tPlusEqual: "+=", tMinusEqual: "-=", tStarEqual: "*=",
	tSlashEqual: "/=", tPercentEqual: "%=",
	tEqualTo: "==", tNotEqual: "!=", tNot: "!",
	tGreater: ">", tLess: "<", tGreaterEqual: ">=", tLessEqual: "<=",
	tIf: "if", tElse: "else", tAnd: "and", tOr: "or",
	tFn: "fn", tImport: "import", tReturn: "return",
	tIdent: "identifier", tStr: "string", tNum: "number",
	tBool: "bool", tNone: "none",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown"
}

var keywords = map[string]tokenType{
	"if":     tIf,
	"else":   tElse,
	"and":    tAnd,
	"or":     tOr,
	"fn":     tFn,
	"import": tImport,
	"return": tReturn,
	"true":   tBool,
	"false":  tBool,
	"none":   tNone,
}

// Token is one lexical unit of femscript source. Tokens are produced by
// Tokenize and consumed by Parse; hosts treat the stream as opaque.
type Token struct {
	typ  tokenType
	text string
	num  float64
	line int
}

// Tokenize splits source text into a token stream. Malformed input
// (unterminated strings, stray characters) fails with an error naming the
// offending line.
func Tokenize(source string) ([]Token, error) {
	lx := &lexer{src: []rune(source), line: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

type lexer struct {
	src  []rune
	pos  int
	line int
}

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) advance() rune {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
	}
	return c
}

// checkNext emits a two-character operator when the next rune matches want,
// the one-character operator otherwise.
func (lx *lexer) checkNext(one, two tokenType, want rune) Token {
	if lx.peek() == want {
		lx.advance()
		return Token{typ: two, line: lx.line}
	}
	return Token{typ: one, line: lx.line}
}

func (lx *lexer) next() (Token, error) {
	for lx.pos < len(lx.src) {
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '#':
			for lx.pos < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}
		default:
			return lx.scan()
		}
	}
	return Token{typ: tEOF, line: lx.line}, nil
}

func (lx *lexer) scan() (Token, error) {
	line := lx.line
	c := lx.advance()
	switch c {
	case '(':
		return Token{typ: tLeftParen, line: line}, nil
	case ')':
		return Token{typ: tRightParen, line: line}, nil
	case '[':
		return Token{typ: tLeftBracket, line: line}, nil
	case ']':
		return Token{typ: tRightBracket, line: line}, nil
	case '{':
		return Token{typ: tLeftBrace, line: line}, nil
	case '}':
		return Token{typ: tRightBrace, line: line}, nil
	case ',':
		return Token{typ: tComma, line: line}, nil
	case '.':
		return Token{typ: tDot, line: line}, nil
	case ':':
		return Token{typ: tColon, line: line}, nil
	case ';':
		return Token{typ: tSemicolon, line: line}, nil
	case '+':
		return lx.checkNext(tPlus, tPlusEqual, '='), nil
	case '-':
		return lx.checkNext(tMinus, tMinusEqual, '='), nil
	case '*':
		return lx.checkNext(tStar, tStarEqual, '='), nil
	case '/':
		return lx.checkNext(tSlash, tSlashEqual, '='), nil
	case '%':
		return lx.checkNext(tPercent, tPercentEqual, '='), nil
	case '=':
		return lx.checkNext(tEqual, tEqualTo, '='), nil
	case '!':
		return lx.checkNext(tNot, tNotEqual, '='), nil
	case '>':
		return lx.checkNext(tGreater, tGreaterEqual, '='), nil
	case '<':
		return lx.checkNext(tLess, tLessEqual, '='), nil
	case '"':
		return lx.scanString(line)
	default:
		if unicode.IsDigit(c) {
			return lx.scanNumber(c, line)
		}
		if c == '_' || unicode.IsLetter(c) {
			return lx.scanWord(c, line), nil
		}
		return Token{}, fmt.Errorf("unexpected character %q on line %d", c, line)
	}
}

func (lx *lexer) scanString(line int) (Token, error) {
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.advance()
		switch c {
		case '"':
			return Token{typ: tStr, text: b.String(), line: line}, nil
		case '\\':
			if lx.pos >= len(lx.src) {
				break
			}
			switch e := lx.advance(); e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '"':
				b.WriteRune('"')
			case '\\':
				b.WriteRune('\\')
			default:
				return Token{}, fmt.Errorf("invalid escape \\%c on line %d", e, lx.line)
			}
		default:
			b.WriteRune(c)
		}
	}
	return Token{}, fmt.Errorf("unterminated string on line %d", line)
}

func (lx *lexer) scanNumber(first rune, line int) (Token, error) {
	var b strings.Builder
	b.WriteRune(first)
	for lx.pos < len(lx.src) && unicode.IsDigit(lx.peek()) {
		b.WriteRune(lx.advance())
	}
	if lx.peek() == '.' && lx.pos+1 < len(lx.src) && unicode.IsDigit(lx.src[lx.pos+1]) {
		b.WriteRune(lx.advance())
		for lx.pos < len(lx.src) && unicode.IsDigit(lx.peek()) {
			b.WriteRune(lx.advance())
		}
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Token{}, fmt.Errorf("invalid number %q on line %d", b.String(), line)
	}
	return Token{typ: tNum, num: n, line: line}, nil
}

func (lx *lexer) scanWord(first rune, line int) Token {
	var b strings.Builder
	b.WriteRune(first)
	for lx.pos < len(lx.src) {
		c := lx.peek()
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		b.WriteRune(lx.advance())
	}
	word := b.String()
	if typ, ok := keywords[word]; ok {
		tok := Token{typ: typ, text: word, line: line}
		if typ == tBool && word == "true" {
			tok.num = 1
		}
		return tok
	}
	return Token{typ: tIdent, text: word, line: line}
}
