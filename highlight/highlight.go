// Package highlight classifies femscript source into surface lexical
// categories for presentation tooling. It is independent of the runtime:
// it never parses or evaluates, only scans.
package highlight

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Class is a surface lexical category.
type Class int

const (
	Text Class = iota
	Comment
	Number
	String
	Constant // true, false
	Keyword
	Function // identifier directly before ( or {
	Operator
	Bad // unterminated string, stray character
)

// Span is a run of source text with one lexical class. Concatenating the
// Text of all spans reproduces the input exactly.
type Span struct {
	Class Class
	Text  string
}

var keywords = map[string]bool{
	"fn": true, "if": true, "else": true, "and": true, "or": true,
	"import": true, "return": true,
}

// Scan splits source into classified spans.
func Scan(source string) []Span {
	sc := &scanner{src: []rune(source)}
	for sc.pos < len(sc.src) {
		sc.step()
	}
	sc.flush(Text)
	return sc.spans
}

type scanner struct {
	src   []rune
	pos   int
	start int
	spans []Span
}

func (sc *scanner) flush(class Class) {
	if sc.pos > sc.start {
		sc.spans = append(sc.spans, Span{Class: class, Text: string(sc.src[sc.start:sc.pos])})
	}
	sc.start = sc.pos
}

func (sc *scanner) step() {
	c := sc.src[sc.pos]
	switch {
	case c == '#':
		for sc.pos < len(sc.src) && sc.src[sc.pos] != '\n' {
			sc.pos++
		}
		sc.flush(Comment)
	case c == '"':
		sc.scanString()
	case unicode.IsDigit(c):
		for sc.pos < len(sc.src) && (unicode.IsDigit(sc.src[sc.pos]) || sc.src[sc.pos] == '.') {
			sc.pos++
		}
		sc.flush(Number)
	case c == '_' || unicode.IsLetter(c):
		sc.scanWord()
	case strings.ContainsRune("=><!+-*/%", c):
		sc.pos++
		sc.flush(Operator)
	default:
		sc.pos++
		sc.flush(Text)
	}
}

func (sc *scanner) scanString() {
	sc.pos++ // opening quote
	for sc.pos < len(sc.src) {
		switch sc.src[sc.pos] {
		case '\\':
			sc.pos++
			if sc.pos < len(sc.src) {
				sc.pos++
			}
		case '"':
			sc.pos++
			sc.flush(String)
			return
		case '\n':
			sc.flush(Bad)
			return
		default:
			sc.pos++
		}
	}
	sc.flush(Bad)
}

func (sc *scanner) scanWord() {
	for sc.pos < len(sc.src) {
		c := sc.src[sc.pos]
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		sc.pos++
	}
	word := string(sc.src[sc.start:sc.pos])
	switch {
	case word == "true" || word == "false":
		sc.flush(Constant)
	case word == "none":
		sc.flush(Text)
	case keywords[word]:
		sc.flush(Keyword)
	case sc.nextNonSpace() == '(' || sc.nextNonSpace() == '{':
		sc.flush(Function)
	default:
		sc.flush(Text)
	}
}

func (sc *scanner) nextNonSpace() rune {
	for i := sc.pos; i < len(sc.src); i++ {
		if sc.src[i] != ' ' {
			return sc.src[i]
		}
	}
	return 0
}

var styles = map[Class]lipgloss.Style{
	Comment:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Number:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	String:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	Constant: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	Keyword:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	Function: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Operator: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	Bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Underline(true),
}

// Render returns source with ANSI styling applied per class.
func Render(source string) string {
	var b strings.Builder
	for _, span := range Scan(source) {
		if style, ok := styles[span.Class]; ok {
			b.WriteString(style.Render(span.Text))
		} else {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}
