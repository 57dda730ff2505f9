package lang

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/scopex/value"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokInt
	tokReal
	tokTimespan
	tokString
	tokRegex
	tokWord
	tokModifier
	tokVar   // $path
	tokScope // $$
	tokLiteralIndex
	tokOp
	tokBacktick
)

type token struct {
	text string
	kind tokenKind
	pos  int // byte offset in the source
}

// keywords that act as operators; other words are variables or constants.
var operatorWords = map[string]bool{ //nolint:gochecknoglobals
	"and": true, "or": true, "not": true,
	"in": true, "is": true, "instr": true,
	"lt": true, "lte": true, "gt": true, "gte": true,
	"matches": true, "fnmatches": true,
	"bitand": true, "bitor": true, "bitxor": true,
}

// multi-character punctuation, longest first.
var punctuation = []string{ //nolint:gochecknoglobals
	"...", "..", "::", "//", "==", "!=", "<=", ">=", "~=", "^=", "$=",
	"+", "-", "*", "/", "%", "|", "?", ":", ",", "(", ")", "[", "]", "{", "}", "=", "<", ">",
}

type lexer struct {
	src     string
	toks    []token
	pos     int
	operand bool // the previous token ends an operand
	ticks   int
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	if err := l.run(); err != nil {
		return nil, err
	}

	return append(l.toks, token{kind: tokEOF, pos: len(src)}), nil
}

func (l *lexer) errorf(pos int, msg string) error {
	return &CompileError{Source: l.src, Msg: msg, Col: column(l.src, pos)}
}

func column(src string, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}

	return utf8.RuneCountInString(src[:pos]) + 1
}

func (l *lexer) emit(kind tokenKind, text string, pos int, endsOperand bool) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: pos})
	l.operand = endsOperand
}

func (l *lexer) peekAt(i int) byte {
	if l.pos+i < len(l.src) {
		return l.src[l.pos+i]
	}

	return 0
}

func isWordChar(c byte) bool {
	return c == '_' || c == '.' || isAlnum(c)
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdent(s string) bool {
	if s == "" || isDigit(s[0]) || s[0] == '_' {
		return false
	}

	for i := range len(s) {
		if !isAlnum(s[i]) && s[i] != '_' {
			return false
		}
	}

	return true
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '\'' || c == '"':
			if err := l.lexString(c); err != nil {
				return err
			}
		case c == '`':
			l.ticks++
			l.emit(tokBacktick, "`", l.pos, l.ticks%2 == 0)
			l.pos++
		case c == '$' && !l.operand:
			if err := l.lexDollar(); err != nil {
				return err
			}
		case c == '/' && !l.operand:
			if err := l.lexRegex(); err != nil {
				return err
			}
		case c == '.' && l.operand:
			l.lexDot()
		case isDigit(c) && !l.operand:
			if err := l.lexNumber(); err != nil {
				return err
			}
		case isWordChar(c):
			l.lexWord()
		default:
			if !l.lexPunct() {
				return l.errorf(l.pos, "unexpected character "+value.QuoteString(string(rune(c))))
			}
		}
	}

	return nil
}

func (l *lexer) lexString(q byte) error {
	start := l.pos
	triple := strings.Repeat(string(q), 3)

	if strings.HasPrefix(l.src[l.pos:], triple) {
		end := strings.Index(l.src[l.pos+3:], triple)
		if end < 0 {
			return l.errorf(start, "unterminated string")
		}

		body := l.src[l.pos+3 : l.pos+3+end]
		l.pos += end + 6
		l.emit(tokString, value.DecodeString(body), start, true)

		return nil
	}

	i := l.pos + 1
	for i < len(l.src) {
		switch l.src[i] {
		case '\\':
			i += 2

			continue
		case q:
			body := l.src[l.pos+1 : i]
			l.pos = i + 1
			l.emit(tokString, value.DecodeString(body), start, true)

			return nil
		}

		i++
	}

	return l.errorf(start, "unterminated string")
}

func (l *lexer) lexDollar() error {
	start := l.pos

	if l.peekAt(1) == '$' {
		l.pos += 2
		l.emit(tokScope, "$$", start, true)

		return nil
	}

	l.pos++

	end := l.pos
	for end < len(l.src) && isWordChar(l.src[end]) {
		end++
	}

	if end == l.pos {
		return l.errorf(start, "expected variable after '$'")
	}

	l.emit(tokVar, l.src[l.pos:end], start, true)
	l.pos = end

	return nil
}

func (l *lexer) lexRegex() error {
	start := l.pos

	end := strings.IndexByte(l.src[l.pos+1:], '/')
	if end < 0 {
		return l.errorf(start, "unterminated regular expression")
	}

	l.emit(tokRegex, l.src[l.pos+1:l.pos+1+end], start, true)
	l.pos += end + 2

	return nil
}

// lexDot handles a dot after an operand: a range operator or a literal
// index.
func (l *lexer) lexDot() {
	start := l.pos

	switch {
	case strings.HasPrefix(l.src[l.pos:], "..."):
		l.pos += 3
		l.emit(tokOp, "...", start, false)
	case strings.HasPrefix(l.src[l.pos:], ".."):
		l.pos += 2
		l.emit(tokOp, "..", start, false)
	default:
		end := l.pos + 1
		for end < len(l.src) && isWordChar(l.src[end]) {
			end++
		}

		l.emit(tokLiteralIndex, l.src[l.pos+1:end], start, true)
		l.pos = end
	}
}

var timeUnits = []string{"ms", "s", "m", "h", "d"} //nolint:gochecknoglobals

func (l *lexer) lexNumber() error {
	start := l.pos

	end := l.pos
	for end < len(l.src) && isDigit(l.src[end]) {
		end++
	}

	kind := tokInt

	if end+1 < len(l.src) && l.src[end] == '.' && isDigit(l.src[end+1]) {
		end++
		for end < len(l.src) && isDigit(l.src[end]) {
			end++
		}

		kind = tokReal
	} else {
		for _, u := range timeUnits {
			next := end + len(u)
			if strings.HasPrefix(l.src[end:], u) && (next >= len(l.src) || !isAlnum(l.src[next])) {
				end = next
				kind = tokTimespan

				break
			}
		}
	}

	if end < len(l.src) && isAlnum(l.src[end]) {
		return l.errorf(start, "invalid number")
	}

	l.emit(kind, l.src[start:end], start, true)
	l.pos = end

	return nil
}

func (l *lexer) lexWord() {
	start := l.pos

	end := l.pos
	for end < len(l.src) && isWordChar(l.src[end]) {
		end++
	}

	word := l.src[start:end]
	l.pos = end

	if !l.operand && isIdent(word) && l.peekAt(0) == ':' && l.peekAt(1) != ':' {
		l.pos++
		l.emit(tokModifier, word, start, false)

		return
	}

	l.emit(tokWord, word, start, !operatorWords[word])
}

func (l *lexer) lexPunct() bool {
	for _, p := range punctuation {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.emit(tokOp, p, l.pos, p == ")" || p == "]" || p == "}")
			l.pos += len(p)

			return true
		}
	}

	return false
}
