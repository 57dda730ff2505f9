package lang

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Binding powers, loosest first.
const (
	bpNone = iota
	bpTernary
	bpOr
	bpAnd
	bpNot
	bpCompare
	bpFilter
	bpAdd
	bpMul
	bpFormat
	bpModifier
	bpPostfix
	bpRange
	bpExRange
	bpSign
)

var infixOps = map[string]int{ //nolint:gochecknoglobals
	"?": bpTernary,
	"|": bpFilter,
	"+": bpAdd, "-": bpAdd,
	"*": bpMul, "/": bpMul, "//": bpMul, "%": bpMul,
	"::": bpFormat,
	"[":  bpPostfix, "(": bpPostfix,
	"..": bpRange, "...": bpExRange,
	"==": bpCompare, "!=": bpCompare, "<": bpCompare, "<=": bpCompare,
	">": bpCompare, ">=": bpCompare, "~=": bpCompare, "^=": bpCompare,
	"$=": bpCompare,
}

var infixWords = map[string]int{ //nolint:gochecknoglobals
	"or": bpOr, "and": bpAnd,
	"bitand": bpMul, "bitor": bpMul, "bitxor": bpMul,
	"lt": bpCompare, "lte": bpCompare, "gt": bpCompare, "gte": bpCompare,
	"in": bpCompare, "is": bpCompare, "instr": bpCompare,
	"matches": bpCompare, "fnmatches": bpCompare,
}

// comparison spellings normalized to their symbolic form.
var compareAlias = map[string]string{ //nolint:gochecknoglobals
	"lt": "<", "lte": "<=", "gt": ">", "gte": ">=",
}

type parser struct {
	src   string
	toks  []token
	pos   int
	colon bool // a ':' separator may follow the operand being parsed
	slice bool // '::' is two slice separators, not the format operator
}

func parse(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	n, err := p.expr(bpNone)
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}

	return n, nil
}

// parsePrefix parses the longest leading expression of src and returns it
// with the byte offset where parsing stopped.
func parsePrefix(src string) (Node, int, error) {
	p, err := newParser(src)
	if err != nil {
		var ce *CompileError
		if !errors.As(err, &ce) || ce.Col <= 1 {
			return nil, 0, err
		}
		// retry on the text before the lexical error
		if p, err = newParser(src[:byteOffset(src, ce.Col)]); err != nil {
			return nil, 0, err
		}
	}

	n, err := p.expr(bpNone)
	if err != nil {
		return nil, 0, err
	}

	return n, p.peek().pos, nil
}

// byteOffset converts a 1-based rune column to a byte offset in src.
func byteOffset(src string, col int) int {
	n := 1
	for i := range src {
		if n == col {
			return i
		}

		n++
	}

	return len(src)
}

func newParser(src string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekN(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()

	return t.kind == tokOp && t.text == text
}

func (p *parser) isWord(text string) bool {
	t := p.peek()

	return t.kind == tokWord && t.text == text
}

func (p *parser) at(t token) Pos { return Pos{At: column(p.src, t.pos)} }

func (p *parser) errorf(t token, msg string) error {
	return &CompileError{Source: p.src, Msg: msg, Col: column(p.src, t.pos)}
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokEOF {
		return p.errorf(t, "unexpected end of expression")
	}

	return p.errorf(t, "unexpected "+strconv.Quote(t.text))
}

func (p *parser) expect(text string) error {
	if !p.isOp(text) {
		return p.errorf(p.peek(), "expected "+strconv.Quote(text))
	}

	p.next()

	return nil
}

// nested parses fn with the ':' separator context cleared.
func (p *parser) nested(fn func() (Node, error)) (Node, error) {
	colon, slice := p.colon, p.slice
	p.colon, p.slice = false, false

	defer func() { p.colon, p.slice = colon, slice }()

	return fn()
}

// beforeColon parses an operand that a ':' separator may follow.
func (p *parser) beforeColon(minBP int) (Node, error) {
	saved := p.colon
	p.colon = true

	defer func() { p.colon = saved }()

	return p.expr(minBP)
}

func (p *parser) expr(minBP int) (Node, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		bp := p.infixBP()
		if bp <= minBP {
			return left, nil
		}

		if left, err = p.infix(left, bp); err != nil {
			return nil, err
		}
	}
}

func (p *parser) infixBP() int {
	t := p.peek()

	switch t.kind {
	case tokOp:
		if p.slice && t.text == "::" {
			return bpNone
		}

		return infixOps[t.text]
	case tokLiteralIndex:
		return bpPostfix
	case tokWord:
		if t.text == "not" {
			if n := p.peekN(1); n.kind == tokWord && (n.text == "in" || n.text == "instr") {
				return bpCompare
			}

			return bpNone
		}

		return infixWords[t.text]
	default:
		return bpNone
	}
}

func (p *parser) prefix() (Node, error) {
	t := p.next()
	pos := p.at(t)

	switch t.kind {
	case tokInt:
		i, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, p.errorf(t, "integer out of range")
		}

		return &Const{Value: i, Pos: pos}, nil

	case tokReal:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number")
		}

		return &Const{Value: f, Pos: pos}, nil

	case tokTimespan:
		d, err := parseTimespan(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid timespan")
		}

		return &Const{Value: d, Pos: pos}, nil

	case tokString:
		return &Const{Value: t.text, Pos: pos}, nil

	case tokRegex:
		re, err := NewPattern(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid regular expression: "+err.Error())
		}

		return &Regex{Pattern: re, Pos: pos}, nil

	case tokVar:
		return &Var{Path: t.text, Pos: pos}, nil

	case tokScope:
		return &Scope{Pos: pos}, nil

	case tokWord:
		return p.word(t)

	case tokModifier:
		return p.modifier(t)

	case tokBacktick:
		body, err := p.nested(func() (Node, error) { return p.expr(bpNone) })
		if err != nil {
			return nil, err
		}

		end := p.peek()
		if end.kind != tokBacktick {
			return nil, p.errorf(end, "expected '`'")
		}

		p.next()

		return &Func{Body: body, Source: strings.TrimSpace(p.src[t.pos+1 : end.pos]), Pos: pos}, nil

	case tokOp:
		switch t.text {
		case "+", "-":
			x, err := p.expr(bpSign)
			if err != nil {
				return nil, err
			}

			return &Unary{X: x, Op: t.text, Pos: pos}, nil
		case "(":
			return p.nested(func() (Node, error) {
				x, err := p.expr(bpNone)
				if err != nil {
					return nil, err
				}

				return x, p.expect(")")
			})
		case "[":
			return p.nested(func() (Node, error) { return p.list(pos) })
		case "{":
			return p.nested(func() (Node, error) { return p.dict(pos) })
		}
	}

	return nil, p.unexpected(t)
}

func (p *parser) word(t token) (Node, error) {
	pos := p.at(t)

	switch t.text {
	case "True", "yes":
		return &Const{Value: true, Pos: pos}, nil
	case "False", "no":
		return &Const{Value: false, Pos: pos}, nil
	case "None":
		return &Const{Pos: pos}, nil
	case "not":
		x, err := p.expr(bpNot)
		if err != nil {
			return nil, err
		}

		return &Unary{X: x, Op: "not", Pos: pos}, nil
	}

	if operatorWords[t.text] {
		return nil, p.unexpected(t)
	}

	if p.isOp("=") && isKey(t.text) {
		p.pos--

		return p.pairs()
	}

	return &Var{Path: t.text, Pos: pos}, nil
}

func (p *parser) modifier(t token) (Node, error) {
	if _, ok := LookupModifier(t.text); !ok {
		if !p.colon {
			return nil, &CompileError{
				Source: p.src,
				Msg:    "unknown modifier " + strconv.Quote(t.text),
				Col:    column(p.src, t.pos),
			}
		}
		// read the identifier as a variable followed by a ':' separator
		p.pos--
		p.toks[p.pos] = token{kind: tokOp, text: ":", pos: t.pos + len(t.text)}

		return &Var{Path: t.text, Pos: p.at(t)}, nil
	}

	x, err := p.expr(bpModifier)
	if err != nil {
		return nil, err
	}

	return &Modify{X: x, Name: t.text, Pos: p.at(t)}, nil
}

func isKey(s string) bool {
	for i := range len(s) {
		if !isAlnum(s[i]) && s[i] != '_' {
			return false
		}
	}

	return s != ""
}

func (p *parser) pairs() (Node, error) {
	n := &Pairs{Pos: p.at(p.peek())}

	for {
		key := p.next()
		p.next() // '='

		v, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}

		n.Keys = append(n.Keys, key.text)
		n.Values = append(n.Values, v)

		if !p.isOp(",") {
			return n, nil
		}

		k, eq := p.peekN(1), p.peekN(2)
		if k.kind != tokWord || !isKey(k.text) || eq.kind != tokOp || eq.text != "=" {
			return n, nil
		}

		p.next() // ','
	}
}

func (p *parser) list(pos Pos) (Node, error) {
	n := &List{Pos: pos}

	if p.isOp("]") {
		p.next()

		return n, nil
	}

	for {
		x, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}

		n.Items = append(n.Items, x)

		if p.isOp(",") {
			p.next()

			if p.isOp("]") {
				p.next()

				return n, nil
			}

			continue
		}

		return n, p.expect("]")
	}
}

func (p *parser) dict(pos Pos) (Node, error) {
	n := &Dict{Pos: pos}

	if p.isOp("}") {
		p.next()

		return n, nil
	}

	for {
		k, err := p.beforeColon(bpNone)
		if err != nil {
			return nil, err
		}

		if err := p.expect(":"); err != nil {
			return nil, err
		}

		v, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}

		n.Keys = append(n.Keys, k)
		n.Values = append(n.Values, v)

		if p.isOp(",") {
			p.next()

			if p.isOp("}") {
				p.next()

				return n, nil
			}

			continue
		}

		return n, p.expect("}")
	}
}

func (p *parser) infix(left Node, bp int) (Node, error) {
	t := p.peek()
	pos := p.at(t)

	if t.kind == tokLiteralIndex {
		p.next()

		return &LiteralIndex{X: left, Path: t.text, Pos: pos}, nil
	}

	if bp == bpCompare {
		return p.compare(left)
	}

	p.next()

	switch t.text {
	case "?":
		return p.ternary(left, pos)
	case "[":
		return p.nested(func() (Node, error) { return p.subscript(left, pos) })
	case "(":
		return p.nested(func() (Node, error) { return p.call(left, pos) })
	}

	right, err := p.expr(bp)
	if err != nil {
		return nil, err
	}

	if t.text == "and" || t.text == "or" {
		return &Logic{L: left, R: right, Op: t.text, Pos: pos}, nil
	}

	return &Binary{L: left, R: right, Op: t.text, Pos: pos}, nil
}

func (p *parser) ternary(cond Node, pos Pos) (Node, error) {
	then, err := p.beforeColon(bpTernary)
	if err != nil {
		return nil, err
	}

	if err := p.expect(":"); err != nil {
		return nil, err
	}

	els, err := p.expr(bpTernary)
	if err != nil {
		return nil, err
	}

	return &Ternary{Cond: cond, Then: then, Else: els, Pos: pos}, nil
}

func (p *parser) compareOp() string {
	t := p.next()
	op := t.text

	switch {
	case op == "not":
		op = "not " + p.next().text
	case op == "is" && p.isWord("not"):
		p.next()

		op = "is not"
	}

	if alias, ok := compareAlias[op]; ok {
		return alias
	}

	return op
}

func (p *parser) compare(first Node) (Node, error) {
	n := &Compare{Operands: []Node{first}, Pos: p.at(p.peek())}

	for p.infixBP() == bpCompare {
		op := p.compareOp()

		right, err := p.expr(bpCompare)
		if err != nil {
			return nil, err
		}

		n.Ops = append(n.Ops, op)
		n.Operands = append(n.Operands, right)
	}

	return n, nil
}

func (p *parser) subscript(x Node, pos Pos) (Node, error) {
	parts := []Node{nil}

	p.slice = true

	for !p.isOp("]") {
		switch {
		case p.isOp(":"):
			p.next()

			parts = append(parts, nil)

			continue

		case p.isOp("::"):
			p.next()

			parts = append(parts, nil, nil)

			continue
		}

		if parts[len(parts)-1] != nil {
			return nil, p.errorf(p.peek(), "expected ']'")
		}

		part, err := p.beforeColon(bpNone)
		if err != nil {
			return nil, err
		}

		parts[len(parts)-1] = part
	}

	p.next()

	switch {
	case len(parts) == 1 && parts[0] == nil:
		return nil, &CompileError{Source: p.src, Msg: "empty subscript", Col: pos.At}
	case len(parts) == 1:
		return &Subscript{X: x, Key: parts[0], Pos: pos}, nil
	case len(parts) > 3: //nolint:mnd
		return nil, &CompileError{Source: p.src, Msg: "slice takes at most three parts", Col: pos.At}
	}

	parts = append(parts, nil)

	return &Slice{X: x, Start: parts[0], Stop: parts[1], Step: parts[2], Pos: pos}, nil
}

func (p *parser) call(x Node, pos Pos) (Node, error) {
	if p.isOp(")") {
		p.next()

		return &Call{X: x, Pos: pos}, nil
	}

	arg, err := p.expr(bpNone)
	if err != nil {
		return nil, err
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}

	return &Call{X: x, Arg: arg, Pos: pos}, nil
}

func parseTimespan(s string) (time.Duration, error) {
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return 0, err
		}

		return time.Duration(days) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
