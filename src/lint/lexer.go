package lint

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// LexError reports source the lexer cannot tokenize.
type LexError struct {
	Line    int // zero-based
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Message)
}

var keywords = map[string]string{
	"if":     TokenIf,
	"unless": TokenIf,
	"while":  TokenWhile,
	"until":  TokenUntil,
	"loop":   TokenLoop,
	"true":   TokenBool,
	"false":  TokenBool,
	"yes":    TokenBool,
	"no":     TokenBool,
	"on":     TokenBool,
	"off":    TokenBool,
	"not":    TokenUnary,
	"is":     TokenCompare,
	"isnt":   TokenCompare,
	"and":    TokenLogic,
	"or":     TokenLogic,
}

var reserved = map[string]bool{
	"then": true, "else": true, "for": true, "in": true, "of": true, "by": true,
	"when": true, "switch": true, "return": true, "break": true, "continue": true,
	"class": true, "extends": true, "new": true, "delete": true, "typeof": true,
	"instanceof": true, "try": true, "catch": true, "finally": true, "throw": true,
	"do": true, "super": true, "this": true, "null": true, "undefined": true,
	"own": true, "yield": true, "await": true, "import": true, "export": true,
	"default": true,
}

// operators sorted longest first so the scan is greedy.
var operators = func() []string {
	ops := []string{
		">>>=",
		"...", ">>>", "**=", "//=", "%%=", "<<=", ">>=", "&&=", "||=", "?::",
		"..", "?.", "::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||",
		"++", "--", "+=", "-=", "*=", "/=", "%=", "**", "//", "%%", "<<",
		">>", "?=", "&=", "|=", "^=",
	}
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return ops
}()

type mark struct {
	pos, line, col int
}

type lexer struct {
	src      string
	pos      int
	line     int
	col      int
	lastLine int
	lastCol  int
	tokens   []Token
}

// Tokenize splits CoffeeScript source into tokens. Comments and whitespace are
// dropped. On failure the tokens lexed so far are returned with a *LexError.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src}
	if err := l.run(); err != nil {
		return l.tokens, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		rest := l.src[l.pos:]
		var err error
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance(1)
		case strings.HasPrefix(rest, "###") && !strings.HasPrefix(rest, "####"):
			err = l.blockComment()
		case c == '#':
			l.lineComment()
		case c == '"' || c == '\'':
			err = l.str(c)
		case c == '`':
			err = l.javascript()
		case isDigit(c):
			l.number()
		case isIdentStart(c):
			l.identifier()
		case strings.HasPrefix(rest, "///") && l.regexAllowed():
			err = l.heregex()
		case c == '/' && l.regexAllowed() && l.regex():
		default:
			l.operator()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *lexer) mark() mark { return mark{pos: l.pos, line: l.line, col: l.col} }

func (l *lexer) advance(n int) {
	for ; n > 0 && l.pos < len(l.src); n-- {
		l.lastLine, l.lastCol = l.line, l.col
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 0
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) emit(typ string, m mark) {
	l.tokens = append(l.tokens, Token{
		Type:  typ,
		Value: l.src[m.pos:l.pos],
		Pos: Position{
			FirstLine:   m.line,
			FirstColumn: m.col,
			LastLine:    l.lastLine,
			LastColumn:  l.lastCol,
		},
	})
}

func (l *lexer) prev() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

func (l *lexer) blockComment() error {
	start := l.line
	l.advance(3)
	end := strings.Index(l.src[l.pos:], "###")
	if end < 0 {
		return &LexError{Line: start, Message: "missing ### to close block comment"}
	}
	l.advance(end + 3)
	return nil
}

func (l *lexer) lineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance(1)
	}
}

func (l *lexer) str(q byte) error {
	m := l.mark()
	if err := l.skipString(q); err != nil {
		return err
	}
	l.emit(TokenString, m)
	return nil
}

// skipString consumes a quoted or triple-quoted string starting at l.pos.
// Double-quoted strings may contain #{...} interpolations, which can nest
// further strings.
func (l *lexer) skipString(q byte) error {
	start := l.line
	delim := string(q)
	if strings.HasPrefix(l.src[l.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	l.advance(len(delim))
	for {
		if l.pos >= len(l.src) {
			return &LexError{Line: start, Message: "missing " + delim}
		}
		rest := l.src[l.pos:]
		switch {
		case rest[0] == '\\':
			l.advance(2)
		case q == '"' && strings.HasPrefix(rest, "#{"):
			if err := l.skipInterpolation(); err != nil {
				return err
			}
		case strings.HasPrefix(rest, delim):
			l.advance(len(delim))
			return nil
		default:
			l.advance(1)
		}
	}
}

func (l *lexer) skipInterpolation() error {
	start := l.line
	l.advance(2)
	depth := 1
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; c {
		case '{':
			depth++
			l.advance(1)
		case '}':
			depth--
			l.advance(1)
			if depth == 0 {
				return nil
			}
		case '"', '\'':
			if err := l.skipString(c); err != nil {
				return err
			}
		default:
			l.advance(1)
		}
	}
	return &LexError{Line: start, Message: "missing } to close interpolation"}
}

func (l *lexer) javascript() error {
	m := l.mark()
	l.advance(1)
	end := strings.IndexByte(l.src[l.pos:], '`')
	if end < 0 {
		return &LexError{Line: m.line, Message: "missing ` to close embedded JavaScript"}
	}
	l.advance(end + 1)
	l.emit(TokenJS, m)
	return nil
}

func (l *lexer) number() {
	m := l.mark()
	rest := l.src[l.pos:]
	if len(rest) > 1 && rest[0] == '0' && strings.ContainsRune("xXbBoO", rune(rest[1])) {
		l.advance(2)
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.advance(1)
		}
		l.emit(TokenNumber, m)
		return
	}
	l.digits()
	// A single dot followed by a digit is a fraction; ".." is a range.
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance(1)
		l.digits()
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		next := l.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
			l.advance(2)
			l.digits()
		}
	}
	l.emit(TokenNumber, m)
}

func (l *lexer) digits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.advance(1)
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) identifier() {
	m := l.mark()
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance(1)
	}
	word := l.src[m.pos:l.pos]

	typ := TokenIdentifier
	switch {
	case l.afterAccessor(m):
		typ = TokenProperty
	case l.followedByColon():
		// object key: {or: 1}
	case (word == "or" || word == "and") && l.peek(0) == '=' && l.peek(1) != '=':
		l.advance(1)
		typ = TokenCompoundAssign
	case keywords[word] != "":
		typ = keywords[word]
	case reserved[word]:
		typ = TokenKeyword
	}
	l.emit(typ, m)
}

// afterAccessor reports whether the identifier starting at m is a property
// name (obj.or, obj?.and, Foo::is, @not).
func (l *lexer) afterAccessor(m mark) bool {
	p := l.prev()
	if p == nil {
		return false
	}
	switch p.Type {
	case ".", "?.", "::", "?::":
		return true
	case "@":
		return p.Pos.LastLine == m.line && p.Pos.LastColumn+1 == m.col
	}
	return false
}

func (l *lexer) followedByColon() bool {
	i := l.pos
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		i++
	}
	return i < len(l.src) && l.src[i] == ':' && (i+1 >= len(l.src) || l.src[i+1] != ':')
}

// regexAllowed reports whether a slash at the current position can open a
// regex literal rather than be a division operator.
func (l *lexer) regexAllowed() bool {
	p := l.prev()
	if p == nil {
		return true
	}
	switch p.Type {
	case TokenIdentifier, TokenProperty, TokenNumber, TokenString, TokenRegex, TokenBool, TokenJS,
		")", "]", "}", "++", "--":
		return false
	case TokenKeyword:
		switch p.Value {
		case "this", "null", "undefined", "super":
			return false
		}
	}
	return true
}

// regex consumes a single-line regex literal. It returns false without
// consuming anything when no closing slash exists on the line.
func (l *lexer) regex() bool {
	inClass := false
	for i := l.pos + 1; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == '\n':
			return false
		case c == '\\':
			i++
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			if i == l.pos+1 {
				return false
			}
			m := l.mark()
			l.advance(i - l.pos + 1)
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.advance(1)
			}
			l.emit(TokenRegex, m)
			return true
		}
	}
	return false
}

func (l *lexer) heregex() error {
	m := l.mark()
	l.advance(3)
	end := strings.Index(l.src[l.pos:], "///")
	if end < 0 {
		return &LexError{Line: m.line, Message: "missing /// to close heregex"}
	}
	l.advance(end + 3)
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance(1)
	}
	l.emit(TokenRegex, m)
	return nil
}

func (l *lexer) operator() {
	m := l.mark()
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.advance(len(op))
			l.emit(operatorType(op), m)
			return
		}
	}
	_, size := utf8.DecodeRuneInString(rest)
	l.advance(size)
	l.emit(operatorType(l.src[m.pos:l.pos]), m)
}

func operatorType(op string) string {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return TokenCompare
	case "&&", "||":
		return TokenLogic
	case "!":
		return TokenUnary
	case "~":
		return TokenUnaryMath
	}
	return op
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '_'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
