package lint

// Token types produced by the lexer. Punctuation that has no named class uses
// its own spelling as the type (e.g. "(", "=", ";").
const (
	TokenIdentifier = "IDENTIFIER"
	TokenProperty   = "PROPERTY"
	TokenNumber     = "NUMBER"
	TokenString     = "STRING"
	TokenRegex      = "REGEX"
	TokenJS         = "JS"
	TokenIf         = "IF"
	TokenWhile      = "WHILE"
	TokenUntil      = "UNTIL"
	TokenLoop       = "LOOP"
	TokenBool       = "BOOL"
	TokenUnary      = "UNARY"
	TokenUnaryMath  = "UNARY_MATH"
	TokenCompare    = "COMPARE"
	TokenLogic      = "LOGIC"
	TokenKeyword    = "KEYWORD"
	TokenIncrement  = "++"
	TokenDecrement  = "--"
	TokenRange      = ".."
	TokenSplat      = "..."
)

// TokenCompoundAssign is the word form of ||= and &&=: "or=", "and=".
const TokenCompoundAssign = "COMPOUND_ASSIGN"

// Position is the zero-based location of a token. Columns are byte offsets
// into their line; LastColumn is inclusive.
type Position struct {
	FirstLine   int
	FirstColumn int
	LastLine    int
	LastColumn  int
}

// Token is one lexeme of CoffeeScript source.
type Token struct {
	Type  string
	Value string
	Pos   Position
}
