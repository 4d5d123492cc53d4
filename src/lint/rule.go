package lint

// Descriptor is the static metadata every rule declares.
type Descriptor struct {
	Name        string
	Level       Level
	Message     string
	Description string
}

// Rule is implemented by every lint rule. A rule must additionally implement
// LineRule, TokenRule, or both to take part in a lint run.
type Rule interface {
	Descriptor() Descriptor
}

// ConfigurableRule receives the rule's section of coffeelint.json before the
// first lint call. opts is nil when the configuration has no section for the
// rule, so implementations can apply defaults.
type ConfigurableRule interface {
	Rule
	Configure(opts map[string]any) error
}

// LineAPI is the context handed to line rules.
type LineAPI struct {
	LineNumber int // zero-based
	Lines      []string
	// EOL is the terminator that ended the line as written: "\n", "\r\n",
	// or "" for the last line. Lines never include it.
	EOL string
}

// LineRule inspects one raw source line at a time.
type LineRule interface {
	Rule
	LintLine(line string, api LineAPI) *Finding
}

// TokenAPI is the context handed to token rules.
type TokenAPI struct {
	LineNumber int // zero-based line of the token's first character
	Lines      []string
	Tokens     []Token
	Index      int
}

// Peek returns the token n places after the current one, or nil.
func (a TokenAPI) Peek(n int) *Token {
	i := a.Index + n
	if i < 0 || i >= len(a.Tokens) {
		return nil
	}
	return &a.Tokens[i]
}

// TokenRule inspects tokens whose type is listed by Tokens.
type TokenRule interface {
	Rule
	Tokens() []string
	LintToken(tok Token, api TokenAPI) *Finding
}
