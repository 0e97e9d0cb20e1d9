package css

// Position represents a position in a text document, with the character
// counted in UTF-16 code units
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in a text document
type Range struct {
	Start Position
	End   Position
}

// ProblemKind classifies a syntax problem
type ProblemKind int

const (
	// UnexpectedSyntax is text the grammar could not place
	UnexpectedSyntax ProblemKind = iota
	// MissingSyntax is a token the parser had to assume, such as a closing brace
	MissingSyntax
)

// Problem is a syntax problem in a stylesheet
type Problem struct {
	Kind    ProblemKind
	Message string
	Range   Range
}

// Rule is a qualified rule or at-rule found at the top level or inside an at-rule
type Rule struct {
	// Prelude is the selector list or at-rule prelude, e.g. ".c-card:hover" or "@media (max-width: 768px)"
	Prelude string
	Range   Range
}

// ParseResult contains the results of parsing CSS
type ParseResult struct {
	Rules    []Rule
	Problems []Problem
}

// Valid reports whether the stylesheet parsed without problems
func (r *ParseResult) Valid() bool {
	return len(r.Problems) == 0
}
