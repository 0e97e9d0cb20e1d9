// Package scanner walks SCSS source line by line, carrying comment,
// media-block and brace-depth state from one line to the next.
//
// It is deliberately not a tokenizer: the normalizer only handles the flat
// SCSS dialect emitted by the generator, and every later stage is written
// against this line view.
package scanner

import (
	"strings"
)

// DefaultMediaInclude is the media-query mixin invocation that opens a media block
const DefaultMediaInclude = "@include mq("

// State is the scanner's position relative to comments and media blocks
type State int

const (
	// Normal is ordinary stylesheet content
	Normal State = iota
	// InComment is inside a /* ... */ block comment
	InComment
	// InMediaBlock is inside a media mixin block
	InMediaBlock
)

func (s State) String() string {
	switch s {
	case InComment:
		return "InComment"
	case InMediaBlock:
		return "InMediaBlock"
	default:
		return "Normal"
	}
}

// Line is one source line together with the state derived for it
type Line struct {
	Index              int
	Text               string
	IndentWidth        int
	IsInsideComment    bool
	IsInsideMediaBlock bool
	// Depth is the brace depth before this line
	Depth int
}

// Trimmed returns the line text without surrounding whitespace
func (l Line) Trimmed() string {
	return strings.TrimSpace(l.Text)
}

// IsBlank reports whether the line has no content
func (l Line) IsBlank() bool {
	return l.Trimmed() == ""
}

// IsComment reports whether the line is part of a block comment or is a // line comment
func (l Line) IsComment() bool {
	return l.IsInsideComment || strings.HasPrefix(l.Trimmed(), "//")
}

// Opens reports whether the line ends by opening a block
func (l Line) Opens() bool {
	return !l.IsComment() && strings.HasSuffix(l.Trimmed(), "{")
}

// IsClose reports whether the line consists of a closing brace only
func (l Line) IsClose() bool {
	return !l.IsComment() && l.Trimmed() == "}"
}

// Header returns the selector text before the first opening brace, trimmed
func (l Line) Header() string {
	t := l.Trimmed()
	if i := strings.Index(t, "{"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// BraceDelta returns the net number of braces the line opens; comment lines count as zero
func (l Line) BraceDelta() int {
	if l.IsComment() {
		return 0
	}
	return strings.Count(l.Text, "{") - strings.Count(l.Text, "}")
}

// DepthAfter returns the brace depth after this line
func (l Line) DepthAfter() int {
	return max(0, l.Depth+l.BraceDelta())
}

// Scanner splits stylesheet text into Lines
type Scanner struct {
	// MediaInclude is the token that opens a media block
	MediaInclude string
}

// New creates a Scanner recognizing the given media include token.
// An empty token selects DefaultMediaInclude.
func New(mediaInclude string) *Scanner {
	if mediaInclude == "" {
		mediaInclude = DefaultMediaInclude
	}
	return &Scanner{MediaInclude: mediaInclude}
}

// Scan returns the lines of text with their derived state.
// Every call starts from a fresh state; malformed input never fails, an
// unterminated comment or media block simply stays open until the end.
func (s *Scanner) Scan(text string) []Line {
	include := s.MediaInclude
	if include == "" {
		include = DefaultMediaInclude
	}

	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	m := &machine{include: include}
	depth := 0

	for i, t := range raw {
		inComment, inMedia := m.step(t)
		line := Line{
			Index:              i,
			Text:               t,
			IndentWidth:        indentWidth(t),
			IsInsideComment:    inComment,
			IsInsideMediaBlock: inMedia,
			Depth:              depth,
		}
		depth = line.DepthAfter()
		lines = append(lines, line)
	}
	return lines
}

// Join reassembles lines into text
func Join(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// machine is the comment/media state machine. resume is the state to return
// to when a comment closes, so comments inside media blocks keep the block open.
type machine struct {
	state   State
	resume  State
	include string
}

// step consumes one line and reports the flags that apply to it
func (m *machine) step(text string) (inComment, inMedia bool) {
	trimmed := strings.TrimSpace(text)

	switch m.state {
	case InComment:
		inMedia = m.resume == InMediaBlock
		if strings.HasSuffix(trimmed, "*/") {
			m.state = m.resume
		}
		return true, inMedia

	case InMediaBlock:
		if opensComment(trimmed) {
			m.enterComment(trimmed)
			return true, true
		}
		if trimmed == "}" {
			m.state = Normal
		}
		return false, true

	default:
		if opensComment(trimmed) {
			m.enterComment(trimmed)
			return true, false
		}
		if strings.Contains(text, m.include) {
			// a one-line media block does not leave the block open
			if strings.Count(text, "{") > strings.Count(text, "}") {
				m.state = InMediaBlock
			}
			return false, true
		}
		return false, false
	}
}

func (m *machine) enterComment(trimmed string) {
	if closesComment(trimmed) {
		return
	}
	m.resume = m.state
	m.state = InComment
}

func opensComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "/*")
}

// closesComment reports whether a line that opened a comment also closes it
func closesComment(trimmed string) bool {
	return len(trimmed) >= 4 && strings.HasSuffix(trimmed, "*/")
}

func indentWidth(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}
