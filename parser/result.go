package parser

import "fmt"

// MatchType is the strength of a match.
type MatchType uint8

const (
	NoMatch MatchType = iota
	// PartialMatch means the element started but could not complete. A
	// diagnostic has been recorded at the failure position.
	PartialMatch
	FullMatch
)

func (t MatchType) String() string {
	switch t {
	case PartialMatch:
		return "partial"
	case FullMatch:
		return "full"
	}
	return "none"
}

// Result is the outcome of one strategy invocation.
type Result struct {
	Type MatchType
	// Tokens is the number of significant tokens consumed.
	Tokens int
}

var noMatch = Result{Type: NoMatch}

func (r Result) IsMatch() bool   { return r.Type != NoMatch }
func (r Result) IsFull() bool    { return r.Type == FullMatch }
func (r Result) IsPartial() bool { return r.Type == PartialMatch }

// Add combines two consecutive results. The weaker match type wins and
// token counts add up.
func (r Result) Add(o Result) Result {
	t := r.Type
	if o.Type < t {
		t = o.Type
	}
	return Result{Type: t, Tokens: r.Tokens + o.Tokens}
}

func (r Result) String() string {
	if r.Type == NoMatch {
		return "no match"
	}
	return fmt.Sprintf("%s match, %d tokens", r.Type, r.Tokens)
}
