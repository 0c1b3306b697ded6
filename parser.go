package reagent

import (
	"regexp"
	"strings"
)

// FieldOrigin tags whether a parsed field came from the oracle's output or
// from the parser's fallback defaults. The loop controller treats both the
// same way; the tag exists so tests and observers can tell them apart.
type FieldOrigin string

const (
	FieldParsed    FieldOrigin = "parsed"
	FieldDefaulted FieldOrigin = "defaulted"
)

// Parsed is the structured result of extracting one step from oracle text.
type Parsed struct {
	Thought     string
	Action      string
	ActionInput string

	ThoughtOrigin FieldOrigin
	ActionOrigin  FieldOrigin
	InputOrigin   FieldOrigin
}

// Defaulted reports whether any field fell back to a default.
func (p Parsed) Defaulted() bool {
	return p.ThoughtOrigin == FieldDefaulted ||
		p.ActionOrigin == FieldDefaulted ||
		p.InputOrigin == FieldDefaulted
}

// ParserDefaults are the substitutes used when a labeled field is missing or
// empty. Substitution keeps every parsed step well formed. Override the
// values per deployment if the shipped ones mask genuine oracle errors in
// your logs.
type ParserDefaults struct {
	Thought     string
	Action      string
	ActionInput string
}

// DefaultParserDefaults returns the shipped fallback values.
func DefaultParserDefaults() ParserDefaults {
	return ParserDefaults{
		Thought:     "Continuing analysis of the question.",
		Action:      "search",
		ActionInput: "",
	}
}

// Label patterns are anchored on the labels themselves; any content between
// labels is tolerated. "Action Input:" never matches the action label because
// the action label requires a colon directly after "action".
var (
	thoughtLabelRe = regexp.MustCompile(`(?i)thought\s*:`)
	actionLabelRe  = regexp.MustCompile(`(?i)action\s*:`)
	inputLabelRe   = regexp.MustCompile(`(?i)action\s+input\s*:`)
)

// Parser extracts {thought, action, actionInput} from free-form oracle text.
//
// The oracle is expected to emit three labeled sections in fixed order:
//
//	Thought: <free text>
//	Action: <tool name>
//	Action Input: <free text>
//
// Parsing never fails. A missing or empty field is replaced by the
// configured default and tagged [FieldDefaulted], so the loop always has a
// well-formed step to append. Parsing is pure: the same input always yields
// the same result.
type Parser struct {
	defaults ParserDefaults
}

// NewParser creates a Parser with the shipped defaults.
func NewParser() *Parser {
	return &Parser{defaults: DefaultParserDefaults()}
}

// WithDefaults sets the fallback values. Returns the parser for chaining.
func (p *Parser) WithDefaults(d ParserDefaults) *Parser {
	p.defaults = d
	return p
}

// Defaults returns the configured fallback values.
func (p *Parser) Defaults() ParserDefaults {
	return p.defaults
}

// Parse extracts the three labeled sections from text.
func (p *Parser) Parse(text string) Parsed {
	result := Parsed{
		Thought:       p.defaults.Thought,
		Action:        p.defaults.Action,
		ActionInput:   p.defaults.ActionInput,
		ThoughtOrigin: FieldDefaulted,
		ActionOrigin:  FieldDefaulted,
		InputOrigin:   FieldDefaulted,
	}

	// Locate the three labels in order. Each search starts after the
	// previous label so stray occurrences inside earlier sections cannot
	// reorder the fields.
	thoughtLoc := thoughtLabelRe.FindStringIndex(text)

	actionSearchFrom := 0
	if thoughtLoc != nil {
		actionSearchFrom = thoughtLoc[1]
	}
	actionLoc := offsetLoc(actionLabelRe.FindStringIndex(text[actionSearchFrom:]), actionSearchFrom)

	inputSearchFrom := actionSearchFrom
	if actionLoc != nil {
		inputSearchFrom = actionLoc[1]
	}
	inputLoc := offsetLoc(inputLabelRe.FindStringIndex(text[inputSearchFrom:]), inputSearchFrom)

	if thoughtLoc != nil {
		end := len(text)
		if actionLoc != nil {
			end = actionLoc[0]
		} else if inputLoc != nil {
			end = inputLoc[0]
		}
		if thought := strings.TrimSpace(text[thoughtLoc[1]:end]); thought != "" {
			result.Thought = thought
			result.ThoughtOrigin = FieldParsed
		}
	}

	if actionLoc != nil {
		end := len(text)
		if inputLoc != nil {
			end = inputLoc[0]
		}
		if action := strings.TrimSpace(text[actionLoc[1]:end]); action != "" {
			// Only the first line counts as the action name; anything after
			// a newline is noise the oracle appended.
			if idx := strings.IndexByte(action, '\n'); idx >= 0 {
				action = strings.TrimSpace(action[:idx])
			}
			if action != "" {
				result.Action = action
				result.ActionOrigin = FieldParsed
			}
		}
	}

	if inputLoc != nil {
		input := strings.TrimSpace(text[inputLoc[1]:])
		result.ActionInput = input
		result.InputOrigin = FieldParsed
	}

	return result
}

// offsetLoc shifts a relative FindStringIndex result back into absolute
// positions. Returns nil when there was no match.
func offsetLoc(loc []int, offset int) []int {
	if loc == nil {
		return nil
	}
	return []int{loc[0] + offset, loc[1] + offset}
}
