// Package tools provides the simulated tools backing the demonstration
// agent: search, calculator, and lookup.
//
// The implementations return canned or locally computed results because real
// backing services are out of scope. In a production system each tool would
// be replaced by a genuine side-effecting call with its own failure modes;
// the reagent.Tool contract (free-text in, free-text out, error on failure)
// stays the same.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rvalens/reagent"
)

// NewSearch creates the simulated web search tool. It returns short snippets
// for a handful of known topics and a generic result otherwise.
func NewSearch() reagent.Tool {
	return reagent.NewToolFunc(
		"search",
		"Search the web for current information on a topic.",
		"search[query]",
		[]string{"search[population of Tokyo]"},
		func(_ context.Context, input string) (string, error) {
			query := strings.TrimSpace(input)
			if query == "" {
				return "", fmt.Errorf("search: empty query")
			}
			for topic, snippet := range searchIndex {
				if strings.Contains(strings.ToLower(query), topic) {
					return snippet, nil
				}
			}
			return fmt.Sprintf(
				"Top result for %q: no detailed sources found; the topic appears "+
					"to be niche or the query may need rephrasing.", query), nil
		},
	)
}

// searchIndex maps lowercase topic substrings to canned snippets.
var searchIndex = map[string]string{
	"tokyo":    "Tokyo is the capital of Japan with a metropolitan population of about 37 million (city proper: about 14 million).",
	"france":   "France is a country in Western Europe. Its capital and largest city is Paris.",
	"go":       "Go is a statically typed, compiled programming language designed at Google, first released in 2009.",
	"everest":  "Mount Everest is Earth's highest mountain above sea level, at 8,849 meters.",
	"amazon":   "The Amazon is the largest river by discharge volume of water in the world, around 6,400 km long.",
	"einstein": "Albert Einstein (1879-1955) developed the theory of relativity and won the 1921 Nobel Prize in Physics.",
}

// NewCalculator creates the simulated calculator tool. It evaluates a single
// binary arithmetic expression of the form "a <op> b" with op in + - * /.
func NewCalculator() reagent.Tool {
	return reagent.NewToolFunc(
		"calculator",
		"Evaluate a simple arithmetic expression with two operands, e.g. \"14000000 * 2\".",
		"calculator[expression]",
		[]string{"calculator[37000000 * 2]"},
		func(_ context.Context, input string) (string, error) {
			result, err := evaluate(input)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(result, 'f', -1, 64), nil
		},
	)
}

// evaluate parses and computes "a <op> b".
func evaluate(input string) (float64, error) {
	expr := strings.TrimSpace(input)
	if expr == "" {
		return 0, fmt.Errorf("calculator: empty expression")
	}

	for _, op := range []string{"+", "-", "*", "/"} {
		// Split on the last occurrence so negative left operands still parse.
		idx := strings.LastIndex(expr, op)
		if idx <= 0 || idx == len(expr)-1 {
			continue
		}
		left, errL := strconv.ParseFloat(strings.TrimSpace(expr[:idx]), 64)
		right, errR := strconv.ParseFloat(strings.TrimSpace(expr[idx+1:]), 64)
		if errL != nil || errR != nil {
			continue
		}
		switch op {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("calculator: division by zero")
			}
			return left / right, nil
		}
	}
	return 0, fmt.Errorf("calculator: cannot evaluate %q, expected \"a <op> b\"", expr)
}

// NewLookup creates the simulated encyclopedia lookup tool. It returns a
// short factual entry for known terms and an error for unknown ones, which
// exercises the loop's failure-containment path.
func NewLookup() reagent.Tool {
	return reagent.NewToolFunc(
		"lookup",
		"Look up a term in the encyclopedia for a concise factual summary.",
		"lookup[term]",
		[]string{"lookup[Mount Everest]"},
		func(_ context.Context, input string) (string, error) {
			term := strings.ToLower(strings.TrimSpace(input))
			if term == "" {
				return "", fmt.Errorf("lookup: empty term")
			}
			if entry, ok := lookupEntries[term]; ok {
				return entry, nil
			}
			return "", fmt.Errorf("lookup: no entry for %q", strings.TrimSpace(input))
		},
	)
}

// lookupEntries maps lowercase terms to encyclopedia entries.
var lookupEntries = map[string]string{
	"tokyo":         "Tokyo: capital of Japan; population approximately 14 million (metro area about 37 million).",
	"paris":         "Paris: capital of France; population approximately 2.1 million.",
	"mount everest": "Mount Everest: highest mountain on Earth, 8,849 m, located in the Himalayas.",
	"go":            "Go: programming language created at Google, known for simplicity and built-in concurrency.",
	"react pattern": "ReAct: an LLM prompting pattern interleaving reasoning traces with tool actions.",
}
