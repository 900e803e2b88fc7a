// Package extraction chains profile extraction strategies. Optional
// strategies (such as an AI model) are tried in order and the rule-based
// parser always closes the chain, so extraction as a whole cannot fail.
package extraction

import (
	"context"

	"resumeimport/internal/parser"
	"resumeimport/internal/types"
)

// Strategy produces a profile from document text, or reports that it could not.
type Strategy interface {
	Name() string
	TryExtract(ctx context.Context, text string) (types.ParsedProfile, bool)
}

// RuleBasedName identifies profiles produced by the heuristic parser.
const RuleBasedName = "rule-based"

// RuleBased adapts the heuristic parser to the Strategy interface. It always succeeds.
type RuleBased struct {
	parser *parser.Parser
}

func NewRuleBased(p *parser.Parser) *RuleBased {
	if p == nil {
		p = parser.New(parser.Options{})
	}
	return &RuleBased{parser: p}
}

func (r *RuleBased) Name() string {
	return RuleBasedName
}

func (r *RuleBased) TryExtract(_ context.Context, text string) (types.ParsedProfile, bool) {
	return r.Extract(text), true
}

// Extract is TryExtract without the option wrapper.
func (r *RuleBased) Extract(text string) types.ParsedProfile {
	return r.parser.Parse(text)
}

// Parser exposes the underlying parser, e.g. for swapping its heading table.
func (r *RuleBased) Parser() *parser.Parser {
	return r.parser
}
