package commands

import (
	"strings"
)

// Parser maps a token sequence to a Command. It never fails: input that
// matches no rule yields IntentUnrecognized with empty targets.
type Parser struct {
	vocab Vocabulary
	stop  map[string]struct{}
}

func NewParser(v Vocabulary) *Parser {
	stop := make(map[string]struct{})
	for w := range v.stopWords() {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Parser{vocab: v, stop: stop}
}

func (p *Parser) Vocabulary() Vocabulary {
	return p.vocab
}

var defaultParser = NewParser(Chinese())

// Parse classifies tokens with the Chinese vocabulary.
func Parse(tokens []string) Command {
	return defaultParser.Parse(tokens)
}

// ParseText splits typed input on whitespace and parses the result.
func (p *Parser) ParseText(text string) Command {
	return p.Parse(strings.Fields(text))
}

func (p *Parser) Parse(tokens []string) Command {
	toks := p.prepare(tokens)
	cmd := Command{Intent: p.classify(toks), Raw: strings.Join(toks, p.vocab.Joiner)}

	switch cmd.Intent {
	case IntentUnrecognized, IntentReturnToCategories, IntentUndoLastAction:
		return cmd
	case IntentEditCategory, IntentEditItem:
		cmd.Primary, cmd.Secondary = p.renameTargets(toks)
	default:
		cmd.Primary = p.subjectTarget(toks)
	}
	cmd.Primary = strings.TrimSpace(cmd.Primary)
	cmd.Secondary = strings.TrimSpace(cmd.Secondary)
	return cmd
}

func (p *Parser) prepare(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		for from, to := range p.vocab.Variants {
			tok = strings.ReplaceAll(tok, from, to)
		}
		tok = strings.Join(strings.Fields(tok), "")
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// classify applies the rules in priority order; some keyword sets overlap, so
// the order is significant.
func (p *Parser) classify(toks []string) Intent {
	v := p.vocab
	has := func(set []string) bool { return indexOf(toks, set, 0) >= 0 }

	switch {
	case has(v.Add) && has(v.Category):
		return IntentAddCategory
	case has(v.Delete) && has(v.Category):
		return IntentDeleteCategory
	case has(v.Edit) && has(v.Category) && has(v.Connectors):
		return IntentEditCategory
	case has(v.Enter) && has(v.Category):
		return IntentEnterCategory
	case has(v.Add) && has(v.Item):
		return IntentAddItem
	case has(v.Delete) && has(v.Item):
		return IntentDeleteItem
	case has(v.Edit) && has(v.Item) && has(v.Connectors):
		return IntentEditItem
	case anyTokenContains(toks, v.CompleteFragments):
		return IntentCompleteItem
	case containsAny(strings.Join(toks, ""), v.ReturnFragments):
		return IntentReturnToCategories
	case containsAny(strings.Join(toks, ""), v.UndoFragments):
		return IntentUndoLastAction
	default:
		return IntentUnrecognized
	}
}

// renameTargets extracts (old, new) from "... <item|category> OLD <connector> NEW".
// The old name starts after the last item keyword, or the last category
// keyword when no item keyword is present. A connector that appears before
// that anchor abandons extraction.
func (p *Parser) renameTargets(toks []string) (string, string) {
	anchor := lastIndexOf(toks, p.vocab.Item)
	if anchor < 0 {
		anchor = lastIndexOf(toks, p.vocab.Category)
	}
	conn := indexOf(toks, p.vocab.Connectors, 0)
	if anchor < 0 || conn < 0 {
		return "", ""
	}
	oldStart, newStart := anchor+1, conn+1
	if newStart-1 < oldStart {
		return "", ""
	}
	return strings.Join(toks[oldStart:newStart-1], p.vocab.Joiner), strings.Join(toks[newStart:], p.vocab.Joiner)
}

// subjectTarget joins every non-structural token, so the name may appear
// anywhere relative to the keywords.
func (p *Parser) subjectTarget(toks []string) string {
	kept := make([]string, 0, len(toks))
	for _, tok := range toks {
		if _, ok := p.stop[strings.ToLower(tok)]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, p.vocab.Joiner)
}

func matches(tok string, set []string) bool {
	for _, w := range set {
		if strings.EqualFold(tok, w) {
			return true
		}
	}
	return false
}

func indexOf(toks []string, set []string, from int) int {
	for i := from; i < len(toks); i++ {
		if matches(toks[i], set) {
			return i
		}
	}
	return -1
}

func lastIndexOf(toks []string, set []string) int {
	for i := len(toks) - 1; i >= 0; i-- {
		if matches(toks[i], set) {
			return i
		}
	}
	return -1
}

func anyTokenContains(toks []string, fragments []string) bool {
	for _, tok := range toks {
		if containsAny(tok, fragments) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	lower := strings.ToLower(s)
	for _, f := range fragments {
		if f != "" && strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
