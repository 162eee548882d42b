// Package normalize turns a raw speech transcript into the canonical text the
// command parser reads: one script variant, no interior whitespace, Arabic
// numerals and H:M clock times.
package normalize

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/observe"
)

type Normalizer struct {
	converter Converter
	segmenter Segmenter
	lex       compiledLexicon
	logger    *zap.Logger
	metrics   *observe.Metrics
}

type Option func(*Normalizer)

func WithConverter(c Converter) Option {
	return func(n *Normalizer) {
		if c != nil {
			n.converter = c
		}
	}
}

func WithSegmenter(s Segmenter) Option {
	return func(n *Normalizer) {
		if s != nil {
			n.segmenter = s
		}
	}
}

func WithLexicon(l Lexicon) Option {
	return func(n *Normalizer) { n.lex = compile(l) }
}

func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(n *Normalizer) { n.metrics = m }
}

// New builds a Normalizer. Without options it uses the Chinese lexicon, no
// script conversion and whitespace segmentation.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		converter: IdentityConverter{},
		segmenter: Fields{},
		lex:       compile(ChineseLexicon()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize never fails. A step that errors passes its input through
// unchanged. Empty or whitespace-only input yields "".
func (n *Normalizer) Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	text = foldWidth(text)
	if converted, err := n.converter.Convert(text); err != nil {
		n.fallback("convert", text, err)
	} else {
		text = converted
	}
	text = n.lex.rewriteClocks(text)

	tokens := n.segment(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, n.rewrite(tok))
	}

	joined := strings.Join(out, n.lex.Separator)
	for _, re := range n.lex.clocks {
		joined = re.ReplaceAllString(joined, "$1:$2")
	}

	n.logger.Debug("normalize: transcript",
		zap.String("raw", raw),
		zap.String("canonical", joined),
	)
	return joined
}

// Tokens normalizes raw and segments the canonical text again, producing the
// token sequence the parser consumes.
func (n *Normalizer) Tokens(raw string) []string {
	canonical := n.Normalize(raw)
	if canonical == "" {
		return nil
	}
	return n.segment(canonical)
}

func (n *Normalizer) segment(text string) []string {
	raw := n.segmenter.Segment(text)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = stripSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (n *Normalizer) rewrite(tok string) string {
	if mapped, ok := n.lex.TimeWords[tok]; ok {
		return mapped
	}
	if v, ok := n.lex.word(tok); ok {
		return strconv.Itoa(v)
	}
	if n.lex.suffix != nil && n.lex.suffix.MatchString(tok) {
		parts := n.lex.splitSuffix(tok)
		for i, part := range parts {
			parts[i] = n.numeral(part)
		}
		return strings.Join(parts, "")
	}
	return n.numeral(tok)
}

func (n *Normalizer) numeral(tok string) string {
	if !n.lex.isNumeral(tok) {
		return tok
	}
	converted, err := ChineseToArabic(tok)
	if err != nil {
		n.fallback("numeral", tok, err)
		return tok
	}
	return converted
}

func (n *Normalizer) fallback(step, input string, err error) {
	n.logger.Debug("normalize: step passed input through",
		zap.String("step", step),
		zap.String("input", input),
		zap.Error(err),
	)
	n.metrics.RecordNormalizeFallback(context.Background(), step)
}

func stripSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
