package normalize

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
)

// Segmenter splits text into word tokens. Tokens may be empty or padded with
// whitespace; the normalizer tolerates both.
type Segmenter interface {
	Segment(string) []string
}

// Fields splits on whitespace. It suits English and pre-spaced transcripts.
type Fields struct{}

func (Fields) Segment(s string) []string { return strings.Fields(s) }

// GSE segments Chinese text with the gse dictionary segmenter.
type GSE struct {
	mu  sync.Mutex
	seg gse.Segmenter
}

// NewGSE loads the embedded traditional Chinese dictionary and adds words
// with a high frequency so they are always cut as whole tokens.
func NewGSE(words ...string) (*GSE, error) {
	g := &GSE{}
	if err := g.seg.LoadDictEmbed("zh_t"); err != nil {
		return nil, fmt.Errorf("normalize: load gse dictionary: %w", err)
	}
	for _, w := range words {
		if err := g.seg.AddToken(w, 100000); err != nil {
			return nil, fmt.Errorf("normalize: add token %q: %w", w, err)
		}
	}
	return g, nil
}

func (g *GSE) Segment(s string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seg.Cut(s, true)
}

// Greedy cuts the longest known word at each position. Whitespace separates
// tokens and runs of unknown characters are kept together.
type Greedy struct {
	words  map[string]struct{}
	maxLen int
}

func NewGreedy(words ...string) *Greedy {
	g := &Greedy{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w == "" {
			continue
		}
		g.words[w] = struct{}{}
		if n := len([]rune(w)); n > g.maxLen {
			g.maxLen = n
		}
	}
	return g
}

func (g *Greedy) Segment(s string) []string {
	runes := []rune(s)
	out := make([]string, 0, 8)
	var unknown []rune
	flush := func() {
		if len(unknown) > 0 {
			out = append(out, string(unknown))
			unknown = unknown[:0]
		}
	}
	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			flush()
			i++
			continue
		}
		matched := 0
		for n := min(g.maxLen, len(runes)-i); n > 0; n-- {
			if _, ok := g.words[string(runes[i:i+n])]; ok {
				matched = n
				break
			}
		}
		if matched == 0 {
			unknown = append(unknown, runes[i])
			i++
			continue
		}
		flush()
		out = append(out, string(runes[i:i+matched]))
		i += matched
	}
	flush()
	return out
}

// SegmenterFor returns the segmenter suited to lang, seeded with words.
// Chinese falls back to Greedy over words when the gse dictionary cannot be
// loaded; the error is still returned so the caller can log it.
func SegmenterFor(lang string, words []string) (Segmenter, error) {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return Fields{}, nil
	}
	g, err := NewGSE(words...)
	if err != nil {
		return NewGreedy(words...), err
	}
	return g, nil
}

// ConverterFor returns the script converter suited to lang. Every Chinese
// variant is unified to traditional script, which the command vocabulary uses.
func ConverterFor(lang string) (Converter, error) {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return IdentityConverter{}, nil
	}
	c, err := NewOpenCC("s2t")
	if err != nil {
		return IdentityConverter{}, err
	}
	return c, nil
}
