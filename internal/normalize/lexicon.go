package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Lexicon holds the language-specific tables the normalizer rewrites with.
type Lexicon struct {
	// TimeWords maps whole tokens to their clock-time spelling.
	TimeWords map[string]string
	// NumeralChars is the character set of a numeral run.
	NumeralChars string
	// SuffixChars are the time suffix characters a token is split on.
	SuffixChars string
	// HourMarkers and MinuteMarker drive the final H:M collapse.
	HourMarkers  []string
	MinuteMarker string
	// Separator joins tokens into the canonical string.
	Separator string
	// NumberWords maps spelled-out numbers to their value. Tokens of the form
	// "<tens>-<unit>" are summed.
	NumberWords map[string]int
	// ClockPhrases rewrite spoken clock times on the unified text before it
	// is segmented, so a phrase split across tokens still collapses to H:MM.
	ClockPhrases []ClockPhrase
}

// ClockPhrase matches one spoken clock-time shape. The first submatch is the
// hour. With MinuteGroup the second submatch is the minutes, otherwise the
// fixed Minutes apply. Hours and minutes may be digits, numeral characters or
// number words.
type ClockPhrase struct {
	Pattern     string
	MinuteGroup bool
	Minutes     int
}

func ChineseLexicon() Lexicon {
	return Lexicon{
		TimeWords: map[string]string{
			"一點": "1點", "二點": "2點", "兩點": "2點", "三點": "3點",
			"四點": "4點", "五點": "5點", "六點": "6點", "七點": "7點",
			"八點": "8點", "九點": "9點", "十點": "10點", "十一點": "11點",
			"十二點": "12點",
			"三十分": "30分", "十五分": "15分", "四十五分": "45分",
		},
		NumeralChars: "零〇一二兩三四五六七八九十百千萬億",
		SuffixChars:  "點時分",
		HourMarkers:  []string{"點", "時"},
		MinuteMarker: "分",
		ClockPhrases: []ClockPhrase{
			{Pattern: `([0-9零〇一二兩三四五六七八九十]+)[點時]\s*([0-9零〇一二三四五六七八九十]+)分?`, MinuteGroup: true},
		},
	}
}

const englishNumber = `([0-9]+|[A-Za-z]+(?:-[A-Za-z]+)?)`

// EnglishLexicon spells out numbers up to fifty-nine and the usual clock
// phrases. Tokens are rejoined with a space.
func EnglishLexicon() Lexicon {
	return Lexicon{
		TimeWords: map[string]string{
			"noon":     "12:00",
			"midnight": "0:00",
		},
		Separator:   " ",
		NumberWords: englishNumberWords(),
		ClockPhrases: []ClockPhrase{
			{Pattern: `(?i)\b` + englishNumber + ` o['’]?clock ` + englishNumber + `\b`, MinuteGroup: true},
			{Pattern: `(?i)\b` + englishNumber + ` o['’]?clock\b`},
			{Pattern: `(?i)\bhalf past ` + englishNumber + `\b`, Minutes: 30},
			{Pattern: `(?i)\bquarter past ` + englishNumber + `\b`, Minutes: 15},
		},
	}
}

func englishNumberWords() map[string]int {
	words := map[string]int{}
	units := []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	for i, w := range units {
		words[w] = i
	}
	for i, w := range []string{"twenty", "thirty", "forty", "fifty"} {
		words[w] = (i + 2) * 10
	}
	return words
}

func LexiconFor(lang string) Lexicon {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return EnglishLexicon()
	}
	return ChineseLexicon()
}

type compiledLexicon struct {
	Lexicon
	numeral *regexp.Regexp
	suffix  *regexp.Regexp
	clocks  []*regexp.Regexp
	phrases []compiledPhrase
}

type compiledPhrase struct {
	ClockPhrase
	re *regexp.Regexp
}

func compile(lex Lexicon) compiledLexicon {
	out := compiledLexicon{Lexicon: lex}
	if lex.NumeralChars != "" {
		out.numeral = regexp.MustCompile("^[" + regexp.QuoteMeta(lex.NumeralChars) + "]+$")
	}
	if lex.SuffixChars != "" {
		out.suffix = regexp.MustCompile("[" + regexp.QuoteMeta(lex.SuffixChars) + "]")
	}
	for _, marker := range lex.HourMarkers {
		pattern := `(\d+)` + regexp.QuoteMeta(marker) + `(\d+)`
		if lex.MinuteMarker != "" {
			pattern += regexp.QuoteMeta(lex.MinuteMarker) + "?"
		}
		out.clocks = append(out.clocks, regexp.MustCompile(pattern))
	}
	for _, p := range lex.ClockPhrases {
		out.phrases = append(out.phrases, compiledPhrase{ClockPhrase: p, re: regexp.MustCompile(p.Pattern)})
	}
	return out
}

// rewriteClocks replaces every clock phrase in s with H:MM. A match whose
// numbers do not parse or fall outside a clock face is left alone.
func (c compiledLexicon) rewriteClocks(s string) string {
	for _, p := range c.phrases {
		s = p.re.ReplaceAllStringFunc(s, func(match string) string {
			sub := p.re.FindStringSubmatch(match)
			hour, ok := c.number(sub[1])
			if !ok || hour > 24 {
				return match
			}
			minutes := p.Minutes
			if p.MinuteGroup {
				if minutes, ok = c.number(sub[2]); !ok || minutes > 59 {
					return match
				}
			}
			return fmt.Sprintf("%d:%02d", hour, minutes)
		})
	}
	return s
}

// number reads s as digits, a numeral run or a number word.
func (c compiledLexicon) number(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	if v, ok := c.word(s); ok {
		return v, true
	}
	if !c.isNumeral(s) {
		return 0, false
	}
	digits, err := ChineseToArabic(s)
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	return v, err == nil
}

// word looks s up in NumberWords, case-insensitively. "forty-five" is read
// as forty plus five.
func (c compiledLexicon) word(s string) (int, bool) {
	if len(c.NumberWords) == 0 {
		return 0, false
	}
	s = strings.ToLower(s)
	if v, ok := c.NumberWords[s]; ok {
		return v, true
	}
	tens, unit, found := strings.Cut(s, "-")
	if !found {
		return 0, false
	}
	t, ok := c.NumberWords[tens]
	if !ok || t < 20 || t%10 != 0 {
		return 0, false
	}
	u, ok := c.NumberWords[unit]
	if !ok || u < 1 || u > 9 {
		return 0, false
	}
	return t + u, true
}

func (c compiledLexicon) isNumeral(s string) bool {
	return c.numeral != nil && c.numeral.MatchString(s)
}

// splitSuffix splits s around every suffix character, keeping the
// separators: "四點三十分" becomes ["四" "點" "三十" "分"].
func (c compiledLexicon) splitSuffix(s string) []string {
	idx := c.suffix.FindAllStringIndex(s, -1)
	parts := make([]string, 0, len(idx)*2+1)
	prev := 0
	for _, loc := range idx {
		if loc[0] > prev {
			parts = append(parts, s[prev:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(s) {
		parts = append(parts, s[prev:])
	}
	return parts
}
