package commands

import (
	"sort"
	"strings"
)

// Vocabulary is the closed set of structural words the parser recognises.
// Keyword sets are matched against whole tokens; fragment sets are matched as
// substrings.
type Vocabulary struct {
	Add        []string
	Delete     []string
	Edit       []string
	Enter      []string
	Category   []string
	Item       []string
	Connectors []string

	CompleteFragments []string
	ReturnFragments   []string
	UndoFragments     []string

	// Variants maps interchangeable glyphs to their canonical form before
	// matching.
	Variants map[string]string

	// Joiner glues target tokens back together.
	Joiner string
}

// Chinese is the Traditional Chinese vocabulary spoken to the recogniser.
func Chinese() Vocabulary {
	return Vocabulary{
		Add:               []string{"新增"},
		Delete:            []string{"刪除"},
		Edit:              []string{"修改"},
		Enter:             []string{"進入"},
		Category:          []string{"分類"},
		Item:              []string{"項目"},
		Connectors:        []string{"為"},
		CompleteFragments: []string{"完成", "標記", "勾選", "打勾"},
		ReturnFragments:   []string{"返回", "回到", "上1頁", "前頁", "首頁"},
		UndoFragments:     []string{"撤銷", "復原"},
		Variants:          map[string]string{"爲": "為"},
		Joiner:            "",
	}
}

// English is used for typed commands such as "add category Groceries".
func English() Vocabulary {
	return Vocabulary{
		Add:               []string{"add"},
		Delete:            []string{"delete"},
		Edit:              []string{"edit"},
		Enter:             []string{"enter", "open"},
		Category:          []string{"category"},
		Item:              []string{"item"},
		Connectors:        []string{"as", "to"},
		CompleteFragments: []string{"done", "check", "mark"},
		ReturnFragments:   []string{"return", "back", "home"},
		UndoFragments:     []string{"undo", "revert"},
		Variants:          map[string]string{},
		Joiner:            " ",
	}
}

// VocabularyFor picks a vocabulary by language tag; anything that is not
// English falls back to Chinese.
func VocabularyFor(lang string) Vocabulary {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "en") {
		return English()
	}
	return Chinese()
}

func (v Vocabulary) stopWords() map[string]struct{} {
	out := make(map[string]struct{})
	for _, set := range [][]string{
		v.Add, v.Delete, v.Edit, v.Enter, v.Category, v.Item, v.Connectors,
		v.CompleteFragments, v.ReturnFragments, v.UndoFragments,
	} {
		for _, w := range set {
			out[w] = struct{}{}
		}
	}
	return out
}

// Words lists every structural word including variant glyphs, for seeding a
// segmenter so keywords are cut as whole tokens.
func (v Vocabulary) Words() []string {
	out := make([]string, 0, 32)
	for w := range v.stopWords() {
		out = append(out, w)
	}
	for from := range v.Variants {
		out = append(out, from)
	}
	sort.Strings(out)
	return out
}
