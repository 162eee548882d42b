package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotNumeral = errors.New("normalize: not a chinese numeral")

var numeralDigits = map[rune]int64{
	'零': 0, '〇': 0,
	'一': 1, '二': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var numeralUnits = map[rune]int64{
	'十': 10, '百': 100, '千': 1000,
}

var numeralSections = map[rune]int64{
	'萬': 10000, '億': 100000000,
}

// ChineseToArabic converts a run of Chinese numeral characters to its decimal
// representation. Runs without any unit character are read digit by digit
// ("二〇二四" is "2024"). Positional runs accept an implicit leading one before
// 十 ("十五" is 15), zero placeholders ("一百零五" is 105) and the colloquial
// trailing digit after a unit ("一百五" is 150).
func ChineseToArabic(s string) (string, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return "", ErrNotNumeral
	}

	positional := false
	for _, r := range runes {
		_, digit := numeralDigits[r]
		_, unit := numeralUnits[r]
		_, section := numeralSections[r]
		switch {
		case unit || section:
			positional = true
		case digit:
		default:
			return "", fmt.Errorf("%w: unexpected %q in %q", ErrNotNumeral, r, s)
		}
	}

	if !positional {
		var b strings.Builder
		for _, r := range runes {
			b.WriteString(strconv.FormatInt(numeralDigits[r], 10))
		}
		return b.String(), nil
	}

	v, err := parsePositional(runes)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrNotNumeral, s, err)
	}
	return strconv.FormatInt(v, 10), nil
}

func parsePositional(runes []rune) (int64, error) {
	var (
		total      int64
		section    int64
		digit      int64
		hasDigit   bool
		lastUnit   int64 = 10000
		lastBig    int64 = 1 << 62
		prevScale  int64
		afterZero  bool
		sawAnyUnit bool
	)

	for i, r := range runes {
		if d, ok := numeralDigits[r]; ok {
			if hasDigit {
				return 0, errors.New("consecutive digits without unit")
			}
			if d == 0 {
				afterZero = true
				prevScale = 0
				continue
			}
			digit = d
			hasDigit = true
			continue
		}

		if u, ok := numeralUnits[r]; ok {
			if u >= lastUnit {
				return 0, errors.New("units out of order")
			}
			if !hasDigit {
				if u != 10 {
					return 0, errors.New("unit without digit")
				}
				digit = 1
			}
			section += digit * u
			digit, hasDigit = 0, false
			lastUnit = u
			prevScale = u
			afterZero = false
			sawAnyUnit = true
			continue
		}

		big := numeralSections[r]
		if big >= lastBig {
			return 0, errors.New("section units out of order")
		}
		if hasDigit {
			section += digit
			digit, hasDigit = 0, false
		}
		if section == 0 && total == 0 && i == 0 {
			return 0, errors.New("section unit without value")
		}
		if big == 100000000 {
			total = (total + section) * big
		} else {
			total += section * big
		}
		section = 0
		lastBig = big
		lastUnit = 10000
		prevScale = big
		afterZero = false
		sawAnyUnit = true
	}

	if hasDigit {
		// A bare trailing digit directly after a unit drops one magnitude:
		// 一百五 reads as 150, 兩萬五 as 25000.
		if !afterZero && prevScale >= 100 && sawAnyUnit {
			digit *= prevScale / 10
		}
		section += digit
	}
	return total + section, nil
}
