package normalize

import (
	"errors"
	"testing"
)

func TestChineseToArabic(t *testing.T) {
	cases := map[string]string{
		"零":     "0",
		"五":     "5",
		"十":     "10",
		"十五":    "15",
		"二十":    "20",
		"四十五":   "45",
		"一百零五":  "105",
		"一百五":   "150",
		"一百一十":  "110",
		"兩千":    "2000",
		"三千二":   "3200",
		"一千零一十": "1010",
		"兩萬五":   "25000",
		"十萬":    "100000",
		"一萬零五百": "10500",
		"一億三千萬": "130000000",
		"二〇二四":  "2024",
		"一二三":   "123",
	}
	for in, want := range cases {
		got, err := ChineseToArabic(in)
		if err != nil {
			t.Fatalf("convert %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("convert %q: got %q want %q", in, got, want)
		}
	}
}

func TestChineseToArabicRejectsInvalidShapes(t *testing.T) {
	for _, in := range []string{"", "百", "萬", "十十", "一二十", "千百", "萬萬", "三點"} {
		if _, err := ChineseToArabic(in); !errors.Is(err, ErrNotNumeral) {
			t.Fatalf("expected ErrNotNumeral for %q, got %v", in, err)
		}
	}
}
