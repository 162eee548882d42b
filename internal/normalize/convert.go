package normalize

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
	"golang.org/x/text/width"
)

// Converter unifies the script of recognized text. Conversion may be lossy.
type Converter interface {
	Convert(string) (string, error)
}

type IdentityConverter struct{}

func (IdentityConverter) Convert(s string) (string, error) { return s, nil }

// OpenCC converts between Chinese script variants with an OpenCC profile
// such as "s2t" (simplified to traditional).
type OpenCC struct {
	cc *opencc.OpenCC
}

func NewOpenCC(profile string) (*OpenCC, error) {
	if profile == "" {
		profile = "s2t"
	}
	cc, err := opencc.New(profile)
	if err != nil {
		return nil, fmt.Errorf("normalize: load opencc %q: %w", profile, err)
	}
	return &OpenCC{cc: cc}, nil
}

func (o *OpenCC) Convert(s string) (string, error) {
	return o.cc.Convert(s)
}

// foldWidth maps full-width ASCII letters, digits and punctuation to their
// narrow forms so "４點" and "4點" normalize alike.
func foldWidth(s string) string {
	return width.Fold.String(s)
}
