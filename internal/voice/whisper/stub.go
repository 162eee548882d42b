//go:build !whisper

package whisper

import (
	"errors"

	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/voice"
)

// ErrUnavailable is returned when the binary was built without the whisper
// build tag.
var ErrUnavailable = errors.New("whisper: speech recognition not compiled in; rebuild with -tags whisper")

// Recognizer is a placeholder; New always fails in this build.
type Recognizer struct{ voice.Recognizer }

func New(modelPath, language string, logger *zap.Logger) (*Recognizer, error) {
	return nil, ErrUnavailable
}

func (r *Recognizer) Close() error { return nil }
