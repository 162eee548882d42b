//go:build whisper

// The whisper.cpp static library and headers must be reachable through
// LIBRARY_PATH and C_INCLUDE_PATH when building with -tags whisper.

package whisper

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/voice"
)

var _ voice.Recognizer = (*Recognizer)(nil)

// Recognizer runs whisper.cpp over a whole utterance. Whisper does not
// decode incrementally, so AcceptWaveform only buffers and the transcript
// is produced by FinalResult.
type Recognizer struct {
	model    whisperlib.Model
	language string
	logger   *zap.Logger

	mu     sync.Mutex
	buffer []byte
	last   string
}

// New loads the model at modelPath. Close releases it.
func New(modelPath, language string, logger *zap.Logger) (*Recognizer, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: model path must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recognizer{model: model, language: modelLanguage(language), logger: logger}, nil
}

func (r *Recognizer) Close() error {
	if r.model != nil {
		return r.model.Close()
	}
	return nil
}

func (r *Recognizer) AcceptWaveform(pcm []byte) (bool, error) {
	r.mu.Lock()
	r.buffer = append(r.buffer, pcm...)
	r.mu.Unlock()
	return false, nil
}

func (r *Recognizer) Result() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// FinalResult transcribes the buffered audio and clears the buffer.
// Inference failures are logged and yield an empty transcript.
func (r *Recognizer) FinalResult() string {
	r.mu.Lock()
	pcm := r.buffer
	r.buffer = nil
	r.mu.Unlock()

	if len(pcm) == 0 {
		return ""
	}
	text, err := r.infer(pcm)
	if err != nil {
		r.logger.Error("whisper: inference failed", zap.Error(err))
		return ""
	}

	r.mu.Lock()
	r.last = text
	r.mu.Unlock()
	return text
}

func (r *Recognizer) Reset() {
	r.mu.Lock()
	r.buffer = nil
	r.last = ""
	r.mu.Unlock()
}

func (r *Recognizer) infer(pcm []byte) (string, error) {
	wctx, err := r.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		r.logger.Warn("whisper: language not supported, using model default",
			zap.String("language", r.language), zap.Error(err))
	}
	if err := wctx.Process(pcmToFloat32(pcm), nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
