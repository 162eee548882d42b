// Package voice buffers captured audio and turns it into transcripts through
// a pluggable speech recognizer.
package voice

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SampleRate and ChunkBytes describe the audio format every recognizer
// accepts: 16 kHz mono signed 16-bit little-endian PCM delivered in
// half-second chunks.
const (
	SampleRate = 16000
	ChunkBytes = 8000
)

// Recognizer is a streaming speech-to-text decoder. AcceptWaveform reports
// whether an utterance completed with the chunk, after which Result returns
// its text. FinalResult flushes whatever audio is still pending.
type Recognizer interface {
	AcceptWaveform(pcm []byte) (bool, error)
	Result() string
	FinalResult() string
	Reset()
}

// Capture is an unbounded FIFO of audio chunks between a capture goroutine
// and the recognizer. Push never blocks; Finalize drains everything queued
// so far in arrival order.
type Capture struct {
	mu     sync.Mutex
	queue  [][]byte
	pushed uint64

	// decode serialises recognizer access across Finalize calls.
	decode sync.Mutex
	rec    Recognizer
	logger *zap.Logger
}

func NewCapture(rec Recognizer, logger *zap.Logger) *Capture {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{rec: rec, logger: logger}
}

// Push queues a copy of chunk. Empty chunks are ignored.
func (c *Capture) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)

	c.mu.Lock()
	c.queue = append(c.queue, buf)
	c.pushed++
	c.mu.Unlock()
}

// Len reports the number of chunks waiting to be decoded.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Capture) Pushed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushed
}

// Finalize feeds every queued chunk to the recognizer and returns the text
// of the latest completed utterance. When force is set and no utterance
// completed, the recognizer's pending audio is flushed with FinalResult and
// the recognizer is reset for the next recording. Chunks that fail to
// decode are skipped; their errors are returned alongside the text.
func (c *Capture) Finalize(force bool) (string, error) {
	c.mu.Lock()
	pending := c.queue
	c.queue = nil
	c.mu.Unlock()

	c.decode.Lock()
	defer c.decode.Unlock()

	var (
		text string
		errs []error
	)
	for i, chunk := range pending {
		done, err := c.rec.AcceptWaveform(chunk)
		if err != nil {
			errs = append(errs, fmt.Errorf("chunk %d: %w", i, err))
			continue
		}
		if done {
			text = strings.TrimSpace(c.rec.Result())
		}
	}
	if force {
		if text == "" {
			text = strings.TrimSpace(c.rec.FinalResult())
		}
		c.rec.Reset()
	}

	c.logger.Debug("voice: finalized",
		zap.Int("chunks", len(pending)),
		zap.Bool("force", force),
		zap.Int("chars", len(text)),
		zap.Int("errors", len(errs)),
	)
	if len(errs) > 0 {
		return text, fmt.Errorf("voice: decode: %w", errors.Join(errs...))
	}
	return text, nil
}

// ReadPCM streams raw PCM from r into c in chunks of chunkSize bytes until
// EOF. A short final chunk is pushed as is. It returns the number of bytes
// read.
func ReadPCM(r io.Reader, chunkSize int, c *Capture) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = ChunkBytes
	}
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			c.Push(buf[:n])
			total += int64(n)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return total, nil
		default:
			return total, fmt.Errorf("voice: read pcm: %w", err)
		}
	}
}
