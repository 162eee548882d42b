package whisper

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPCMToFloat32(t *testing.T) {
	pcm := []byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80, 0x01}
	want := []float32{0, 32767.0 / 32768.0, -1}
	if diff := cmp.Diff(want, pcmToFloat32(pcm)); diff != "" {
		t.Fatalf("unexpected samples (-want +got):\n%s", diff)
	}
}

func TestModelLanguage(t *testing.T) {
	for tag, want := range map[string]string{
		"zh-TW": "zh",
		"en_US": "en",
		"en":    "en",
		"":      "auto",
	} {
		if got := modelLanguage(tag); got != want {
			t.Fatalf("modelLanguage(%q) = %q, want %q", tag, got, want)
		}
	}
}
