package audio

import (
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func encodeWAV(t *testing.T, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "track.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav file: %v", err)
	}

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Data:           samples,
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: 8000},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize wav: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close wav: %v", err)
	}

	return path
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	samples := []int{0, 100, -100, 32767, -32768, 42}
	path := encodeWAV(t, samples)

	track, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := track.NumSamples(); got != len(samples) {
		t.Fatalf("NumSamples: got %d, want %d", got, len(samples))
	}
	if got := track.SampleRate(); got != 8000 {
		t.Errorf("SampleRate: got %d, want 8000", got)
	}
	for i, want := range samples {
		if got := track.SampleAt(i); got != want {
			t.Errorf("sample %d: got %d, want %d", i, got, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadNotAWAVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for a non-WAV file")
	}
}
