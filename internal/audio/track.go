// Package audio loads extracted PCM audio tracks and computes amplitude
// statistics over them.
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Track holds a decoded mono PCM audio track in memory
type Track struct {
	samples    []int
	sampleRate int
}

// Load reads and fully decodes a WAV file
func Load(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio file %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("audio file contains no samples: %s", path)
	}

	return &Track{
		samples:    buf.Data,
		sampleRate: buf.Format.SampleRate,
	}, nil
}

// NumSamples returns the number of decoded samples
func (t *Track) NumSamples() int {
	return len(t.samples)
}

// SampleAt returns the signed amplitude of the sample at index i
func (t *Track) SampleAt(i int) int {
	return t.samples[i]
}

// Samples returns the raw sample slice. Callers must not modify it.
func (t *Track) Samples() []int {
	return t.samples
}

// SampleRate returns the track's sample rate in Hz
func (t *Track) SampleRate() int {
	return t.sampleRate
}
