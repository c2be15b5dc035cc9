// Package audio decodes and encodes the PCM wave files the pipeline reads from
// and writes to. Samples are held as float32 in [-1, 1).
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Source is one decoded recording. It is not modified after Load.
type Source struct {
	ID         string
	Path       string
	Samples    []float32
	SampleRate int
}

// ID derives the source identifier from a file name: the base name without
// its extension. No other normalisation is applied.
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsWAV reports whether name carries a .wav extension, in any case.
func IsWAV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// Load decodes a PCM wave file. Multi-channel files are downmixed to mono by
// averaging the channels of each frame.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", filepath.Base(path))
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: read pcm: %w", filepath.Base(path), err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%s: missing sample rate", filepath.Base(path))
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	if depth <= 0 {
		return nil, fmt.Errorf("%s: unknown bit depth", filepath.Base(path))
	}
	chans := buf.Format.NumChannels
	if chans < 1 {
		chans = 1
	}

	return &Source{
		ID:         ID(path),
		Path:       path,
		Samples:    toMono(buf.Data, chans, depth),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func toMono(data []int, chans, depth int) []float32 {
	scale := float64(int64(1) << uint(depth-1))
	offset := 0
	if depth == 8 {
		// 8-bit PCM is unsigned
		offset = 128
	}
	frames := len(data) / chans
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += float64(data[i*chans+c] - offset)
		}
		out[i] = float32(sum / float64(chans) / scale)
	}
	return out
}

// Write encodes mono samples as integer PCM at the given rate and bit depth,
// clipping to the representable range. An existing file is overwritten.
func Write(path string, samples []float32, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	scale := float64(int64(1) << uint(bitDepth-1))
	hi, lo := scale-1, -scale
	data := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s) * scale
		if v > hi {
			v = hi
		}
		if v < lo {
			v = lo
		}
		data[i] = int(roundHalfAway(v))
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: write pcm: %w", filepath.Base(path), err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("%s: close encoder: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return float64(int64(v - 0.5))
	}
	return float64(int64(v + 0.5))
}
