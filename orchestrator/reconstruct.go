package orchestrator

import (
	"fmt"
	"strconv"

	cfg "github.com/maastricht-university/heartclean/config"
)

type ReconstructOptions struct {
	Mode string // cfg.ModeConcatenated or cfg.ModePerChunk
	Size int
	// SampleRate is stamped on every output. It is a fixed setting and is
	// deliberately not taken from the source recordings.
	SampleRate int
}

// Reconstruct gathers the cleaned windows of each group member in chunk order.
// In concatenated mode each source yields one output named <id>_clean; in
// per-chunk mode each window yields one output named <id>_<index>. cleaned is
// not modified.
func Reconstruct(cleaned [][]float32, g Group, opts ReconstructOptions) ([]Output, error) {
	for _, m := range g {
		for _, pos := range m.Positions {
			if pos < 0 || pos >= len(cleaned) {
				return nil, fmt.Errorf("%w: %s position %d outside batch of %d", ErrShapeMismatch, m.Source, pos, len(cleaned))
			}
			if len(cleaned[pos]) != opts.Size {
				return nil, fmt.Errorf("%w: window %d has %d samples, want %d", ErrShapeMismatch, pos, len(cleaned[pos]), opts.Size)
			}
		}
	}

	var out []Output
	switch opts.Mode {
	case cfg.ModeConcatenated:
		for _, m := range g {
			joined := make([]float32, 0, len(m.Positions)*opts.Size)
			for _, pos := range m.Positions {
				joined = append(joined, cleaned[pos]...)
			}
			out = append(out, Output{
				Name:       m.Source + "_clean",
				Source:     m.Source,
				Samples:    joined,
				SampleRate: opts.SampleRate,
			})
		}
	case cfg.ModePerChunk:
		for _, m := range g {
			width := padWidth(m.Indices)
			for k, pos := range m.Positions {
				w := make([]float32, opts.Size)
				copy(w, cleaned[pos])
				out = append(out, Output{
					Name:       fmt.Sprintf("%s_%0*d", m.Source, width, m.Indices[k]),
					Source:     m.Source,
					Samples:    w,
					SampleRate: opts.SampleRate,
				})
			}
		}
	default:
		return nil, fmt.Errorf("%w: got %q", cfg.ErrInvalidMode, opts.Mode)
	}
	return out, nil
}

// padWidth is at least three digits, wider when a source has 1000+ chunks,
// so names sort in chunk order.
func padWidth(indices []int) int {
	width := 3
	for _, i := range indices {
		if n := len(strconv.Itoa(i)); n > width {
			width = n
		}
	}
	return width
}
