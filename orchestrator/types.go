package orchestrator

import (
	"context"
	"errors"
)

var (
	ErrShapeMismatch   = errors.New("cleaned batch does not match submitted batch")
	ErrDuplicateSource = errors.New("duplicate source id")
)

// Model is the denoiser: a stateless batched transform that must return
// exactly as many windows as it was given, each of the same length, in the
// same order.
type Model interface {
	Predict(ctx context.Context, windows [][]float32) ([][]float32, error)
}

type Chunk struct {
	Source  string
	Index   int
	Samples []float32
}

// Ref locates one batch position in its source.
type Ref struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
}

// Batch holds every window submitted to the model. Windows[i] and Refs[i]
// always describe the same chunk.
type Batch struct {
	Windows [][]float32
	Refs    []Ref
	Size    int // samples per window
}

func (b Batch) Len() int { return len(b.Refs) }

// Member lists the batch positions of one source in ascending chunk order.
type Member struct {
	Source    string
	Positions []int
	Indices   []int // chunk index of each position
}

// Group is ordered by first appearance of each source in the batch.
type Group []Member

// Lookup finds the member whose source id equals id exactly.
func (g Group) Lookup(id string) (Member, bool) {
	for _, m := range g {
		if m.Source == id {
			return m, true
		}
	}
	return Member{}, false
}

type Output struct {
	Name       string
	Source     string
	Samples    []float32
	SampleRate int
}

// Result is what one run produced.
type Result struct {
	RunID     string
	OutDir    string
	Sources   []string // every source loaded, in visitation order
	BatchSize int
	Outputs   []Output
	Files     []string
}
