package orchestrator

import (
	"errors"
	"reflect"
	"testing"

	cfg "github.com/maastricht-university/heartclean/config"
)

func TestReconstructConcatenated(t *testing.T) {
	chunks := map[string][]Chunk{
		"a": Chunks("a", ramp(9, 0), 4),   // 2 chunks, 1 sample dropped
		"b": Chunks("b", ramp(12, 100), 4), // 3 chunks
	}
	b := Assemble(chunks, 4)
	g := Regroup(b.Refs)

	outs, err := Reconstruct(b.Windows, g, ReconstructOptions{Mode: cfg.ModeConcatenated, Size: 4, SampleRate: 22050})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("Expected 2 outputs, got %d", len(outs))
	}

	if outs[0].Name != "a_clean" || outs[1].Name != "b_clean" {
		t.Errorf("Unexpected names %q, %q", outs[0].Name, outs[1].Name)
	}
	if !reflect.DeepEqual(outs[0].Samples, ramp(8, 0)) {
		t.Errorf("a: unexpected samples %v", outs[0].Samples)
	}
	if !reflect.DeepEqual(outs[1].Samples, ramp(12, 100)) {
		t.Errorf("b: unexpected samples %v", outs[1].Samples)
	}
	for _, o := range outs {
		if o.SampleRate != 22050 {
			t.Errorf("%s: expected 22050 Hz, got %d", o.Name, o.SampleRate)
		}
		if len(o.Samples)%4 != 0 {
			t.Errorf("%s: length %d is not a multiple of the window", o.Name, len(o.Samples))
		}
	}
}

func TestReconstructLengthIsChunksTimesWindow(t *testing.T) {
	for k := 1; k <= 5; k++ {
		chunks := map[string][]Chunk{"s": Chunks("s", ramp(k*800+13, 0), 800)}
		b := Assemble(chunks, 800)
		outs, err := Reconstruct(b.Windows, Regroup(b.Refs), ReconstructOptions{Mode: cfg.ModeConcatenated, Size: 800, SampleRate: 22050})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if got := len(outs[0].Samples); got != k*800 {
			t.Errorf("k=%d: expected %d samples, got %d", k, k*800, got)
		}
	}
}

func TestReconstructFollowsChunkOrderNotPosition(t *testing.T) {
	cleaned := [][]float32{{3, 3}, {1, 1}, {2, 2}}
	g := Regroup([]Ref{{"x", 2}, {"x", 0}, {"x", 1}})
	outs, err := Reconstruct(cleaned, g, ReconstructOptions{Mode: cfg.ModeConcatenated, Size: 2, SampleRate: 8000})
	if err != nil {
		t.Fatal(err)
	}
	if want := []float32{1, 1, 2, 2, 3, 3}; !reflect.DeepEqual(outs[0].Samples, want) {
		t.Errorf("Expected %v, got %v", want, outs[0].Samples)
	}
}

func TestReconstructPerChunk(t *testing.T) {
	chunks := map[string][]Chunk{
		"PHS": Chunks("PHS", ramp(6, 0), 2),
		"b":   Chunks("b", ramp(2, 50), 2),
	}
	b := Assemble(chunks, 2)
	outs, err := Reconstruct(b.Windows, Regroup(b.Refs), ReconstructOptions{Mode: cfg.ModePerChunk, Size: 2, SampleRate: 22050})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	var names []string
	for _, o := range outs {
		names = append(names, o.Name)
		if len(o.Samples) != 2 {
			t.Errorf("%s: expected 2 samples, got %d", o.Name, len(o.Samples))
		}
	}
	want := []string{"PHS_000", "PHS_001", "PHS_002", "b_000"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
	if !reflect.DeepEqual(outs[2].Samples, []float32{4, 5}) {
		t.Errorf("PHS_002: unexpected samples %v", outs[2].Samples)
	}
}

func TestPadWidth(t *testing.T) {
	tests := []struct {
		indices []int
		want    int
	}{
		{nil, 3},
		{[]int{0, 1, 999}, 3},
		{[]int{0, 1000}, 4},
		{[]int{123456}, 6},
	}
	for _, tt := range tests {
		if got := padWidth(tt.indices); got != tt.want {
			t.Errorf("padWidth(%v) = %d, want %d", tt.indices, got, tt.want)
		}
	}
}

func TestReconstructShapeMismatch(t *testing.T) {
	g := Regroup([]Ref{{"a", 0}, {"a", 1}})

	_, err := Reconstruct([][]float32{{1, 2}}, g, ReconstructOptions{Mode: cfg.ModeConcatenated, Size: 2})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for short batch, got %v", err)
	}

	_, err = Reconstruct([][]float32{{1, 2}, {3}}, g, ReconstructOptions{Mode: cfg.ModeConcatenated, Size: 2})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for short window, got %v", err)
	}
}

func TestReconstructUnknownMode(t *testing.T) {
	_, err := Reconstruct(nil, nil, ReconstructOptions{Mode: "stereo", Size: 2})
	if !errors.Is(err, cfg.ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
}

func TestReconstructDoesNotAliasCleaned(t *testing.T) {
	cleaned := [][]float32{{1, 2}}
	g := Regroup([]Ref{{"a", 0}})
	for _, mode := range []string{cfg.ModeConcatenated, cfg.ModePerChunk} {
		outs, err := Reconstruct(cleaned, g, ReconstructOptions{Mode: mode, Size: 2})
		if err != nil {
			t.Fatal(err)
		}
		outs[0].Samples[0] = 42
		if cleaned[0][0] != 1 {
			t.Fatalf("%s: output aliases the cleaned batch", mode)
		}
	}
}
