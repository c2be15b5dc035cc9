package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maastricht-university/heartclean/audio"
	cfg "github.com/maastricht-university/heartclean/config"
)

type Track struct {
	Path       string
	Samples    []float32
	SampleRate int
	Stats      audio.Stats
}

// Comparison pairs a recording with its concatenated clean output.
type Comparison struct {
	Source   string
	Original Track
	Clean    Track
}

// Compare reads dir/<id>.wav and its cleaned counterpart from a previous run
// in concatenated mode. It only reads files.
func Compare(c *cfg.Root, dir, id string) (*Comparison, error) {
	orig, err := findSource(dir, id)
	if err != nil {
		return nil, err
	}
	cleanPath := filepath.Join(dir, c.Output.DirName, id+"_clean.wav")

	o, err := loadTrack(orig)
	if err != nil {
		return nil, err
	}
	cl, err := loadTrack(cleanPath)
	if err != nil {
		return nil, err
	}
	return &Comparison{Source: id, Original: *o, Clean: *cl}, nil
}

// findSource applies the same discovery rules as loadDir, so an id that a
// run would reject as ambiguous is rejected here too.
func findSource(dir, id string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("compare %s: %w", dir, err)
	}
	var found string
	for _, e := range entries {
		if e.IsDir() || !audio.IsWAV(e.Name()) || audio.ID(e.Name()) != id {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: %q from %s and %s", ErrDuplicateSource, id, found, e.Name())
		}
		found = e.Name()
	}
	if found == "" {
		return "", fmt.Errorf("compare: no recording %q in %s", id, dir)
	}
	return filepath.Join(dir, found), nil
}

func loadTrack(path string) (*Track, error) {
	src, err := audio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", path, err)
	}
	return &Track{
		Path:       path,
		Samples:    src.Samples,
		SampleRate: src.SampleRate,
		Stats:      audio.Describe(src.Samples, src.SampleRate),
	}, nil
}
