package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/heartclean/audio"
	"github.com/maastricht-university/heartclean/clients"
	cfg "github.com/maastricht-university/heartclean/config"
)

type Pipeline struct {
	cfg      *cfg.Root
	model    Model
	log      logrus.FieldLogger
	progress io.Writer
}

type Option func(*Pipeline)

// WithModel replaces the HTTP model configured under services.model.
func WithModel(m Model) Option { return func(p *Pipeline) { p.model = m } }

func WithLogger(l logrus.FieldLogger) Option { return func(p *Pipeline) { p.log = l } }

// WithProgress draws a progress bar for the write stage on w.
func WithProgress(w io.Writer) Option { return func(p *Pipeline) { p.progress = w } }

func NewPipeline(c *cfg.Root, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: c, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(p)
	}
	if p.model == nil {
		m := c.Services.Model
		p.model = clients.RemoteModel{
			HTTP:      clients.NewHTTP(cfg.DurSeconds(m.Timeout)),
			URL:       m.URL,
			ModelPath: m.ModelPath,
		}
	}
	return p
}

// Run cleans every wav file in dir and writes the results under
// dir/<output.dir_name>. Nothing is written unless loading, inference and
// reconstruction all succeed.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	size := p.cfg.Windowing.Size
	runID := uuid.NewString()
	log := p.log.WithField("run", runID)

	sources, err := loadDir(dir)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, OutDir: filepath.Join(dir, p.cfg.Output.DirName)}
	chunks := make(map[string][]Chunk, len(sources))
	for _, s := range sources {
		res.Sources = append(res.Sources, s.ID)
		cs := Chunks(s.ID, s.Samples, size)
		log.WithFields(logrus.Fields{
			"source":      s.ID,
			"samples":     len(s.Samples),
			"sample_rate": s.SampleRate,
			"chunks":      len(cs),
		}).Debug("windowed")
		if len(cs) == 0 {
			log.WithField("source", s.ID).Info("shorter than one window, skipped")
			continue
		}
		chunks[s.ID] = cs
	}

	batch := Assemble(chunks, size)
	res.BatchSize = batch.Len()
	log.WithFields(logrus.Fields{"batch": batch.Len(), "window": size}).Info("batch assembled")

	var cleaned [][]float32
	if batch.Len() > 0 {
		start := time.Now()
		cleaned, err = p.model.Predict(ctx, batch.Windows)
		if err != nil {
			return nil, fmt.Errorf("predict: %w", err)
		}
		if err := checkShape(batch, cleaned); err != nil {
			return nil, err
		}
		log.WithField("took", time.Since(start).Round(time.Millisecond)).Info("inference done")
	} else {
		log.Warn("no complete windows, nothing to clean")
	}

	group := Regroup(batch.Refs)
	outputs, err := Reconstruct(cleaned, group, ReconstructOptions{
		Mode:       p.cfg.Output.Mode,
		Size:       size,
		SampleRate: p.cfg.Audio.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs

	res.Files, err = writeOutputs(res.OutDir, outputs, p.cfg.Audio.BitDepth, p.progress)
	if err != nil {
		return res, err
	}
	if p.cfg.Output.Manifest {
		bundle := PersistBundle{
			RunID:       runID,
			InputDir:    dir,
			GeneratedAt: time.Now(),
			WindowSize:  size,
			Mode:        p.cfg.Output.Mode,
			SampleRate:  p.cfg.Audio.SampleRate,
			Sources:     summarize(outputs, res.Files, size),
		}
		if err := writeJSON(filepath.Join(res.OutDir, manifestName), bundle); err != nil {
			return res, fmt.Errorf("manifest: %w", err)
		}
	}

	log.WithFields(logrus.Fields{"files": len(res.Files), "out": res.OutDir}).Info("outputs written")
	return res, nil
}

func checkShape(b Batch, cleaned [][]float32) error {
	if len(cleaned) != b.Len() {
		return fmt.Errorf("%w: got %d windows, sent %d", ErrShapeMismatch, len(cleaned), b.Len())
	}
	for i, w := range cleaned {
		if len(w) != b.Size {
			return fmt.Errorf("%w: window %d has %d samples, want %d", ErrShapeMismatch, i, len(w), b.Size)
		}
	}
	return nil
}

// loadDir decodes every wav file directly inside dir, ordered by source id.
// Any unreadable file aborts the load.
func loadDir(dir string) ([]*audio.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	var out []*audio.Source
	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !audio.IsWAV(e.Name()) {
			continue
		}
		id := audio.ID(e.Name())
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %q from %s and %s", ErrDuplicateSource, id, prev, e.Name())
		}
		seen[id] = e.Name()

		path := filepath.Join(dir, e.Name())
		src, err := audio.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
