package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/maastricht-university/heartclean/audio"
)

const manifestName = "manifest.json"

type PersistBundle struct {
	RunID       string          `json:"run_id"`
	InputDir    string          `json:"input_dir"`
	GeneratedAt time.Time       `json:"generated_at"`
	WindowSize  int             `json:"window_size"`
	Mode        string          `json:"mode"`
	SampleRate  int             `json:"sample_rate"`
	Sources     []SourceSummary `json:"sources"`
}

type SourceSummary struct {
	ID      string   `json:"id"`
	Chunks  int      `json:"chunks"`
	Samples int      `json:"samples"`
	Files   []string `json:"files"`
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutputs creates outDir if needed and writes one wav per output, in
// order. Files written before a failure are left in place.
func writeOutputs(outDir string, outputs []Output, bitDepth int, progress io.Writer) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var bar *mpb.Bar
	var p *mpb.Progress
	if progress != nil && len(outputs) > 0 {
		p = mpb.New(mpb.WithOutput(progress), mpb.WithWidth(64))
		bar = p.AddBar(int64(len(outputs)),
			mpb.PrependDecorators(
				decor.Name("Writing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	files := make([]string, 0, len(outputs))
	var err error
	for _, o := range outputs {
		path := filepath.Join(outDir, o.Name+".wav")
		if err = audio.Write(path, o.Samples, o.SampleRate, bitDepth); err != nil {
			err = fmt.Errorf("write %s: %w", path, err)
			break
		}
		files = append(files, path)
		if bar != nil {
			bar.Increment()
		}
	}
	if p != nil {
		if err != nil {
			bar.Abort(false)
		}
		p.Wait()
	}
	return files, err
}

func summarize(outputs []Output, files []string, size int) []SourceSummary {
	var out []SourceSummary
	at := map[string]int{}
	for i, o := range outputs {
		j, ok := at[o.Source]
		if !ok {
			j = len(out)
			at[o.Source] = j
			out = append(out, SourceSummary{ID: o.Source})
		}
		s := &out[j]
		s.Samples += len(o.Samples)
		s.Chunks = s.Samples / size
		if i < len(files) {
			s.Files = append(s.Files, filepath.Base(files[i]))
		}
	}
	return out
}
