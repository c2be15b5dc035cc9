package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Visualization ---
// The sidecar renders waveform and spectrogram panels for a recording and its
// cleaned output. It only reads what it is sent.
type Waveform struct {
	Samples    []float32 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}
type ComparisonReq struct {
	Title     string   `json:"title"`
	Original  Waveform `json:"original"`
	Clean     Waveform `json:"clean"`
	OutputDir string   `json:"output_dir,omitempty"`
}
type ComparisonResp struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (h *HTTP) GenerateComparison(ctx context.Context, url string, req ComparisonReq) (*ComparisonResp, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("viz comparison encode: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/generate-comparison", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := h.c.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("viz comparison %s: %s", resp.Status, string(body))
	}

	var out ComparisonResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("viz comparison decode: %w", err)
	}
	return &out, nil
}
