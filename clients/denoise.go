package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Denoise (/predict) ---
// Tensors travel as [batch][window][1], the input shape of the model.
type PredictReq struct {
	ModelPath string        `json:"model_path"`
	Inputs    [][][]float32 `json:"inputs"`
}
type PredictResp struct {
	Outputs [][][]float32 `json:"outputs"`
}

func (h *HTTP) Predict(ctx context.Context, url string, req PredictReq) (*PredictResp, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("predict encode: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/predict", bytes.NewReader(b))
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
		return nil, fmt.Errorf("predict %s: %s", resp.Status, string(body))
	}

	var out PredictResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("predict decode: %w", err)
	}
	return &out, nil
}

// RemoteModel serves a saved model through a sidecar that loads ModelPath and
// runs one prediction per request.
type RemoteModel struct {
	HTTP      *HTTP
	URL       string
	ModelPath string
}

func (m RemoteModel) Predict(ctx context.Context, windows [][]float32) ([][]float32, error) {
	in := make([][][]float32, len(windows))
	for i, w := range windows {
		col := make([][]float32, len(w))
		for j, s := range w {
			col[j] = []float32{s}
		}
		in[i] = col
	}

	resp, err := m.HTTP.Predict(ctx, m.URL, PredictReq{ModelPath: m.ModelPath, Inputs: in})
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(resp.Outputs))
	for i, col := range resp.Outputs {
		w := make([]float32, len(col))
		for j, v := range col {
			if len(v) != 1 {
				return nil, fmt.Errorf("predict: output %d sample %d has %d channels, want 1", i, j, len(v))
			}
			w[j] = v[0]
		}
		out[i] = w
	}
	return out, nil
}

// Identity returns a copy of its input. It stands in for the model in dry runs.
type Identity struct{}

func (Identity) Predict(_ context.Context, windows [][]float32) ([][]float32, error) {
	out := make([][]float32, len(windows))
	for i, w := range windows {
		out[i] = append([]float32(nil), w...)
	}
	return out, nil
}
