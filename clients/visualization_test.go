package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateComparison(t *testing.T) {
	var seen ComparisonReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-comparison" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(ComparisonResp{Status: "ok", Path: "/out/PHS.png"})
	}))
	defer srv.Close()

	req := ComparisonReq{
		Title:    `Waveform & spectrogram of "PHS"`,
		Original: Waveform{Samples: []float32{0.1, -0.1}, SampleRate: 4000},
		Clean:    Waveform{Samples: []float32{0.05}, SampleRate: 22050},
	}
	resp, err := NewHTTP(0).GenerateComparison(context.Background(), srv.URL, req)
	if err != nil {
		t.Fatalf("GenerateComparison failed: %v", err)
	}
	if resp.Path != "/out/PHS.png" {
		t.Errorf("Unexpected path %q", resp.Path)
	}
	if seen.Original.SampleRate != 4000 || seen.Clean.SampleRate != 22050 || len(seen.Original.Samples) != 2 {
		t.Errorf("Unexpected request %+v", seen)
	}
}

func TestGenerateComparisonError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewHTTP(0).GenerateComparison(context.Background(), srv.URL, ComparisonReq{}); err == nil {
		t.Error("Expected error")
	}
}
