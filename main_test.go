package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maastricht-university/heartclean/audio"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCleanDryRunAndCompare(t *testing.T) {
	dir := t.TempDir()
	samples := make([]float32, 5000)
	for i := range samples {
		samples[i] = float32(i%200-100) / 128
	}
	if err := audio.Write(filepath.Join(dir, "PHS.wav"), samples, 4000, 16); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "clean", dir, "--dry-run", "--window", "1000", "--log-level", "warn")
	if err != nil {
		t.Fatalf("clean failed: %v\n%s", err, out)
	}
	clean := filepath.Join(dir, "clean", "PHS_clean.wav")
	if !strings.Contains(out, clean) {
		t.Errorf("Expected %s in output, got %q", clean, out)
	}
	got, err := audio.Load(clean)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Samples) != 5000 {
		t.Errorf("Expected 5000 samples, got %d", len(got.Samples))
	}

	out, err = runCLI(t, "compare", dir, "PHS", "--log-level", "warn")
	if err != nil {
		t.Fatalf("compare failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "original") || !strings.Contains(out, "22050 Hz") {
		t.Errorf("Unexpected compare output %q", out)
	}
}

func TestCleanPerChunkMode(t *testing.T) {
	dir := t.TempDir()
	if err := audio.Write(filepath.Join(dir, "a.wav"), make([]float32, 1600), 22050, 16); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "clean", dir, "--dry-run", "--mode", "per_chunk", "--window", "800", "--log-level", "error")
	if err != nil {
		t.Fatalf("clean failed: %v\n%s", err, out)
	}
	for _, name := range []string{"a_000.wav", "a_001.wav"} {
		if _, err := os.Stat(filepath.Join(dir, "clean", name)); err != nil {
			t.Errorf("Missing %s: %v", name, err)
		}
	}
}

func TestCleanRejectsZeroWindow(t *testing.T) {
	if _, err := runCLI(t, "clean", t.TempDir(), "--dry-run", "--window", "0"); err == nil {
		t.Error("Expected error for zero window")
	}
}

func TestCleanFailureReportedOnce(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	out, err := runCLI(t, "clean", missing, "--dry-run")
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if n := strings.Count(out, err.Error()); n != 1 {
		t.Errorf("Expected the error once in output, got %d times:\n%s", n, out)
	}
}

func TestCompareNeedsID(t *testing.T) {
	if _, err := runCLI(t, "compare", t.TempDir()); err == nil {
		t.Error("Expected argument error")
	}
}
