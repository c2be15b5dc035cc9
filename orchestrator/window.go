package orchestrator

import "sort"

// Window cuts samples into consecutive, non-overlapping windows of exactly
// size samples starting at offset 0. A trailing remainder shorter than size is
// dropped, so input shorter than one window yields nil. The returned windows
// are copies.
func Window(samples []float32, size int) [][]float32 {
	if size <= 0 {
		return nil
	}
	n := len(samples) / size
	if n == 0 {
		return nil
	}
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		w := make([]float32, size)
		copy(w, samples[i*size:(i+1)*size])
		out[i] = w
	}
	return out
}

// Chunks windows one source and tags each window with its position.
func Chunks(source string, samples []float32, size int) []Chunk {
	wins := Window(samples, size)
	out := make([]Chunk, len(wins))
	for i, w := range wins {
		out[i] = Chunk{Source: source, Index: i, Samples: w}
	}
	return out
}

// Assemble concatenates the chunks of every source into one batch. Sources
// are visited in byte-wise order of their ids and chunks in list order, so
// the result depends only on the contents of chunks, never on map order.
func Assemble(chunks map[string][]Chunk, size int) Batch {
	ids := make([]string, 0, len(chunks))
	total := 0
	for id, cs := range chunks {
		ids = append(ids, id)
		total += len(cs)
	}
	sort.Strings(ids)

	b := Batch{
		Windows: make([][]float32, 0, total),
		Refs:    make([]Ref, 0, total),
		Size:    size,
	}
	for _, id := range ids {
		for _, c := range chunks[id] {
			b.Windows = append(b.Windows, c.Samples)
			b.Refs = append(b.Refs, Ref{Source: id, Index: c.Index})
		}
	}
	return b
}
