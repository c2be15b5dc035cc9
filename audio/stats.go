package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const spectrumFrame = 2048

// Stats summarises one track for side-by-side comparison.
type Stats struct {
	Samples    int
	SampleRate int
	Duration   float64 // sec
	RMS        float64
	Peak       float64
	DominantHz float64
}

// Describe computes Stats for samples played back at sampleRate. The dominant
// frequency is the peak of the magnitude spectrum averaged over Hann-windowed
// frames; it is zero when the track is shorter than one frame.
func Describe(samples []float32, sampleRate int) Stats {
	st := Stats{Samples: len(samples), SampleRate: sampleRate}
	if len(samples) == 0 || sampleRate <= 0 {
		return st
	}
	st.Duration = float64(len(samples)) / float64(sampleRate)

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
		if a := math.Abs(v); a > st.Peak {
			st.Peak = a
		}
	}
	st.RMS = math.Sqrt(sum / float64(len(samples)))

	frames := len(samples) / spectrumFrame
	if frames == 0 {
		return st
	}
	fft := fourier.NewFFT(spectrumFrame)
	win := hann(spectrumFrame)
	buf := make([]float64, spectrumFrame)
	mag := make([]float64, spectrumFrame/2+1)
	var coeff []complex128
	for f := 0; f < frames; f++ {
		off := f * spectrumFrame
		for k := 0; k < spectrumFrame; k++ {
			buf[k] = float64(samples[off+k]) * win[k]
		}
		coeff = fft.Coefficients(coeff, buf)
		for k := range mag {
			mag[k] += cmplx.Abs(coeff[k])
		}
	}

	best := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	st.DominantHz = fft.Freq(best) * float64(sampleRate)
	return st
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
