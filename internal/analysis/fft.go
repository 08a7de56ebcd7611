package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the real FFT of
// data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of data sampled at sampleRate Hz, or 0 when there is none.
func DominantFrequency(data []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(removeMean(data))
	if len(ps) < 2 || sampleRate <= 0 {
		return 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0
	}
	return float64(best) * sampleRate / float64(len(data))
}

func removeMean(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// EstimateDecay fits ln|peak| = c - decay*t over the local extrema of a
// decaying oscillation and returns decay. It needs at least two extrema.
func EstimateDecay(times, values []float64) (float64, bool) {
	n := min(len(times), len(values))
	var xs, ys []float64
	for i := 1; i < n-1; i++ {
		a, b, c := math.Abs(values[i-1]), math.Abs(values[i]), math.Abs(values[i+1])
		if b > a && b >= c && b > 0 {
			xs = append(xs, times[i])
			ys = append(ys, math.Log(b))
		}
	}
	if len(xs) < 2 {
		return 0, false
	}

	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	k := float64(len(xs))
	den := k*sxx - sx*sx
	if den == 0 {
		return 0, false
	}
	slope := (k*sxy - sx*sy) / den
	return -slope, true
}
