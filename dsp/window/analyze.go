package window

// Analysis holds the gain properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the amplitude a bin-centred tone keeps.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
}

// Analyze computes the gain properties of coeffs.
func Analyze(coeffs []float64) Analysis {
	if len(coeffs) == 0 {
		return Analysis{}
	}
	sum, sumSq := 0.0, 0.0
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}
	if sum == 0 {
		return Analysis{}
	}
	n := float64(len(coeffs))
	return Analysis{
		CoherentGain: sum / n,
		ENBW:         n * sumSq / (sum * sum),
	}
}
