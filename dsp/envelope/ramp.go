package envelope

// Ratio returns the slope of the line through (x0, y0) and (x1, y1).
// A zero-length segment has ratio 1.
func Ratio(x0, y0, x1, y1 float64) float64 {
	if x1 == x0 {
		return 1
	}
	return (y1 - y0) / (x1 - x0)
}

// VolumeAt evaluates a ramp starting at y0 on frame startX at frame currentX.
func VolumeAt(y0, ratio float64, startX, currentX int) float64 {
	if currentX == startX {
		return y0
	}
	return y0 + ratio*float64(currentX-startX)
}

// Ramp fills dst with the gain of a segment starting at startX with level
// y0, for the frames beginning at firstX.
func Ramp(dst []float64, y0, ratio float64, startX, firstX int) {
	for i := range dst {
		dst[i] = VolumeAt(y0, ratio, startX, firstX+i)
	}
}
