package core

// EnsureLen returns buf resliced to n, allocating only when its capacity is short.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// Zero clears buf.
func Zero(buf []float64) {
	clear(buf)
}

// AddAt sums src into dst starting at frame at, growing dst with silence
// when src reaches past its end. Negative at is treated as 0.
func AddAt(dst []float64, at int, src []float64) []float64 {
	at = max(at, 0)
	if need := at + len(src); need > len(dst) {
		dst = append(dst, make([]float64, need-len(dst))...)
	}
	for i, v := range src {
		dst[at+i] += v
	}
	return dst
}
