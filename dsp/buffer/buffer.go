package buffer

// Buffer is one fixed-size block of an audio signal stream.
// Kernels operate on raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the number of frames in the block.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Window returns the sub-slice [first, first+n) clamped to the block.
func (b *Buffer) Window(first, n int) []float64 {
	if first < 0 {
		first = 0
	}
	if first > len(b.samples) {
		first = len(b.samples)
	}
	end := first + n
	if n < 0 || end > len(b.samples) {
		end = len(b.samples)
	}
	return b.samples[first:end]
}

// Resize sets the length to n, reusing existing capacity when possible.
// Newly exposed elements are zeroed.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}
	for i := oldLen; i < n; i++ {
		b.samples[i] = 0
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// ZeroRange sets samples in [start, end) to 0.
// Indices are clamped to valid bounds.
func (b *Buffer) ZeroRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(b.samples) {
		end = len(b.samples)
	}
	for i := start; i < end; i++ {
		b.samples[i] = 0
	}
}

// CopyFrom overwrites the block with src, zero-padding when src is shorter.
// It returns the number of copied frames.
func (b *Buffer) CopyFrom(src []float64) int {
	n := copy(b.samples, src)
	b.ZeroRange(n, len(b.samples))
	return n
}

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	s := make([]float64, len(b.samples))
	copy(s, b.samples)
	return &Buffer{samples: s}
}
