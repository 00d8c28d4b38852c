package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-recall/dsp/core"
)

// ErrFormat is returned when a buffer does not match the requested format.
var ErrFormat = errors.New("synth: buffer does not match sample format")

// Sample is the set of Go types a Codec stores samples in.
type Sample interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64 | ~complex128
}

// Codec converts between normalized samples and a storage type.
type Codec[T Sample] struct {
	Format core.Format
	Decode func(T) float64
	Encode func(float64) T
}

var (
	S8 = Codec[int8]{
		Format: core.FormatS8,
		Decode: func(v int8) float64 { return float64(v) / math.MaxInt8 },
		Encode: func(x float64) int8 { return int8(quantize(x, math.MaxInt8, math.MinInt8, math.MaxInt8)) },
	}
	S16 = Codec[int16]{
		Format: core.FormatS16,
		Decode: func(v int16) float64 { return float64(v) / math.MaxInt16 },
		Encode: func(x float64) int16 { return int16(quantize(x, math.MaxInt16, math.MinInt16, math.MaxInt16)) },
	}
	S24 = Codec[int32]{
		Format: core.FormatS24,
		Decode: func(v int32) float64 { return float64(v) / maxInt24 },
		Encode: func(x float64) int32 { return int32(quantize(x, maxInt24, minInt24, maxInt24)) },
	}
	S32 = Codec[int32]{
		Format: core.FormatS32,
		Decode: func(v int32) float64 { return float64(v) / math.MaxInt32 },
		Encode: func(x float64) int32 { return int32(quantize(x, math.MaxInt32, math.MinInt32, math.MaxInt32)) },
	}
	S64 = Codec[int64]{
		Format: core.FormatS64,
		Decode: func(v int64) float64 { return float64(v) / math.MaxInt64 },
		Encode: func(x float64) int64 { return quantize(x, math.MaxInt64, math.MinInt64, math.MaxInt64) },
	}
	Float = Codec[float32]{
		Format: core.FormatFloat,
		Decode: func(v float32) float64 { return float64(v) },
		Encode: func(x float64) float32 { return float32(x) },
	}
	Double = Codec[float64]{
		Format: core.FormatDouble,
		Decode: func(v float64) float64 { return v },
		Encode: func(x float64) float64 { return x },
	}
	Complex = Codec[complex128]{
		Format: core.FormatComplex,
		Decode: func(v complex128) float64 { return real(v) },
		Encode: func(x float64) complex128 { return complex(x, 0) },
	}
)

const (
	maxInt24 = 1<<23 - 1
	minInt24 = -1 << 23
)

// quantize scales x by peak, rounds and saturates to [lo, hi].
func quantize(x, peak float64, lo, hi int64) int64 {
	if math.IsNaN(x) {
		return 0
	}
	v := math.Round(x * peak)
	if v >= float64(hi) {
		return hi
	}
	if v <= float64(lo) {
		return lo
	}
	return int64(v)
}

// Add mixes n frames of r into dst at the given stride. Writes past the end
// of dst are dropped but the generator still advances n frames.
func Add[T Sample](r *Raven, c Codec[T], dst []T, stride, n int) {
	if stride < 1 {
		stride = 1
	}
	for i := range n {
		v := r.Next()
		idx := i * stride
		if idx >= len(dst) {
			continue
		}
		dst[idx] = c.Encode(c.Decode(dst[idx]) + v)
	}
}

// Fill overwrites n strided frames of dst with r.
func Fill[T Sample](r *Raven, c Codec[T], dst []T, stride, n int) {
	if stride < 1 {
		stride = 1
	}
	for i := range n {
		v := r.Next()
		idx := i * stride
		if idx >= len(dst) {
			continue
		}
		dst[idx] = c.Encode(v)
	}
}

// Render mixes n frames of r into dst, which must be the Go slice type
// stored by format.
func Render(r *Raven, format core.Format, dst any, stride, n int) error {
	switch buf := dst.(type) {
	case []int8:
		if format == core.FormatS8 {
			Add(r, S8, buf, stride, n)
			return nil
		}
	case []int16:
		if format == core.FormatS16 {
			Add(r, S16, buf, stride, n)
			return nil
		}
	case []int32:
		switch format {
		case core.FormatS24:
			Add(r, S24, buf, stride, n)
			return nil
		case core.FormatS32:
			Add(r, S32, buf, stride, n)
			return nil
		}
	case []int64:
		if format == core.FormatS64 {
			Add(r, S64, buf, stride, n)
			return nil
		}
	case []float32:
		if format == core.FormatFloat {
			Add(r, Float, buf, stride, n)
			return nil
		}
	case []float64:
		if format == core.FormatDouble {
			Add(r, Double, buf, stride, n)
			return nil
		}
	case []complex128:
		if format == core.FormatComplex {
			Add(r, Complex, buf, stride, n)
			return nil
		}
	}
	return fmt.Errorf("%w: %s into %T", ErrFormat, format, dst)
}

// Mix adds n frames of r into float64 storage at the resolution of format:
// each sum is encoded and decoded through the format's codec, so dst holds
// exactly the values a stream of that format can represent.
func Mix(r *Raven, format core.Format, dst []float64, n int) error {
	switch format {
	case core.FormatS8:
		mixAs(r, S8, dst, n)
	case core.FormatS16:
		mixAs(r, S16, dst, n)
	case core.FormatS24:
		mixAs(r, S24, dst, n)
	case core.FormatS32:
		mixAs(r, S32, dst, n)
	case core.FormatS64:
		mixAs(r, S64, dst, n)
	case core.FormatFloat:
		mixAs(r, Float, dst, n)
	case core.FormatDouble:
		Add(r, Double, dst, 1, n)
	case core.FormatComplex:
		mixAs(r, Complex, dst, n)
	default:
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
	return nil
}

func mixAs[T Sample](r *Raven, c Codec[T], dst []float64, n int) {
	for i := range n {
		v := r.Next()
		if i < len(dst) {
			dst[i] = c.Decode(c.Encode(dst[i] + v))
		}
	}
}
