package core

// Format identifies the sample representation of an audio signal stream.
type Format int

const (
	FormatS8 Format = iota + 1
	FormatS16
	FormatS24
	FormatS32
	FormatS64
	FormatFloat
	FormatDouble
	FormatComplex
)

var formatNames = map[Format]string{
	FormatS8:      "s8",
	FormatS16:     "s16",
	FormatS24:     "s24",
	FormatS32:     "s32",
	FormatS64:     "s64",
	FormatFloat:   "float",
	FormatDouble:  "double",
	FormatComplex: "complex",
}

// Valid reports whether f names a known format.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat returns the format for a name produced by Format.String.
func ParseFormat(name string) (Format, bool) {
	for f, n := range formatNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// PeakValue returns the full-scale value of integer formats and 1 otherwise.
func (f Format) PeakValue() float64 {
	switch f {
	case FormatS8:
		return 127
	case FormatS16:
		return 32767
	case FormatS24:
		return 8388607
	case FormatS32:
		return 2147483647
	case FormatS64:
		return 9223372036854775807
	default:
		return 1
	}
}
