package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	b := New(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	b := New(-1)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for negative input", b.Len())
	}
}

func TestFromSliceSharesMemory(t *testing.T) {
	s := []float64{1, 2, 3}
	b := FromSlice(s)
	b.Samples()[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSlice should share underlying memory")
	}
}

func TestWindowClamps(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4})
	tests := []struct {
		name        string
		first, n    int
		wantLen     int
		wantFirstAt float64
	}{
		{name: "inside", first: 1, n: 2, wantLen: 2, wantFirstAt: 2},
		{name: "tail", first: 2, n: 10, wantLen: 2, wantFirstAt: 3},
		{name: "negative first", first: -3, n: 1, wantLen: 1, wantFirstAt: 1},
		{name: "past end", first: 9, n: 1, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := b.Window(tt.first, tt.n)
			if len(w) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(w), tt.wantLen)
			}
			if tt.wantLen > 0 && w[0] != tt.wantFirstAt {
				t.Fatalf("w[0] = %v, want %v", w[0], tt.wantFirstAt)
			}
		})
	}
}

func TestResizeReuseClearsStaleData(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4})
	b.Resize(2)
	b.Resize(4)
	if b.Samples()[2] != 0 || b.Samples()[3] != 0 {
		t.Fatalf("stale data visible after Resize: %v", b.Samples())
	}
	if b.Samples()[0] != 1 || b.Samples()[1] != 2 {
		t.Fatal("Resize did not preserve existing data")
	}
}

func TestResizeNegative(t *testing.T) {
	b := New(4)
	b.Resize(-1)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestZeroRangeClamps(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3})
	b.ZeroRange(-5, 100)
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0", i, v)
		}
	}
}

func TestCopyFromPads(t *testing.T) {
	b := FromSlice([]float64{9, 9, 9, 9})
	n := b.CopyFrom([]float64{1, 2})
	if n != 2 {
		t.Fatalf("CopyFrom() = %d, want 2", n)
	}
	want := []float64{1, 2, 0, 0}
	for i, v := range b.Samples() {
		if v != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, v, want[i])
		}
	}
}

func TestCopyIsDeep(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3})
	c := b.Copy()
	c.Samples()[0] = 99
	if b.Samples()[0] == 99 {
		t.Fatal("Copy should not share memory")
	}
}
