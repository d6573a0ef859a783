package lane

import (
	"math"
	"testing"
)

func TestBoundariesEvenSplit(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		replicates int
		equalN     bool
		wantLanes  int
	}{
		{"six replicates", 600, 6, false, 6},
		{"six replicates equal-N", 600, 6, true, 12},
		{"single replicate", 100, 1, false, 1},
		{"replicate count clamped to one", 100, 0, false, 1},
		{"width not divisible", 10, 3, false, 3},
		{"zero width", 0, 4, false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Boundaries(tt.width, tt.replicates, tt.equalN, nil)

			if len(b) != tt.wantLanes+1 {
				t.Fatalf("got %d boundaries, want %d", len(b), tt.wantLanes+1)
			}
			if b[0] != 0 {
				t.Errorf("first boundary: got %d, want 0", b[0])
			}
			if b[len(b)-1] != tt.width {
				t.Errorf("last boundary: got %d, want %d", b[len(b)-1], tt.width)
			}
			for i := 1; i < len(b); i++ {
				if b[i] < b[i-1] {
					t.Errorf("boundaries decrease at %d: %v", i, b)
				}
			}
		})
	}
}

func TestBoundariesTruncation(t *testing.T) {
	// 10 / 3 boundaries truncate, they do not round.
	got := Boundaries(10, 3, false, nil)
	want := []int{0, 3, 6, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBoundariesWithSeparators(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		separators []int
		want       []int
	}{
		{"sorted input", 100, []int{25, 50, 75}, []int{0, 25, 50, 75, 100}},
		{"unsorted input", 100, []int{75, 25, 50}, []int{0, 25, 50, 75, 100}},
		{"separator past right edge", 100, []int{50, 140}, []int{0, 50, 100, 100}},
		{"negative separator", 100, []int{-10, 60}, []int{0, 0, 60, 100}},
		{"single separator", 80, []int{40}, []int{0, 40, 80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Boundaries(tt.width, 6, false, tt.separators)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExpectedSeparators(t *testing.T) {
	tests := []struct {
		replicates int
		equalN     bool
		want       int
	}{
		{6, false, 5},
		{6, true, 11},
		{1, false, 0},
		{1, true, 1},
	}

	for _, tt := range tests {
		if got := ExpectedSeparators(tt.replicates, tt.equalN); got != tt.want {
			t.Errorf("ExpectedSeparators(%d, %v): got %d, want %d", tt.replicates, tt.equalN, got, tt.want)
		}
	}
}

func TestShouldRegenerate(t *testing.T) {
	tests := []struct {
		name       string
		separators int
		replicates int
		equalN     bool
		lastWidth  float64
		newWidth   float64
		want       bool
	}{
		{"no separators yet", 0, 6, false, 100, 100, true},
		{"count mismatch", 3, 6, false, 100, 100, true},
		{"settings switched to equal-N", 5, 6, true, 100, 100, true},
		{"width grew past tolerance", 5, 6, false, 100, 110, true},
		{"width shrank past tolerance", 5, 6, false, 120, 100, true},
		{"small resize keeps manual positions", 5, 6, false, 98, 100, false},
		{"unchanged", 5, 6, false, 100, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRegenerate(tt.separators, tt.replicates, tt.equalN, tt.lastWidth, tt.newWidth)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvenSeparators(t *testing.T) {
	tests := []struct {
		name       string
		left       float64
		width      float64
		replicates int
		equalN     bool
		want       []float64
	}{
		{"three replicates", 10, 90, 3, false, []float64{40, 70}},
		{"four replicates", 10, 90, 4, false, []float64{32.5, 55, 77.5}},
		{"two replicates equal-N", 10, 80, 2, true, []float64{30, 50, 70}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvenSeparators(tt.left, tt.width, tt.replicates, tt.equalN)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
			if len(got) != ExpectedSeparators(tt.replicates, tt.equalN) {
				t.Errorf("separator count %d does not match expected %d",
					len(got), ExpectedSeparators(tt.replicates, tt.equalN))
			}
		})
	}

	if EvenSeparators(0, 100, 1, false) != nil {
		t.Error("one replicate needs no separators")
	}
}
