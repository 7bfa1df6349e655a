package metrics

import (
	"math"
	"testing"
)

func TestFluenceConstantPulse(t *testing.T) {
	times := []float64{0, 0.25, 0.5, 0.75, 1.0}
	control := []float64{2, 2, 2, 2, 2}

	got := Fluence(times, control)
	if math.Abs(got-4.0) > 1e-12 {
		t.Errorf("fluence of constant pulse = %v, want 4.0", got)
	}
}

func TestFluenceLengthMismatch(t *testing.T) {
	if got := Fluence([]float64{0, 1}, []float64{1}); got != 0 {
		t.Errorf("fluence with mismatched lengths = %v, want 0", got)
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]float64{0.5, -3.0, 1.5}); got != 3.0 {
		t.Errorf("peak = %v, want 3.0", got)
	}
	if got := Peak(nil); got != 0 {
		t.Errorf("peak of empty control = %v, want 0", got)
	}
}

func TestForControls(t *testing.T) {
	times := []float64{0, 0.5, 1.0}
	controls := [][]float64{
		{1, 1, 1},
		{0, 2, 0},
	}

	m := ForControls(times, controls)
	if len(m) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(m))
	}
	if math.Abs(m["fluence_0"]-1.0) > 1e-12 {
		t.Errorf("fluence_0 = %v, want 1.0", m["fluence_0"])
	}
	if m["peak_1"] != 2.0 {
		t.Errorf("peak_1 = %v, want 2.0", m["peak_1"])
	}
}
