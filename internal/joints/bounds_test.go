package joints

import "testing"

func TestEvaluate_WithinBoundsIsZero(t *testing.T) {
	o := DefaultOptions()
	if f := Evaluate(0, 0, -1, 1, o); f != 0 {
		t.Errorf("expected 0 force within bounds, got %v", f)
	}
}

func TestEvaluate_AboveMaxPushesBack(t *testing.T) {
	o := DefaultOptions()
	f := Evaluate(1.5, 0, -1, 1, o)
	if f >= 0 {
		t.Errorf("expected negative (restoring) force above qmax, got %v", f)
	}
}

func TestEvaluate_BelowMinPushesForward(t *testing.T) {
	o := DefaultOptions()
	f := Evaluate(-1.5, 0, -1, 1, o)
	if f <= 0 {
		t.Errorf("expected positive (restoring) force below qmin, got %v", f)
	}
}

func TestEvaluate_DampingOpposesOutwardVelocity(t *testing.T) {
	o := DefaultOptions()
	fStill := Evaluate(1.5, 0, -1, 1, o)
	fOutward := Evaluate(1.5, 1, -1, 1, o)
	if fOutward >= fStill {
		t.Errorf("outward velocity should increase the restoring magnitude: %v vs %v", fOutward, fStill)
	}
}

func TestEvaluateAll_MatchesPerJoint(t *testing.T) {
	o := DefaultOptions()
	qs := []float64{1.5, 0, -1.5}
	vs := []float64{0, 0, 0}
	qmins := []float64{-1, -1, -1}
	qmaxs := []float64{1, 1, 1}

	got := EvaluateAll(qs, vs, qmins, qmaxs, o)
	for i := range qs {
		want := Evaluate(qs[i], vs[i], qmins[i], qmaxs[i], o)
		if got[i] != want {
			t.Errorf("index %d: got %v want %v", i, got[i], want)
		}
	}
}

func TestOptions_ValidateRejectsZeroEps(t *testing.T) {
	o := DefaultOptions()
	o.BoundTransitionEps = 0
	if err := o.Validate(); err == nil {
		t.Error("expected error for zero boundTransitionEps")
	}
}

func TestOptions_ValidateAcceptsDefaults(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options should validate, got %v", err)
	}
}
