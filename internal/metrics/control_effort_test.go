package metrics

import (
	"testing"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

func TestControlEffort_MeanAbsolute(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{3, -4}, 0)
	m.Observe(nil, dynamo.Control{1, -1}, 1)
	want := (7.0 + 2.0) / 2
	if got := m.Value(); got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestControlEffort_ZeroWithNoSamples(t *testing.T) {
	m := NewControlEffort()
	if m.Value() != 0 {
		t.Error("expected zero effort with no samples")
	}
}

func TestControlEffort_Reset(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{5}, 0)
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}
