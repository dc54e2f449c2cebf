package retry

import (
	"testing"
	"time"
)

func TestDelayFixed(t *testing.T) {
	p := NewPolicy(BackoffFixed, 2*time.Second, 10*time.Second, 3)
	for attempt := 1; attempt <= 3; attempt++ {
		if d := p.Delay(attempt); d != 2*time.Second {
			t.Errorf("fixed attempt %d: expected 2s, got %s", attempt, d)
		}
	}
}

func TestDelayLinearWithCap(t *testing.T) {
	p := NewPolicy(BackoffLinear, time.Second, 3*time.Second, 5)
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if d := p.Delay(i + 1); d != w {
			t.Errorf("linear attempt %d: expected %s, got %s", i+1, w, d)
		}
	}
}

func TestDelayExponentialWithCap(t *testing.T) {
	p := NewPolicy(BackoffExponential, time.Second, 5*time.Second, 5)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if d := p.Delay(i + 1); d != w {
			t.Errorf("exponential attempt %d: expected %s, got %s", i+1, w, d)
		}
	}
}

func TestDelayZeroAttempt(t *testing.T) {
	p := DefaultPolicy()
	if d := p.Delay(0); d != 0 {
		t.Errorf("expected zero delay for attempt 0, got %s", d)
	}
}

func TestNewPolicyUnknownModeKeepsDefault(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	def := DefaultPolicy()
	if p.Mode != def.Mode || p.Initial != def.Initial || p.Max != def.Max || p.MaxRetries != def.MaxRetries {
		t.Errorf("expected defaults for invalid inputs, got %s", p)
	}
}

func TestNewPolicyInitialClampedToMax(t *testing.T) {
	p := NewPolicy(BackoffFixed, 10*time.Second, 2*time.Second, 1)
	if p.Initial != 2*time.Second {
		t.Errorf("expected initial clamped to max, got %s", p.Initial)
	}
}
