package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)

	if d := clock.Since(past); d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestRealClock_NewTicker(t *testing.T) {
	clock := RealClock{}
	ticker := clock.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Error("ticker did not fire")
	}
}

func TestMockClock_Advance(t *testing.T) {
	launch := time.Date(2008, 6, 11, 16, 5, 0, 0, time.UTC)
	clock := NewMockClock(launch)
	if !clock.Now().Equal(launch) {
		t.Fatalf("got %v, want %v", clock.Now(), launch)
	}

	clock.Advance(90 * time.Minute)
	if d := clock.Since(launch); d != 90*time.Minute {
		t.Errorf("Since() = %v, want 90m", d)
	}
}

func TestMockClock_Sleep(t *testing.T) {
	clock := NewMockClock(time.Now())
	clock.Sleep(10 * time.Millisecond)
	clock.Sleep(20 * time.Millisecond)
	sleeps := clock.Sleeps()

	if len(sleeps) != 2 {
		t.Fatalf("got %d sleeps, want 2", len(sleeps))
	}
	if sleeps[0] != 10*time.Millisecond || sleeps[1] != 20*time.Millisecond {
		t.Errorf("sleeps = %v, want [10ms 20ms]", sleeps)
	}

	// The copy is detached from the clock.
	sleeps[0] = 0
	if clock.Sleeps()[0] != 10*time.Millisecond {
		t.Error("Sleeps() returned shared storage")
	}
}

func TestMockClock_Ticker(t *testing.T) {
	start := time.Date(2008, 6, 11, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ticker := clock.NewTicker(10 * time.Second)

	select {
	case <-ticker.C():
		t.Fatal("ticker fired too early")
	default:
	}

	clock.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("ticker fired before its interval")
	default:
	}

	clock.Advance(5 * time.Second)
	select {
	case now := <-ticker.C():
		if !now.Equal(start.Add(10 * time.Second)) {
			t.Errorf("tick at %v, want %v", now, start.Add(10*time.Second))
		}
	default:
		t.Fatal("ticker did not fire after first interval")
	}

	clock.Advance(10 * time.Second)
	select {
	case <-ticker.C():
	default:
		t.Error("ticker did not fire after second interval")
	}
}

func TestMockClock_Ticker_Stop(t *testing.T) {
	clock := NewMockClock(time.Now())
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()
	clock.Advance(5 * time.Second)

	select {
	case <-ticker.C():
		t.Error("stopped ticker should not tick")
	default:
	}
}
