package clock

import (
	"testing"
	"time"
)

func TestWall_DefaultTimezone(t *testing.T) {
	t.Parallel()

	wall, err := NewWall("")
	if err != nil {
		t.Fatalf("NewWall returned error: %v", err)
	}
	if wall.Location().String() != DefaultTimezone {
		t.Errorf("Location = %s, want %s", wall.Location(), DefaultTimezone)
	}

	now := wall.Now()
	if now.Location().String() != DefaultTimezone {
		t.Errorf("Now().Location = %s, want %s", now.Location(), DefaultTimezone)
	}
	if time.Since(now) > time.Second {
		t.Errorf("Now() = %v, expected the current instant", now)
	}
}

func TestWall_InvalidTimezone(t *testing.T) {
	t.Parallel()

	if _, err := NewWall("Not/AZone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestFixed(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	clk := Fixed{Instant: instant}
	if !clk.Now().Equal(instant) {
		t.Errorf("Now() = %v, want %v", clk.Now(), instant)
	}
}
