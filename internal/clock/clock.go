package clock

import "time"

// DefaultTimezone is the civil timezone all relative date expressions
// resolve against. Every user of the service is assumed to speak in
// Korea Standard Time.
const DefaultTimezone = "Asia/Seoul"

// Clock supplies the anchor instant relative date expressions are
// resolved against. It exists as an interface so tests can pin time.
type Clock interface {
	Now() time.Time
}

// Wall is a Clock that reads the system wall clock in a fixed timezone.
type Wall struct {
	loc *time.Location
}

// NewWall creates a wall clock for the given IANA timezone name.
// An empty name selects DefaultTimezone.
func NewWall(timezone string) (*Wall, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Wall{loc: loc}, nil
}

// Now returns the current instant expressed in the fixed timezone.
// Downstream extraction logic treats this as a naive civil timestamp
// and never reasons about offsets.
func (w *Wall) Now() time.Time {
	return time.Now().In(w.loc)
}

// Location returns the fixed timezone.
func (w *Wall) Location() *time.Location {
	return w.loc
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant
}
