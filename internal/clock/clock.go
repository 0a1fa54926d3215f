package clock

import "time"

// BusinessTimezone is the company's operating timezone. Every date-only
// comparison in the engine is normalized through it, never through raw UTC.
const BusinessTimezone = "America/Guayaquil"

// Clock supplies "now" in business time. Injected everywhere a date decision
// is made so tests can pin "today".
type Clock interface {
	Now() time.Time
	Today() time.Time
	Location() *time.Location
}

type businessClock struct {
	loc *time.Location
}

// NewBusinessClock returns a Clock fixed to the business timezone.
func NewBusinessClock() (Clock, error) {
	loc, err := time.LoadLocation(BusinessTimezone)
	if err != nil {
		return nil, err
	}
	return &businessClock{loc: loc}, nil
}

func (c *businessClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *businessClock) Today() time.Time {
	return Midnight(c.Now())
}

func (c *businessClock) Location() *time.Location {
	return c.loc
}

// FixedClock is a Clock pinned to a single instant, for tests.
type FixedClock struct {
	Current time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Current
}

func (c *FixedClock) Today() time.Time {
	return Midnight(c.Current)
}

func (c *FixedClock) Location() *time.Location {
	return c.Current.Location()
}

// Midnight truncates t to the start of its day, keeping the location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day once both are
// viewed in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
