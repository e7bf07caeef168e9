package utils

import "time"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// LoadLocation returns the named zone, falling back to UTC if it is unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ToLocal converts t into loc.
func ToLocal(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t.UTC()
	}
	return t.In(loc)
}

// SplitDateTime returns the calendar date and wall-clock time of t in loc.
func SplitDateTime(t time.Time, loc *time.Location) (string, string) {
	local := ToLocal(t, loc)
	return local.Format(DateLayout), local.Format(ClockLayout)
}

// HumanDateTime formats t in loc the way notification emails show it.
func HumanDateTime(t time.Time, loc *time.Location) string {
	return ToLocal(t, loc).Format("January 02, 2006 at 03:04 PM")
}
