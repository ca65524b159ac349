// internal/schedule/restrictions.go
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TimeSlot is a half-open window [Start, End) within a day.
type TimeSlot struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Contains reports whether c falls in the slot: Start <= c < End.
func (s TimeSlot) Contains(c Clock) bool {
	return s.Start <= c && c < s.End
}

func (s TimeSlot) Validate() error {
	if !s.Start.Valid() || !s.End.Valid() {
		return fmt.Errorf("%w: slot %d-%d out of range", ErrInvalidClock, int(s.Start), int(s.End))
	}
	if s.Start >= s.End {
		return fmt.Errorf("%w: slot %s must start before it ends", ErrInvalidClock, s)
	}
	return nil
}

func (s TimeSlot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// TimeRestrictions limits when a membership benefit may be used. Every
// non-empty group must match; slots are alternatives. A nil value or an empty
// group places no restriction.
type TimeRestrictions struct {
	Weekdays      []Weekday  `json:"weekdays,omitempty"`
	TimeSlots     []TimeSlot `json:"timeSlots,omitempty"`
	ExcludedDates []Date     `json:"excludedDates,omitempty"`
}

// IsEmpty reports whether r restricts nothing.
func (r *TimeRestrictions) IsEmpty() bool {
	return r == nil || (len(r.Weekdays) == 0 && len(r.TimeSlots) == 0 && len(r.ExcludedDates) == 0)
}

func (r *TimeRestrictions) AllowsWeekday(d Weekday) bool {
	if r == nil || len(r.Weekdays) == 0 {
		return true
	}
	return slices.Contains(r.Weekdays, d)
}

func (r *TimeRestrictions) AllowsClock(c Clock) bool {
	if r == nil || len(r.TimeSlots) == 0 {
		return true
	}
	for _, s := range r.TimeSlots {
		if s.Contains(c) {
			return true
		}
	}
	return false
}

// Excludes reports whether d is one of the excluded dates.
func (r *TimeRestrictions) Excludes(d Date) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.ExcludedDates, d)
}

// AllowsAt checks a club-local date and time of day against every group.
func (r *TimeRestrictions) AllowsAt(d Date, c Clock) bool {
	return !r.Excludes(d) && r.AllowsWeekday(d.Weekday()) && r.AllowsClock(c)
}

// Allows checks t using its own location's calendar and wall clock.
func (r *TimeRestrictions) Allows(t time.Time) bool {
	return r.AllowsAt(DateOf(t), ClockOf(t))
}

func (r *TimeRestrictions) Validate() error {
	if r == nil {
		return nil
	}
	for _, d := range r.Weekdays {
		if !d.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
		}
	}
	for _, s := range r.TimeSlots {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, d := range r.ExcludedDates {
		if d.IsZero() {
			return fmt.Errorf("%w: empty excluded date", ErrInvalidDate)
		}
	}
	return nil
}

// Clone returns a deep copy so a membership snapshot never aliases its plan.
func (r *TimeRestrictions) Clone() *TimeRestrictions {
	if r == nil {
		return nil
	}
	return &TimeRestrictions{
		Weekdays:      slices.Clone(r.Weekdays),
		TimeSlots:     slices.Clone(r.TimeSlots),
		ExcludedDates: slices.Clone(r.ExcludedDates),
	}
}

// DayNames lists the allowed weekdays in Monday-first order.
func (r *TimeRestrictions) DayNames() []string {
	if r == nil {
		return nil
	}
	days := slices.Clone(r.Weekdays)
	slices.Sort(days)
	days = slices.Compact(days)
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String())
	}
	return names
}

// SlotRanges lists the allowed windows as "HH:MM-HH:MM".
func (r *TimeRestrictions) SlotRanges() []string {
	if r == nil {
		return nil
	}
	ranges := make([]string, 0, len(r.TimeSlots))
	for _, s := range r.TimeSlots {
		ranges = append(ranges, s.String())
	}
	return ranges
}

// Describe renders the restriction for display, e.g. "Mon-Fri • 09:00-17:00".
func (r *TimeRestrictions) Describe() string {
	if r.IsEmpty() {
		return ""
	}
	var parts []string
	if names := r.DayNames(); len(names) > 0 {
		switch strings.Join(names, ",") {
		case "Mon,Tue,Wed,Thu,Fri":
			parts = append(parts, "Mon-Fri")
		case "Sat,Sun":
			parts = append(parts, "Sat-Sun")
		default:
			parts = append(parts, strings.Join(names, ", "))
		}
	}
	if ranges := r.SlotRanges(); len(ranges) > 0 {
		parts = append(parts, strings.Join(ranges, ", "))
	}
	if n := len(r.ExcludedDates); n > 0 {
		parts = append(parts, fmt.Sprintf("except %d date(s)", n))
	}
	return strings.Join(parts, " • ")
}
