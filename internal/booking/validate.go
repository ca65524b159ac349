// Package booking checks a prospective booking against a client's
// membership and confirms it against the ledger.
package booking

import (
	"time"

	"courtdesk/internal/membership"
	"courtdesk/internal/schedule"
)

// Reason says why a membership cannot cover a booking.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoMembership Reason = "no_membership"
	ReasonExpired      Reason = "expired"
	ReasonSuspended    Reason = "suspended"
	ReasonNoSessions   Reason = "no_sessions_left"
	ReasonExcludedDate Reason = "excluded_date"
	ReasonWrongDay     Reason = "wrong_day"
	ReasonWrongTime    Reason = "wrong_time"
)

var reasonMessages = map[Reason]string{
	ReasonNoMembership: "client has no active membership",
	ReasonExpired:      "membership has expired",
	ReasonSuspended:    "membership is suspended",
	ReasonNoSessions:   "no sessions left",
	ReasonExcludedDate: "membership is not valid on this date",
	ReasonWrongDay:     "membership is not valid on the selected day",
	ReasonWrongTime:    "membership is not valid at the selected time",
}

// TimeRestricted reports whether r comes from the membership's time windows.
func (r Reason) TimeRestricted() bool {
	return r == ReasonExcludedDate || r == ReasonWrongDay || r == ReasonWrongTime
}

// Validation is the outcome of checking a membership against a booking slot.
// Rejections are data, not errors.
type Validation struct {
	IsValid     bool     `json:"isValid"`
	Reason      Reason   `json:"reason,omitempty"`
	Message     string   `json:"message,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func reject(r Reason, suggestions []string) Validation {
	return Validation{Reason: r, Message: reasonMessages[r], Suggestions: suggestions}
}

// Validate checks, in order: stored status, live expiry, session balance,
// excluded dates, weekday and time of day. The first failure wins. now is
// the club-local current time.
func Validate(m *membership.ClientMembership, date schedule.Date, clock schedule.Clock, now time.Time) Validation {
	switch membership.CheckUsable(m, now) {
	case membership.BlockNoMembership:
		return reject(ReasonNoMembership, nil)
	case membership.BlockSuspended:
		return reject(ReasonSuspended, nil)
	case membership.BlockInactive, membership.BlockExpired:
		return reject(ReasonExpired, nil)
	case membership.BlockNoSessions:
		return reject(ReasonNoSessions, nil)
	}

	r := m.TimeRestrictions
	switch {
	case r.Excludes(date):
		return reject(ReasonExcludedDate, nil)
	case !r.AllowsWeekday(date.Weekday()):
		return reject(ReasonWrongDay, r.DayNames())
	case !r.AllowsClock(clock):
		return reject(ReasonWrongTime, r.SlotRanges())
	}
	return Validation{IsValid: true}
}

// SuggestTimes keeps the candidates the membership's time windows allow on
// date. It is empty when the date itself is disallowed.
func SuggestTimes(m *membership.ClientMembership, date schedule.Date, candidates []schedule.Clock) []schedule.Clock {
	out := make([]schedule.Clock, 0, len(candidates))
	if m == nil {
		return out
	}
	r := m.TimeRestrictions
	if r.Excludes(date) || !r.AllowsWeekday(date.Weekday()) {
		return out
	}
	for _, c := range candidates {
		if r.AllowsClock(c) {
			out = append(out, c)
		}
	}
	return out
}
