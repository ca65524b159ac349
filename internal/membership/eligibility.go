package membership

import (
	"time"

	"courtdesk/internal/schedule"
)

// IsEligible reports whether the membership's time restrictions allow a
// booking at t. t must already be in the club's location. It does not look
// at status, expiry or balance.
func IsEligible(m *ClientMembership, t time.Time) bool {
	if m == nil {
		return false
	}
	return m.TimeRestrictions.Allows(t)
}

// IsEligibleAt is IsEligible for a club-local date and time of day.
func IsEligibleAt(m *ClientMembership, d schedule.Date, c schedule.Clock) bool {
	if m == nil {
		return false
	}
	return m.TimeRestrictions.AllowsAt(d, c)
}

// IsExpired reports whether the membership's expiry date has started at now.
// The expiry date is read in now's location.
func IsExpired(m *ClientMembership, now time.Time) bool {
	return m.ExpiresDate.Start(now.Location()).Before(now)
}

// Blocker names the first reason a membership cannot be used regardless of
// the booking time.
type Blocker string

const (
	BlockNone         Blocker = ""
	BlockNoMembership Blocker = "no_membership"
	BlockSuspended    Blocker = "suspended"
	BlockInactive     Blocker = "inactive"
	BlockExpired      Blocker = "expired"
	BlockNoSessions   Blocker = "no_sessions_left"
)

// CheckUsable applies the standing gates in order: stored status, live
// expiry, then session balance.
func CheckUsable(m *ClientMembership, now time.Time) Blocker {
	switch {
	case m == nil:
		return BlockNoMembership
	case m.Status == StatusSuspended:
		return BlockSuspended
	case m.Status != StatusActive:
		return BlockInactive
	case IsExpired(m, now):
		return BlockExpired
	case m.IsSessionBased() && m.Remaining() <= 0:
		return BlockNoSessions
	}
	return BlockNone
}

// IsCurrentlyUsable reports whether m can be applied to some booking at now.
func IsCurrentlyUsable(m *ClientMembership, now time.Time) bool {
	return CheckUsable(m, now) == BlockNone
}

// Usability is the coarse state shown next to a membership.
type Usability string

const (
	UsabilityNone          Usability = "none"
	UsabilitySuspended     Usability = "suspended"
	UsabilityUnusable      Usability = "unusable"
	UsabilityRestrictedNow Usability = "restricted_now"
	UsabilityUsable        Usability = "usable"
)

func UsabilityOf(m *ClientMembership, now time.Time) Usability {
	switch CheckUsable(m, now) {
	case BlockNone:
	case BlockNoMembership:
		return UsabilityNone
	case BlockSuspended:
		return UsabilitySuspended
	default:
		return UsabilityUnusable
	}
	if !IsEligible(m, now) {
		return UsabilityRestrictedNow
	}
	return UsabilityUsable
}
