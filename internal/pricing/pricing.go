// Package pricing turns a base booking price and a client's membership into
// a quote. It has no side effects; committing a session is a separate step.
package pricing

import (
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/membership"
)

// PaymentStatus is how a booking is (to be) paid.
type PaymentStatus string

const (
	Paid               PaymentStatus = "paid"
	Unpaid             PaymentStatus = "unpaid"
	MembershipSession  PaymentStatus = "membership_session"
	MembershipDiscount PaymentStatus = "membership_discount"
	Free               PaymentStatus = "free"
)

// Messages attached to quotes where a membership exists but does not apply.
const (
	MessageExpired     = "membership has expired"
	MessageNotValidNow = "membership is not valid at the selected time"
)

// Quote is the price of a prospective booking.
type Quote struct {
	OriginalPrice     int64         `json:"originalPrice"`
	FinalPrice        int64         `json:"finalPrice"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	MembershipApplied bool          `json:"membershipApplied"`
	Message           string        `json:"message,omitempty"`
}

// ConsumesSession reports whether confirming the booking must deduct a session.
func (q Quote) ConsumesSession() bool {
	return q.PaymentStatus == MembershipSession
}

// Calculate prices a booking. bookingAt is the club-local start of the
// booking; the zero time skips the time restriction check. now is the
// club-local current time used for the live expiry check.
func Calculate(base int64, m *membership.ClientMembership, bookingAt, now time.Time) Quote {
	q := Quote{OriginalPrice: base, FinalPrice: base, PaymentStatus: Unpaid}

	switch membership.CheckUsable(m, now) {
	case membership.BlockNoMembership, membership.BlockSuspended, membership.BlockInactive:
		return q
	case membership.BlockExpired:
		q.Message = MessageExpired
		return q
	}

	if !bookingAt.IsZero() && !membership.IsEligible(m, bookingAt) {
		q.Message = MessageNotValidNow
		return q
	}

	switch {
	case m.BenefitType == catalog.BenefitSessions && m.Remaining() > 0:
		q.FinalPrice = 0
		q.PaymentStatus = MembershipSession
		q.MembershipApplied = true
	case m.BenefitType == catalog.BenefitDiscount && m.DiscountPercentage != nil:
		q.FinalPrice = ApplyDiscount(base, *m.DiscountPercentage)
		q.PaymentStatus = MembershipDiscount
		q.MembershipApplied = true
	}
	return q
}

// ApplyDiscount takes pct percent off base and rounds half up to a whole
// currency unit: 600 at 30% is 420, 5 at 50% is 3.
func ApplyDiscount(base int64, pct int) int64 {
	if pct <= 0 {
		return base
	}
	if pct >= 100 {
		return 0
	}
	return (base*int64(100-pct) + 50) / 100
}
