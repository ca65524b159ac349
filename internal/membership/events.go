package membership

import (
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
)

// PurchasedEvent is published when a membership is created.
type PurchasedEvent struct {
	MembershipID uuid.UUID     `json:"membershipId"`
	ClientID     string        `json:"clientId"`
	PlanID       string        `json:"membershipPlanId"`
	Name         string        `json:"membershipName"`
	Benefit      string        `json:"benefit"`
	Price        int64         `json:"price"`
	ExpiresDate  schedule.Date `json:"expiresDate"`
}

// SupersededEvent is published for each membership expired by a newer purchase.
type SupersededEvent struct {
	MembershipID uuid.UUID `json:"membershipId"`
	ClientID     string    `json:"clientId"`
	SupersededBy uuid.UUID `json:"supersededBy"`
}

// SessionDeductedEvent is published when a booking consumes a session.
type SessionDeductedEvent struct {
	MembershipID   uuid.UUID `json:"membershipId"`
	ClientID       string    `json:"clientId"`
	BookingID      string    `json:"bookingId"`
	SessionsBefore int       `json:"sessionsBefore"`
	SessionsAfter  int       `json:"sessionsAfter"`
}

// BalanceAdjustedEvent is published when an administrator corrects a balance.
type BalanceAdjustedEvent struct {
	MembershipID   uuid.UUID `json:"membershipId"`
	ClientID       string    `json:"clientId"`
	AdminID        string    `json:"adminId"`
	Reason         string    `json:"reason"`
	SessionsBefore int       `json:"sessionsBefore"`
	SessionsAfter  int       `json:"sessionsAfter"`
}
