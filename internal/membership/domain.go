// internal/membership/domain.go
package membership

import (
	"fmt"
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
)

// Status is the stored lifecycle state of a membership. Date expiry is never
// written here; it is derived at evaluation time.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
)

// TransactionType classifies an entry of the membership ledger.
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionDeduction  TransactionType = "deduction"
	TransactionAdjustment TransactionType = "adjustment"
)

// CustomPlanID marks memberships registered from an ad-hoc plan.
const CustomPlanID = "custom"

// ClientMembership is a plan purchased by a client. Name, benefit and
// restrictions are a snapshot of the plan at purchase time.
type ClientMembership struct {
	ID                 uuid.UUID                  `json:"id"`
	ClientID           string                     `json:"clientId"`
	PlanID             string                     `json:"membershipPlanId"`
	OrganizationID     int64                      `json:"organizationId"`
	Name               string                     `json:"membershipName"`
	BenefitType        catalog.BenefitType        `json:"benefitType"`
	RemainingSessions  *int                       `json:"remainingSessions,omitempty"`
	OriginalSessions   *int                       `json:"originalSessions,omitempty"`
	DiscountPercentage *int                       `json:"discountPercentage,omitempty"`
	PurchasePrice      int64                      `json:"purchasePrice"`
	PurchasedDate      schedule.Date              `json:"purchasedDate"`
	ExpiresDate        schedule.Date              `json:"expiresDate"`
	Status             Status                     `json:"status"`
	TimeRestrictions   *schedule.TimeRestrictions `json:"timeRestrictions,omitempty"`
	Version            int                        `json:"version"`
	CreatedAt          time.Time                  `json:"createdAt"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

func (m *ClientMembership) IsSessionBased() bool {
	return m.BenefitType == catalog.BenefitSessions
}

// Remaining returns the session balance, or 0 for discount memberships.
func (m *ClientMembership) Remaining() int {
	if m.RemainingSessions == nil {
		return 0
	}
	return *m.RemainingSessions
}

func (m *ClientMembership) Original() int {
	if m.OriginalSessions == nil {
		return 0
	}
	return *m.OriginalSessions
}

// BenefitSummary renders the benefit for lists: "5/10 sessions" or "-20%".
func (m *ClientMembership) BenefitSummary() string {
	switch {
	case m.IsSessionBased():
		return fmt.Sprintf("%d/%d sessions", m.Remaining(), m.Original())
	case m.DiscountPercentage != nil:
		return fmt.Sprintf("-%d%%", *m.DiscountPercentage)
	default:
		return ""
	}
}

// Clone returns a deep copy.
func (m *ClientMembership) Clone() *ClientMembership {
	if m == nil {
		return nil
	}
	c := *m
	c.RemainingSessions = cloneInt(m.RemainingSessions)
	c.OriginalSessions = cloneInt(m.OriginalSessions)
	c.DiscountPercentage = cloneInt(m.DiscountPercentage)
	c.TimeRestrictions = m.TimeRestrictions.Clone()
	return &c
}

// Transaction is an append-only ledger entry. Version is the membership
// version the entry produced.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	MembershipID   uuid.UUID       `json:"membershipId"`
	ClientID       string          `json:"clientId"`
	Type           TransactionType `json:"transactionType"`
	BookingID      string          `json:"bookingId,omitempty"`
	AdminID        string          `json:"adminId,omitempty"`
	SessionsBefore *int            `json:"sessionsBefore,omitempty"`
	SessionsAfter  *int            `json:"sessionsAfter,omitempty"`
	Amount         int64           `json:"amount,omitempty"`
	Version        int             `json:"version"`
	Timestamp      time.Time       `json:"timestamp"`
	Notes          string          `json:"notes,omitempty"`
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.SessionsBefore = cloneInt(t.SessionsBefore)
	c.SessionsAfter = cloneInt(t.SessionsAfter)
	return &c
}

// CustomPlan describes an ad-hoc membership sold outside the catalog.
type CustomPlan struct {
	Name             string                     `json:"name"`
	BenefitType      catalog.BenefitType        `json:"benefitType"`
	BenefitValue     int                        `json:"benefitValue"`
	ValidForDays     int                        `json:"validForDays"`
	Price            int64                      `json:"price"`
	TimeRestrictions *schedule.TimeRestrictions `json:"timeRestrictions,omitempty"`
}

// Summary is the membership overview shown on a client's card.
type Summary struct {
	ClientID           string            `json:"clientId"`
	Active             *ClientMembership `json:"activeMembership,omitempty"`
	Usability          Usability         `json:"usability"`
	BenefitSummary     string            `json:"benefitSummary,omitempty"`
	RestrictionSummary string            `json:"restrictionSummary,omitempty"`
	MembershipCount    int               `json:"membershipCount"`
	TotalSpent         int64             `json:"totalSpent"`
	LastUsedAt         *time.Time        `json:"lastUsedAt,omitempty"`
	UtilizationPercent int               `json:"utilizationPercent"`
	RemainingValue     int64             `json:"remainingValue"`
	History            []*Transaction    `json:"history"`
}

func intPtr(v int) *int { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}
