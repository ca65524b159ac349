package audit

import (
	"fmt"

	"courtdesk/internal/membership"

	"github.com/google/uuid"
)

// Names of the standard checks.
const (
	CheckSingleActive  = "single-active-membership"
	CheckBalanceBounds = "balance-within-bounds"
	CheckChain         = "transaction-chain"
	CheckBalanceLedger = "balance-matches-ledger"
	CheckPurchaseFirst = "purchase-opens-ledger"
)

func DefaultChecks() []Check {
	return []Check{
		{
			Name:        CheckSingleActive,
			Description: "a client holds at most one active membership",
			Run:         singleActive,
		},
		{
			Name:        CheckBalanceBounds,
			Description: "remaining sessions stay within [0, original]",
			Run:         balanceBounds,
		},
		{
			Name:        CheckPurchaseFirst,
			Description: "every membership starts with a purchase entry",
			Run:         purchaseFirst,
		},
		{
			Name:        CheckChain,
			Description: "each entry starts where the previous one ended",
			Run:         chain,
		},
		{
			Name:        CheckBalanceLedger,
			Description: "the stored balance equals the last entry's balance",
			Run:         balanceLedger,
		},
	}
}

func idOf(m *membership.ClientMembership) *uuid.UUID {
	id := m.ID
	return &id
}

func singleActive(s *Snapshot) []Violation {
	active := make(map[string]int)
	var order []string
	for _, m := range s.Memberships {
		if m.Status != membership.StatusActive {
			continue
		}
		if active[m.ClientID] == 0 {
			order = append(order, m.ClientID)
		}
		active[m.ClientID]++
	}
	var out []Violation
	for _, client := range order {
		if n := active[client]; n > 1 {
			out = append(out, Violation{
				ClientID: client,
				Detail:   fmt.Sprintf("%d active memberships", n),
			})
		}
	}
	return out
}

func balanceBounds(s *Snapshot) []Violation {
	var out []Violation
	for _, m := range s.Memberships {
		if !m.IsSessionBased() {
			continue
		}
		switch {
		case m.RemainingSessions == nil || m.OriginalSessions == nil:
			out = append(out, Violation{ClientID: m.ClientID, MembershipID: idOf(m), Detail: "session membership without a balance"})
		case m.Remaining() < 0 || m.Remaining() > m.Original():
			out = append(out, Violation{
				ClientID:     m.ClientID,
				MembershipID: idOf(m),
				Detail:       fmt.Sprintf("remaining %d outside [0, %d]", m.Remaining(), m.Original()),
			})
		}
	}
	return out
}

func purchaseFirst(s *Snapshot) []Violation {
	var out []Violation
	for _, m := range s.Memberships {
		txs := s.Transactions[m.ID]
		if len(txs) == 0 || txs[0].Type != membership.TransactionPurchase {
			out = append(out, Violation{ClientID: m.ClientID, MembershipID: idOf(m), Detail: "ledger does not open with a purchase"})
		}
	}
	return out
}

func chain(s *Snapshot) []Violation {
	var out []Violation
	for _, m := range s.Memberships {
		if !m.IsSessionBased() {
			continue
		}
		var prev *membership.Transaction
		for _, tx := range s.Transactions[m.ID] {
			if tx.SessionsBefore == nil || tx.SessionsAfter == nil {
				out = append(out, Violation{
					ClientID:     m.ClientID,
					MembershipID: idOf(m),
					Detail:       fmt.Sprintf("%s entry %s has no session balance", tx.Type, tx.ID),
				})
				continue
			}
			if tx.Type == membership.TransactionDeduction && *tx.SessionsAfter != *tx.SessionsBefore-1 {
				out = append(out, Violation{
					ClientID:     m.ClientID,
					MembershipID: idOf(m),
					Detail:       fmt.Sprintf("deduction %s moved %d -> %d", tx.ID, *tx.SessionsBefore, *tx.SessionsAfter),
				})
			}
			if prev != nil && *prev.SessionsAfter != *tx.SessionsBefore {
				out = append(out, Violation{
					ClientID:     m.ClientID,
					MembershipID: idOf(m),
					Detail:       fmt.Sprintf("entry %s starts at %d but the previous ended at %d", tx.ID, *tx.SessionsBefore, *prev.SessionsAfter),
				})
			}
			prev = tx
		}
	}
	return out
}

func balanceLedger(s *Snapshot) []Violation {
	var out []Violation
	for _, m := range s.Memberships {
		if !m.IsSessionBased() {
			continue
		}
		txs := s.Transactions[m.ID]
		if len(txs) == 0 {
			continue
		}
		last := txs[len(txs)-1]
		if last.SessionsAfter != nil && *last.SessionsAfter != m.Remaining() {
			out = append(out, Violation{
				ClientID:     m.ClientID,
				MembershipID: idOf(m),
				Detail:       fmt.Sprintf("stored balance %d, ledger says %d", m.Remaining(), *last.SessionsAfter),
			})
		}
	}
	return out
}
