// internal/clients/membership_client.go
package clients

import (
	"context"
	"net/http"
	"net/url"

	"courtdesk/internal/audit"
	"courtdesk/internal/booking"
	"courtdesk/internal/membership"
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
)

type MembershipClient struct {
	client
}

func NewMembershipClient(baseURL string, httpClient *http.Client) *MembershipClient {
	return &MembershipClient{client: newClient(baseURL, httpClient)}
}

func clientPath(clientID, suffix string) string {
	return "/v1/clients/" + url.PathEscape(clientID) + suffix
}

// GetActiveMembership returns nil, nil when the client has none.
func (c *MembershipClient) GetActiveMembership(ctx context.Context, clientID string) (*membership.ClientMembership, error) {
	var m membership.ClientMembership
	if err := c.do(ctx, http.MethodGet, clientPath(clientID, "/membership"), nil, &m); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (c *MembershipClient) GetMembership(ctx context.Context, id uuid.UUID) (*membership.ClientMembership, error) {
	var m membership.ClientMembership
	if err := c.do(ctx, http.MethodGet, "/v1/memberships/"+id.String(), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *MembershipClient) ListMemberships(ctx context.Context, clientID string) ([]*membership.ClientMembership, error) {
	var ms []*membership.ClientMembership
	if err := c.do(ctx, http.MethodGet, clientPath(clientID, "/memberships"), nil, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (c *MembershipClient) History(ctx context.Context, clientID string) ([]*membership.Transaction, error) {
	var txs []*membership.Transaction
	if err := c.do(ctx, http.MethodGet, clientPath(clientID, "/history"), nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *MembershipClient) Summary(ctx context.Context, clientID string) (*membership.Summary, error) {
	var sum membership.Summary
	if err := c.do(ctx, http.MethodGet, clientPath(clientID, "/summary"), nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *MembershipClient) Purchase(ctx context.Context, clientID, planID string, purchaseDate schedule.Date) (*membership.ClientMembership, error) {
	return c.purchase(ctx, clientID, membership.PurchaseRequest{PlanID: planID, PurchaseDate: purchaseDate})
}

func (c *MembershipClient) PurchaseCustom(ctx context.Context, clientID string, plan membership.CustomPlan, purchaseDate schedule.Date) (*membership.ClientMembership, error) {
	return c.purchase(ctx, clientID, membership.PurchaseRequest{Custom: &plan, PurchaseDate: purchaseDate})
}

func (c *MembershipClient) purchase(ctx context.Context, clientID string, req membership.PurchaseRequest) (*membership.ClientMembership, error) {
	var m membership.ClientMembership
	if err := c.do(ctx, http.MethodPost, clientPath(clientID, "/memberships"), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *MembershipClient) DeductSession(ctx context.Context, id uuid.UUID, bookingID string) (*membership.Transaction, error) {
	var tx membership.Transaction
	err := c.do(ctx, http.MethodPost, "/v1/memberships/"+id.String()+"/deductions",
		membership.DeductRequest{BookingID: bookingID}, &tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *MembershipClient) AdjustBalance(ctx context.Context, id uuid.UUID, newBalance int, reason, adminID string) (*membership.Transaction, error) {
	var tx membership.Transaction
	err := c.do(ctx, http.MethodPost, "/v1/memberships/"+id.String()+"/adjustments",
		membership.AdjustRequest{NewBalance: newBalance, Reason: reason, AdminID: adminID}, &tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *MembershipClient) Quote(ctx context.Context, d booking.Draft) (*booking.Result, error) {
	var res booking.Result
	if err := c.do(ctx, http.MethodPost, "/v1/bookings/quote", d, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *MembershipClient) Confirm(ctx context.Context, d booking.Draft, bookingID string) (*booking.Result, error) {
	var res booking.Result
	err := c.do(ctx, http.MethodPost, "/v1/bookings/confirm", booking.ConfirmRequest{Draft: d, BookingID: bookingID}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *MembershipClient) Audit(ctx context.Context) (*audit.Report, error) {
	var report audit.Report
	if err := c.do(ctx, http.MethodGet, "/v1/admin/audit", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
