package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtdesk/internal/audit"
	"courtdesk/internal/booking"
	"courtdesk/internal/catalog"
	"courtdesk/internal/membership"
	"courtdesk/internal/pricing"
	"courtdesk/internal/schedule"
	"courtdesk/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2024-03-04 09:00.
var testNow = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*CatalogClient, *MembershipClient) {
	t.Helper()
	repo := store.NewMemoryStore()
	plans := catalog.NewService(repo, 1, nil)
	_, err := plans.Seed(context.Background(), catalog.DefaultPlans(1))
	require.NoError(t, err)
	ledger := membership.NewService(repo, plans, membership.WithClock(func() time.Time { return testNow }))

	r := chi.NewRouter()
	catalog.NewHandler(plans).Register(r)
	mh := membership.NewHandler(ledger)
	mh.Register(r)
	mh.RegisterMutations(r)
	bh := booking.NewHandler(booking.NewService(ledger, nil))
	bh.Register(r)
	bh.RegisterMutations(r)
	audit.NewHandler(audit.NewAuditor(repo, nil)).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewCatalogClient(srv.URL+"/", srv.Client()), NewMembershipClient(srv.URL, srv.Client())
}

func TestCatalogClient(t *testing.T) {
	cat, _ := newServer(t)
	ctx := context.Background()

	plans, err := cat.ListPlans(ctx, true)
	require.NoError(t, err)
	assert.Len(t, plans, 6)

	p, err := cat.GetPlan(ctx, "plan_003")
	require.NoError(t, err)
	assert.Equal(t, "Morning Bird", p.Name)

	added, err := cat.AddPlan(ctx, catalog.Plan{
		Name:         "Doubles Night",
		BenefitType:  catalog.BenefitSessions,
		BenefitValue: 4,
		ValidForDays: 28,
		Price:        1600,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	require.NoError(t, cat.DeactivatePlan(ctx, added.ID))
	plans, err = cat.ListPlans(ctx, true)
	require.NoError(t, err)
	assert.Len(t, plans, 6)

	_, err = cat.GetPlan(ctx, "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestMembershipClient_Flow(t *testing.T) {
	_, mc := newServer(t)
	ctx := context.Background()
	day := schedule.DateOf(testNow)

	none, err := mc.GetActiveMembership(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, none)

	m, err := mc.Purchase(ctx, "client-1", "plan_004", day)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Remaining())

	ten := schedule.MustParseClock("10:00")
	draft := booking.Draft{
		ClientID:       "client-1",
		CourtID:        "court-1",
		Date:           day,
		Time:           &ten,
		BasePrice:      900,
		CandidateSlots: []schedule.Clock{schedule.MustParseClock("09:00"), schedule.MustParseClock("12:00")},
	}
	quote, err := mc.Quote(ctx, draft)
	require.NoError(t, err)
	assert.True(t, quote.Validation.IsValid)
	assert.Equal(t, pricing.MembershipSession, quote.Quote.PaymentStatus)

	res, err := mc.Confirm(ctx, draft, "booking-1")
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, 11, *res.Transaction.SessionsAfter)

	_, err = mc.AdjustBalance(ctx, m.ID, 12, "", "admin-1")
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	tx, err := mc.AdjustBalance(ctx, m.ID, 12, "booking cancelled by club", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, membership.TransactionAdjustment, tx.Type)

	tx, err = mc.DeductSession(ctx, m.ID, "booking-2")
	require.NoError(t, err)
	assert.Equal(t, 11, *tx.SessionsAfter)

	custom, err := mc.PurchaseCustom(ctx, "client-1", membership.CustomPlan{
		Name:         "Coach Referral",
		BenefitType:  catalog.BenefitDiscount,
		BenefitValue: 10,
		ValidForDays: 60,
	}, day)
	require.NoError(t, err)
	assert.Equal(t, membership.CustomPlanID, custom.PlanID)

	old, err := mc.GetMembership(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.StatusExpired, old.Status)

	all, err := mc.ListMemberships(ctx, "client-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	history, err := mc.History(ctx, "client-1")
	require.NoError(t, err)
	assert.Len(t, history, 5)

	sum, err := mc.Summary(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "-10%", sum.BenefitSummary)
	assert.Equal(t, int64(4000), sum.TotalSpent)

	report, err := mc.Audit(ctx)
	require.NoError(t, err)
	assert.True(t, report.Healthy)
}

func TestMembershipClient_Weekend(t *testing.T) {
	_, mc := newServer(t)
	ctx := context.Background()
	_, err := mc.Purchase(ctx, "client-1", "plan_004", schedule.DateOf(testNow))
	require.NoError(t, err)

	saturday := schedule.DateOf(testNow).AddDays(5)
	ten := schedule.MustParseClock("10:00")
	res, err := mc.Confirm(ctx, booking.Draft{
		ClientID:  "client-1",
		Date:      saturday,
		Time:      &ten,
		BasePrice: 900,
	}, "booking-sat")
	require.NoError(t, err)
	assert.Nil(t, res.Transaction)
	assert.Equal(t, booking.ReasonWrongDay, res.Validation.Reason)
	assert.Equal(t, int64(900), res.Quote.FinalPrice)
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 409, Code: "conflict", Message: "refresh and retry"}
	assert.Equal(t, "api error 409 (conflict): refresh and retry", err.Error())
	assert.Equal(t, "api error 500: internal error", (&APIError{StatusCode: 500, Message: "internal error"}).Error())
}
