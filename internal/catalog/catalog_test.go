package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"courtdesk/internal/catalog"
	"courtdesk/internal/schedule"
	"courtdesk/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() catalog.Plan {
	return catalog.Plan{
		Name:         "Junior Clinic",
		BenefitType:  catalog.BenefitSessions,
		BenefitValue: 6,
		ValidForDays: 45,
		Price:        2400,
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *catalog.Plan)
	}{
		{"blank name", func(p *catalog.Plan) { p.Name = " " }},
		{"zero sessions", func(p *catalog.Plan) { p.BenefitValue = 0 }},
		{"discount above 100", func(p *catalog.Plan) { p.BenefitType = catalog.BenefitDiscount; p.BenefitValue = 101 }},
		{"discount zero", func(p *catalog.Plan) { p.BenefitType = catalog.BenefitDiscount; p.BenefitValue = 0 }},
		{"unknown benefit", func(p *catalog.Plan) { p.BenefitType = "cashback" }},
		{"no validity", func(p *catalog.Plan) { p.ValidForDays = 0 }},
		{"negative price", func(p *catalog.Plan) { p.Price = -1 }},
		{"inverted slot", func(p *catalog.Plan) {
			p.TimeRestrictions = &schedule.TimeRestrictions{TimeSlots: []schedule.TimeSlot{
				{Start: schedule.MustParseClock("12:00"), End: schedule.MustParseClock("06:00")},
			}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.modify(&p)
			assert.ErrorIs(t, p.Validate(), catalog.ErrInvalidPlan)
		})
	}

	p := validPlan()
	assert.NoError(t, p.Validate())
}

func TestDefaultPlansAreValid(t *testing.T) {
	plans := catalog.DefaultPlans(7)
	require.Len(t, plans, 6)
	for _, p := range plans {
		assert.NoError(t, p.Validate(), p.ID)
		assert.Equal(t, int64(7), p.OrganizationID)
	}
	assert.Equal(t, "Mon-Fri • 09:00-17:00", plans[4].TimeRestrictions.Describe())
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(store.NewMemoryStore(), 3, nil)

	added, err := svc.Seed(ctx, catalog.DefaultPlans(3))
	require.NoError(t, err)
	assert.Equal(t, 6, added)
	added, err = svc.Seed(ctx, catalog.DefaultPlans(3))
	require.NoError(t, err)
	assert.Zero(t, added)

	restrictions := &schedule.TimeRestrictions{Weekdays: []schedule.Weekday{schedule.Saturday}}
	in := validPlan()
	in.TimeRestrictions = restrictions
	p, err := svc.AddPlan(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, int64(3), p.OrganizationID)
	assert.True(t, p.IsActive)
	assert.False(t, p.CreatedAt.IsZero())

	restrictions.Weekdays[0] = schedule.Sunday
	got, err := svc.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.Saturday, got.TimeRestrictions.Weekdays[0])

	_, err = svc.AddPlan(ctx, catalog.Plan{Name: "bad"})
	assert.True(t, catalog.IsErrInvalidPlan(err))

	require.NoError(t, svc.DeactivatePlan(ctx, p.ID))
	active, err := svc.ListPlans(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 6)
	all, err := svc.ListPlans(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	assert.True(t, catalog.IsErrNotFound(svc.DeactivatePlan(ctx, "missing")))
}

func TestHandler(t *testing.T) {
	svc := catalog.NewService(store.NewMemoryStore(), 1, nil)
	_, err := svc.Seed(context.Background(), catalog.DefaultPlans(1))
	require.NoError(t, err)
	r := chi.NewRouter()
	catalog.NewHandler(svc).Register(r)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodGet, "/v1/plans/plan_003", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"planName":"Morning Bird"`)

	rec = do(http.MethodPost, "/v1/plans", `{
		"planName": "Weekend Warrior",
		"benefitType": "discount",
		"benefitValue": 15,
		"validForDays": 30,
		"price": 2000,
		"timeRestrictions": {"weekdays": [5, 6]}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/v1/plans", `{"planName": "x", "benefitType": "sessions", "benefitValue": 0, "validForDays": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPost, "/v1/plans", `{"id": "plan_001", "planName": "dup", "benefitType": "sessions", "benefitValue": 1, "validForDays": 1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(http.MethodDelete, "/v1/plans/plan_001", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(http.MethodGet, "/v1/plans?active=yes-please", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/v1/plans/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
