package membership

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/schedule"

	"github.com/stretchr/testify/assert"
)

// Wednesday 2024-03-06 18:30.
var evening = time.Date(2024, time.March, 6, 18, 30, 0, 0, time.UTC)

func membershipWith(status Status, remaining int, r *schedule.TimeRestrictions) *ClientMembership {
	return &ClientMembership{
		Name:              "Tennis 10-Pack",
		BenefitType:       catalog.BenefitSessions,
		RemainingSessions: intPtr(remaining),
		OriginalSessions:  intPtr(10),
		PurchasedDate:     schedule.DateOf(evening).AddDays(-10),
		ExpiresDate:       schedule.DateOf(evening).AddDays(20),
		Status:            status,
		TimeRestrictions:  r,
	}
}

func TestIsExpired(t *testing.T) {
	m := membershipWith(StatusActive, 5, nil)

	m.ExpiresDate = schedule.DateOf(evening).AddDays(1)
	assert.False(t, IsExpired(m, evening))

	m.ExpiresDate = schedule.DateOf(evening)
	assert.True(t, IsExpired(m, evening))

	midnight := schedule.DateOf(evening).Start(time.UTC)
	assert.False(t, IsExpired(m, midnight))
	assert.True(t, IsExpired(m, midnight.Add(time.Nanosecond)))
}

func TestIsExpired_ClubLocation(t *testing.T) {
	club := time.FixedZone("MSK", 3*60*60)
	m := membershipWith(StatusActive, 5, nil)
	m.ExpiresDate = schedule.NewDate(2024, time.March, 7)

	// 22:30 UTC on the 6th is already the 7th in the club.
	late := time.Date(2024, time.March, 6, 22, 30, 0, 0, time.UTC).In(club)
	assert.True(t, IsExpired(m, late))
}

func TestCheckUsable_Order(t *testing.T) {
	suspendedAndEmpty := membershipWith(StatusSuspended, 0, nil)
	suspendedAndEmpty.ExpiresDate = schedule.DateOf(evening).AddDays(-1)
	expiredAndEmpty := membershipWith(StatusActive, 0, nil)
	expiredAndEmpty.ExpiresDate = schedule.DateOf(evening).AddDays(-1)
	discount := membershipWith(StatusActive, 0, nil)
	discount.BenefitType = catalog.BenefitDiscount
	discount.RemainingSessions, discount.OriginalSessions = nil, nil
	discount.DiscountPercentage = intPtr(20)

	tests := []struct {
		name string
		m    *ClientMembership
		want Blocker
	}{
		{"nil", nil, BlockNoMembership},
		{"suspended first", suspendedAndEmpty, BlockSuspended},
		{"stored expired", membershipWith(StatusExpired, 5, nil), BlockInactive},
		{"expiry before balance", expiredAndEmpty, BlockExpired},
		{"no sessions", membershipWith(StatusActive, 0, nil), BlockNoSessions},
		{"discount has no balance", discount, BlockNone},
		{"usable", membershipWith(StatusActive, 1, nil), BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckUsable(tt.m, evening))
			assert.Equal(t, tt.want == BlockNone, IsCurrentlyUsable(tt.m, evening))
		})
	}
}

func TestUsabilityOf(t *testing.T) {
	morningOnly := &schedule.TimeRestrictions{
		TimeSlots: []schedule.TimeSlot{{Start: schedule.MustParseClock("06:00"), End: schedule.MustParseClock("12:00")}},
	}

	assert.Equal(t, UsabilityNone, UsabilityOf(nil, evening))
	assert.Equal(t, UsabilitySuspended, UsabilityOf(membershipWith(StatusSuspended, 5, nil), evening))
	assert.Equal(t, UsabilityUnusable, UsabilityOf(membershipWith(StatusActive, 0, nil), evening))
	assert.Equal(t, UsabilityRestrictedNow, UsabilityOf(membershipWith(StatusActive, 5, morningOnly), evening))
	assert.Equal(t, UsabilityUsable, UsabilityOf(membershipWith(StatusActive, 5, nil), evening))
}

func TestIsEligible(t *testing.T) {
	m := membershipWith(StatusActive, 5, &schedule.TimeRestrictions{
		Weekdays:  []schedule.Weekday{schedule.Monday, schedule.Wednesday, schedule.Friday},
		TimeSlots: []schedule.TimeSlot{{Start: schedule.MustParseClock("18:00"), End: schedule.MustParseClock("22:00")}},
	})

	assert.True(t, IsEligible(m, evening))
	assert.False(t, IsEligible(m, evening.AddDate(0, 0, 1)))
	assert.False(t, IsEligible(nil, evening))
	assert.True(t, IsEligibleAt(m, schedule.DateOf(evening), schedule.MustParseClock("21:59")))
	assert.False(t, IsEligibleAt(m, schedule.DateOf(evening), schedule.MustParseClock("22:00")))
}

func TestBenefitSummary(t *testing.T) {
	m := membershipWith(StatusActive, 5, nil)
	assert.Equal(t, "5/10 sessions", m.BenefitSummary())

	m.BenefitType = catalog.BenefitDiscount
	m.RemainingSessions, m.OriginalSessions = nil, nil
	m.DiscountPercentage = intPtr(20)
	assert.Equal(t, "-20%", m.BenefitSummary())
}

func TestClone_DoesNotAlias(t *testing.T) {
	m := membershipWith(StatusActive, 5, &schedule.TimeRestrictions{Weekdays: []schedule.Weekday{schedule.Monday}})
	c := m.Clone()
	*c.RemainingSessions = 1
	c.TimeRestrictions.Weekdays[0] = schedule.Sunday

	assert.Equal(t, 5, m.Remaining())
	assert.Equal(t, schedule.Monday, m.TimeRestrictions.Weekdays[0])
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewError(ErrNotFound, "get"), CodeNotFound, http.StatusNotFound},
		{NewError(fmt.Errorf("%w: blank", ErrInvalidInput), "adjust"), CodeInvalidInput, http.StatusBadRequest},
		{NewError(ErrInsufficientSessions, "deduct"), CodeInsufficientSessions, http.StatusUnprocessableEntity},
		{NewError(ErrNotSessionBased, "deduct"), CodeNotSessionBased, http.StatusUnprocessableEntity},
		{NewError(ErrNotActive, "deduct"), CodeNotActive, http.StatusUnprocessableEntity},
		{NewError(ErrConcurrencyConflict, "deduct"), CodeConflict, http.StatusConflict},
		{errors.New("disk on fire"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, Code(tt.err), tt.err.Error())
		assert.Equal(t, tt.status, StatusCode(tt.err), tt.err.Error())
	}

	wrapped := fmt.Errorf("handler: %w", NewError(ErrConcurrencyConflict, "deduct session"))
	assert.True(t, IsConflict(wrapped))
	assert.Equal(t, "deduct session: concurrency conflict: version mismatch", NewError(ErrConcurrencyConflict, "deduct session").Error())
}
