package catalog

import "courtdesk/internal/schedule"

var weekdaysMonFri = []schedule.Weekday{
	schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday,
}

func slot(start, end string) schedule.TimeSlot {
	return schedule.TimeSlot{Start: schedule.MustParseClock(start), End: schedule.MustParseClock(end)}
}

// DefaultPlans returns the club's standard plan line-up.
func DefaultPlans(orgID int64) []Plan {
	return []Plan{
		{
			ID:             "plan_001",
			OrganizationID: orgID,
			Name:           "Tennis 10-Pack",
			Description:    "10 sessions at any time",
			BenefitType:    BenefitSessions,
			BenefitValue:   10,
			ValidForDays:   30,
			Price:          5000,
			IsActive:       true,
		},
		{
			ID:             "plan_002",
			OrganizationID: orgID,
			Name:           "VIP Gold",
			Description:    "20% off every booking",
			BenefitType:    BenefitDiscount,
			BenefitValue:   20,
			ValidForDays:   90,
			Price:          8000,
			IsActive:       true,
		},
		{
			ID:             "plan_003",
			OrganizationID: orgID,
			Name:           "Morning Bird",
			Description:    "30% off before noon",
			BenefitType:    BenefitDiscount,
			BenefitValue:   30,
			ValidForDays:   30,
			Price:          3000,
			IsActive:       true,
			TimeRestrictions: &schedule.TimeRestrictions{
				TimeSlots: []schedule.TimeSlot{slot("06:00", "12:00")},
			},
		},
		{
			ID:             "plan_004",
			OrganizationID: orgID,
			Name:           "Weekday Tennis",
			Description:    "12 sessions on weekdays",
			BenefitType:    BenefitSessions,
			BenefitValue:   12,
			ValidForDays:   30,
			Price:          4000,
			IsActive:       true,
			TimeRestrictions: &schedule.TimeRestrictions{
				Weekdays: weekdaysMonFri,
			},
		},
		{
			ID:             "plan_005",
			OrganizationID: orgID,
			Name:           "Business Hours Pass",
			Description:    "25% off during business hours (Mon-Fri 09:00-17:00)",
			BenefitType:    BenefitDiscount,
			BenefitValue:   25,
			ValidForDays:   30,
			Price:          3500,
			IsActive:       true,
			TimeRestrictions: &schedule.TimeRestrictions{
				Weekdays:  weekdaysMonFri,
				TimeSlots: []schedule.TimeSlot{slot("09:00", "17:00")},
			},
		},
		{
			ID:             "plan_006",
			OrganizationID: orgID,
			Name:           "Evening Special",
			Description:    "8 evening sessions",
			BenefitType:    BenefitSessions,
			BenefitValue:   8,
			ValidForDays:   30,
			Price:          3200,
			IsActive:       true,
			TimeRestrictions: &schedule.TimeRestrictions{
				TimeSlots: []schedule.TimeSlot{slot("18:00", "22:00")},
			},
		},
	}
}
