package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWeekdayOf_MondayFirst(t *testing.T) {
	// 2024-01-01 was a Monday.
	base := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	want := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
	for i, w := range want {
		assert.Equal(t, w, WeekdayOf(base.AddDate(0, 0, i)), "day offset %d", i)
	}
	assert.Equal(t, "Sun", Sunday.String())
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "06:30", want: 390},
		{in: "23:59", want: 1439},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestTimeSlot_HalfOpen(t *testing.T) {
	slot := TimeSlot{Start: MustParseClock("06:00"), End: MustParseClock("12:00")}

	assert.True(t, slot.Contains(MustParseClock("06:00")))
	assert.True(t, slot.Contains(MustParseClock("11:59")))
	assert.False(t, slot.Contains(MustParseClock("12:00")))
	assert.False(t, slot.Contains(MustParseClock("05:59")))
	assert.Error(t, TimeSlot{Start: 600, End: 600}.Validate())
}

func TestDate_TextAndArithmetic(t *testing.T) {
	d := MustParseDate("2024-02-28")
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, Wednesday, d.Weekday())
	assert.True(t, d.Before(d.AddDays(1)))

	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-02-28"}`, string(b))

	var back struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back.D)

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-06-01"))
	assert.Equal(t, NewDate(2025, time.June, 1), d)

	require.NoError(t, d.Scan(time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2025, time.July, 2), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))
}

func TestTimeRestrictions_NilAllowsEverything(t *testing.T) {
	var r *TimeRestrictions
	assert.True(t, r.IsEmpty())
	assert.True(t, r.Allows(time.Date(2024, time.March, 3, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", r.Describe())
	assert.Nil(t, r.Clone())
}

func TestTimeRestrictions_ExcludedDate(t *testing.T) {
	holiday := MustParseDate("2024-01-01")
	r := &TimeRestrictions{ExcludedDates: []Date{holiday}}

	assert.False(t, r.AllowsAt(holiday, MustParseClock("10:00")))
	assert.True(t, r.AllowsAt(holiday.AddDays(1), MustParseClock("10:00")))
}

func TestTimeRestrictions_WeekdayAndSlotCombine(t *testing.T) {
	r := &TimeRestrictions{
		Weekdays:  []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday},
		TimeSlots: []TimeSlot{{Start: MustParseClock("09:00"), End: MustParseClock("17:00")}},
	}
	monday := MustParseDate("2024-01-01")
	saturday := monday.AddDays(5)

	assert.True(t, r.AllowsAt(monday, MustParseClock("09:00")))
	assert.False(t, r.AllowsAt(monday, MustParseClock("17:00")))
	assert.False(t, r.AllowsAt(saturday, MustParseClock("10:00")))
}

func TestTimeRestrictions_Describe(t *testing.T) {
	tests := []struct {
		name string
		r    *TimeRestrictions
		want string
	}{
		{
			name: "weekdays and slot",
			r: &TimeRestrictions{
				Weekdays:  []Weekday{Friday, Monday, Tuesday, Wednesday, Thursday},
				TimeSlots: []TimeSlot{{Start: MustParseClock("09:00"), End: MustParseClock("17:00")}},
			},
			want: "Mon-Fri • 09:00-17:00",
		},
		{
			name: "weekend",
			r:    &TimeRestrictions{Weekdays: []Weekday{Sunday, Saturday}},
			want: "Sat-Sun",
		},
		{
			name: "listed days",
			r:    &TimeRestrictions{Weekdays: []Weekday{Monday, Wednesday, Friday}},
			want: "Mon, Wed, Fri",
		},
		{
			name: "two slots",
			r: &TimeRestrictions{TimeSlots: []TimeSlot{
				{Start: MustParseClock("06:00"), End: MustParseClock("08:00")},
				{Start: MustParseClock("20:00"), End: MustParseClock("22:00")},
			}},
			want: "06:00-08:00, 20:00-22:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Describe())
		})
	}
}

func TestTimeRestrictions_CloneDoesNotAlias(t *testing.T) {
	r := &TimeRestrictions{Weekdays: []Weekday{Monday}}
	c := r.Clone()
	c.Weekdays[0] = Sunday
	assert.Equal(t, Monday, r.Weekdays[0])
}

func TestTimeRestrictions_JSON(t *testing.T) {
	in := `{"weekdays":[0,2,4],"timeSlots":[{"start":"06:00","end":"12:00"}],"excludedDates":["2024-12-31"]}`
	var r TimeRestrictions
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	require.NoError(t, r.Validate())
	assert.Equal(t, []Weekday{Monday, Wednesday, Friday}, r.Weekdays)
	assert.Equal(t, MustParseClock("12:00"), r.TimeSlots[0].End)

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestTimeRestrictions_Validate(t *testing.T) {
	assert.ErrorIs(t, (&TimeRestrictions{Weekdays: []Weekday{7}}).Validate(), ErrInvalidWeekday)
	assert.ErrorIs(t, (&TimeRestrictions{TimeSlots: []TimeSlot{{Start: 700, End: 600}}}).Validate(), ErrInvalidClock)
}

func TestWeekdayRestriction_Property(t *testing.T) {
	r := &TimeRestrictions{Weekdays: []Weekday{Monday, Wednesday, Friday}}
	start := MustParseDate("2024-01-01")
	rapid.Check(t, func(t *rapid.T) {
		d := start.AddDays(rapid.IntRange(0, 3650).Draw(t, "offset"))
		c := Clock(rapid.IntRange(0, 24*60-1).Draw(t, "minute"))
		wd := d.Weekday()
		want := wd == Monday || wd == Wednesday || wd == Friday
		if got := r.AllowsAt(d, c); got != want {
			t.Fatalf("AllowsAt(%s %s) = %v on %s", d, c, got, wd)
		}
	})
}

func TestClockRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Clock(rapid.IntRange(0, 24*60).Draw(t, "minute"))
		parsed, err := ParseClock(c.String())
		if err != nil || parsed != c {
			t.Fatalf("round trip %d: got %d, %v", int(c), int(parsed), err)
		}
	})
}
