package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDateTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{"valid", "15-06-2030", "18:30", time.Date(2030, 6, 15, 18, 30, 0, 0, time.UTC), false},
		{"single digits", "1-7-2030", "9:05", time.Date(2030, 7, 1, 9, 5, 0, 0, time.UTC), false},
		{"leap day", "29-02-2028", "00:00", time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"day 31 in 30-day month", "31-04-2030", "10:00", time.Time{}, true},
		{"feb 29 off leap year", "29-02-2030", "10:00", time.Time{}, true},
		{"month 13", "01-13-2030", "10:00", time.Time{}, true},
		{"hour 24", "01-01-2030", "24:00", time.Time{}, true},
		{"minute 60", "01-01-2030", "10:60", time.Time{}, true},
		{"iso date", "2030-06-15", "10:00", time.Time{}, true},
		{"letters", "aa-bb-cccc", "10:00", time.Time{}, true},
		{"missing minute", "01-01-2030", "10", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventDateTime(tt.date, tt.clock, time.UTC)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseCalendarDate(t *testing.T) {
	got, err := ParseCalendarDate(" 2030-01-31 ", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)))

	_, err = ParseCalendarDate("31-01-2030", time.UTC)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEvent_TimeOfDay(t *testing.T) {
	e := NewEvent("Launch", "", time.Date(2030, 6, 15, 7, 5, 0, 0, time.UTC), "Hall", nil, false, time.Time{}, time.Time{})
	assert.Equal(t, "07:05", e.TimeOfDay(time.UTC))
}

func TestEvent_TimeOfDay_AfterUTCRoundTrip(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	entered, err := ParseEventDateTime("01-05-2025", "10:00", berlin)
	require.NoError(t, err)

	// A UTC database session hands the same instant back in UTC.
	stored := &Event{Date: entered.UTC()}

	assert.Equal(t, "10:00", stored.TimeOfDay(berlin))
	assert.Equal(t, "08:00", stored.TimeOfDay(time.UTC))
	assert.Equal(t, 1, stored.LocalDate(berlin).Day())
}

func TestTokenClaims_HasRole(t *testing.T) {
	c := &TokenClaims{Roles: []string{"viewer", RoleAdmin}}
	assert.True(t, c.HasRole(RoleAdmin))
	assert.False(t, (&TokenClaims{}).HasRole(RoleAdmin))
}
