package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClock_StripsTimezoneAnnotation(t *testing.T) {
	c, err := ParseClock("04:31 (WIB)")
	require.NoError(t, err)
	require.Equal(t, Clock{Hour: 4, Minute: 31}, c)
	require.Equal(t, "04:31", c.String())
}

func TestParseClock_Rejects(t *testing.T) {
	for _, in := range []string{"", "0431", "24:00", "12:60", "ab:cd", "-1:10"} {
		_, err := ParseClock(in)
		require.Errorf(t, err, "input %q", in)
	}
}

func TestNewSchedule_MissingKey(t *testing.T) {
	timings := map[string]string{}
	for k, v := range FallbackTimings {
		timings[k] = v
	}
	delete(timings, "Asr")

	_, err := NewSchedule(timings)
	require.True(t, errors.Is(err, ErrInvalidSchedule), "got %v", err)
}

func TestNewSchedule_NonMonotonic(t *testing.T) {
	timings := map[string]string{}
	for k, v := range FallbackTimings {
		timings[k] = v
	}
	timings["Maghrib"] = "15:00"

	_, err := NewSchedule(timings)
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestNewSchedule_IgnoresExtraKeys(t *testing.T) {
	timings := map[string]string{
		"Imsak": "04:21 (WIB)", "Fajr": "04:31 (WIB)", "Sunrise": "05:49 (WIB)",
		"Dhuhr": "11:55 (WIB)", "Asr": "15:10 (WIB)", "Sunset": "17:58 (WIB)",
		"Maghrib": "17:58 (WIB)", "Isha": "19:08 (WIB)", "Midnight": "23:55 (WIB)",
	}
	s, err := NewSchedule(timings)
	require.NoError(t, err)
	require.Equal(t, Clock{Hour: 11, Minute: 55}, s.At(Dhuhr))
	require.Len(t, s.Entries(), 6)
	require.Equal(t, "Subuh", s.Entries()[1].Name)
}

func TestSchedule_JSONUsesUpstreamShape(t *testing.T) {
	b, err := json.Marshal(FallbackSchedule())
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, FallbackTimings, m)

	var back Schedule
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, FallbackSchedule(), back)
}
