package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTabularHijri(t *testing.T) {
	cases := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC), "18 Sha'ban 1447 H"},
		{time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), "19 Sha'ban 1447 H"},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "1 Ramadan 1446 H"},
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "24 Ramadan 1420 H"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TabularHijri(tc.day).String(), tc.day.Format(DateLayout))
	}
}

func TestFallbackDailySchedule_CarriesHijri(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	day := time.Date(2026, 2, 6, 20, 0, 0, 0, time.UTC).In(jakarta)

	d := FallbackDailySchedule(day)
	require.Equal(t, "2026-02-07", d.Date)
	require.Equal(t, "07 Feb 2026", d.Readable)
	require.Equal(t, "19 Sha'ban 1447 H", d.Hijri.String())
	require.Equal(t, SourceFallback, d.Source)
}
