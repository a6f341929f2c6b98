package aladhan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const timingsBody = `{"code":200,"status":"OK","data":{
	"timings":{"Fajr":"04:31 (WIB)","Sunrise":"05:49 (WIB)","Dhuhr":"11:55 (WIB)","Asr":"15:10 (WIB)",
		"Sunset":"17:58 (WIB)","Maghrib":"17:58 (WIB)","Isha":"19:08 (WIB)","Imsak":"04:21 (WIB)"},
	"date":{"readable":"06 Feb 2026","hijri":{"day":"18","month":{"en":"Sha'ban","ar":"شَعْبَان"},"year":"1447"},
		"gregorian":{"date":"06-02-2026"}},
	"meta":{"timezone":"Asia/Jakarta"}}}`

func TestClient_Daily(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(timingsBody))
	}))
	defer ts.Close()

	c := NewClient().WithEndpoint(ts.URL)
	day := time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC)
	sched, err := c.Daily(context.Background(), domain.Coordinates{Latitude: -6.2, Longitude: 106.8}, 0, day)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if gotPath != "/timings/06-02-2026" {
		t.Fatalf("path: got %q", gotPath)
	}
	if !strings.Contains(gotQuery, "method=11") {
		t.Fatalf("expected default method 11, got query %q", gotQuery)
	}
	if sched.Date != "2026-02-06" || sched.Source != domain.SourceRemote {
		t.Fatalf("unexpected schedule header: %+v", sched)
	}
	if got := sched.Timings.At(domain.Fajr).String(); got != "04:31" {
		t.Fatalf("Fajr: got %s", got)
	}
	if sched.Hijri.String() != "18 Sha'ban 1447 H" {
		t.Fatalf("hijri: got %q", sched.Hijri.String())
	}
	if sched.Timezone != "Asia/Jakarta" {
		t.Fatalf("timezone: got %q", sched.Timezone)
	}
}

func TestClient_Daily_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient().WithEndpoint(ts.URL).Daily(context.Background(), domain.Coordinates{}, 11, time.Now())
	if ports.ErrorCode(err) != "http_status" {
		t.Fatalf("expected http_status code, got %v", err)
	}
}

func TestClient_Daily_InvalidTimings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":{"timings":{"Fajr":"05:00"}}}`))
	}))
	defer ts.Close()

	_, err := NewClient().WithEndpoint(ts.URL).Daily(context.Background(), domain.Coordinates{}, 11, time.Now())
	if !errors.Is(err, domain.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestClient_Monthly(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		day := strings.TrimPrefix(strings.TrimSuffix(timingsBody, "}"), `{"code":200,"status":"OK","data":`)
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","data":[` + day + `,` + day + `]}`))
	}))
	defer ts.Close()

	days, err := NewClient().WithEndpoint(ts.URL).Monthly(context.Background(), domain.Coordinates{Latitude: 1, Longitude: 2}, 11, 2026, time.February)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if !strings.Contains(gotQuery, "month=2") || !strings.Contains(gotQuery, "year=2026") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}
