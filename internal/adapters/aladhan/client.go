package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const DefaultEndpoint = "https://api.aladhan.com/v1"

// Client interroge api.aladhan.com. Il implémente ports.ScheduleSource.
type Client struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

func NewClient() *Client {
	return &Client{
		endpoint: DefaultEndpoint,
		client: &http.Client{
			// Au-delà, on préfère servir le cache ou le fallback.
			Timeout: 5 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) WithEndpoint(endpoint string) *Client {
	if strings.TrimSpace(endpoint) != "" {
		c.endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	}
	return c
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

type response[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type dayData struct {
	Timings map[string]string `json:"timings"`
	Date    struct {
		Readable string `json:"readable"`
		Hijri    struct {
			Day   string `json:"day"`
			Month struct {
				En string `json:"en"`
				Ar string `json:"ar"`
			} `json:"month"`
			Year string `json:"year"`
		} `json:"hijri"`
		Gregorian struct {
			Date string `json:"date"` // 06-02-2026
		} `json:"gregorian"`
	} `json:"date"`
	Meta struct {
		Timezone string `json:"timezone"`
	} `json:"meta"`
}

func (c *Client) Daily(ctx context.Context, loc domain.Coordinates, method int, day time.Time) (domain.DailySchedule, error) {
	q := coordsQuery(loc, method)
	u := c.endpoint + "/timings/" + day.Format("02-01-2006") + "?" + q.Encode()

	var out response[dayData]
	if err := c.get(ctx, u, &out); err != nil {
		return domain.DailySchedule{}, err
	}
	return c.toDaily(out.Data, day)
}

func (c *Client) Monthly(ctx context.Context, loc domain.Coordinates, method int, year int, month time.Month) ([]domain.DailySchedule, error) {
	if month < time.January || month > time.December {
		return nil, &ports.CodedError{Code: "invalid_params", Message: fmt.Sprintf("invalid month %d", month)}
	}
	q := coordsQuery(loc, method)
	q.Set("month", strconv.Itoa(int(month)))
	q.Set("year", strconv.Itoa(year))

	var out response[[]dayData]
	if err := c.get(ctx, c.endpoint+"/calendar?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	days := make([]domain.DailySchedule, 0, len(out.Data))
	for i, d := range out.Data {
		fallbackDay := time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
		sched, err := c.toDaily(d, fallbackDay)
		if err != nil {
			return nil, err
		}
		days = append(days, sched)
	}
	return days, nil
}

func (c *Client) toDaily(d dayData, requested time.Time) (domain.DailySchedule, error) {
	sched, err := domain.NewSchedule(d.Timings)
	if err != nil {
		return domain.DailySchedule{}, &ports.CodedError{Code: "invalid_payload", Message: "aladhan timings", Err: err}
	}
	date := domain.DateKey(requested)
	if g, err := time.Parse("02-01-2006", d.Date.Gregorian.Date); err == nil {
		date = domain.DateKey(g)
	}
	return domain.DailySchedule{
		Date:     date,
		Readable: d.Date.Readable,
		Hijri: domain.HijriDate{
			Day:     d.Date.Hijri.Day,
			Month:   d.Date.Hijri.Month.En,
			MonthAr: d.Date.Hijri.Month.Ar,
			Year:    d.Date.Hijri.Year,
		},
		Timezone:  d.Meta.Timezone,
		Timings:   sched,
		Source:    domain.SourceRemote,
		FetchedAt: c.now().UTC(),
	}, nil
}

func coordsQuery(loc domain.Coordinates, method int) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
	if method <= 0 {
		method = domain.MethodKemenag
	}
	q.Set("method", strconv.Itoa(method))
	return q
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &ports.CodedError{Code: "invalid_params", Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "adzan-server")

	resp, err := c.client.Do(req)
	if err != nil {
		return &ports.CodedError{Code: "network_error", Message: "aladhan", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &ports.CodedError{Code: "http_status", Message: "aladhan http error: " + resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ports.CodedError{Code: "invalid_payload", Message: "aladhan decode", Err: err}
	}
	return nil
}
