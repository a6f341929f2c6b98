package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/httpjson"
)

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *apiClient) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var e httpjson.ErrorBody
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return b, fmt.Errorf("%s (HTTP %d)", e.Error, resp.StatusCode)
		}
		return b, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return b, nil
}

func (c *apiClient) printJSON(w io.Writer, method, path string) error {
	b, err := c.do(method, path)
	if len(b) > 0 {
		var pretty any
		if json.Unmarshal(b, &pretty) == nil {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			_ = enc.Encode(pretty)
		} else {
			fmt.Fprintln(w, string(b))
		}
	}
	return err
}

func (c *apiClient) printToday(w io.Writer) error {
	b, err := c.do("GET", "/api/v1/prayer/today")
	if err != nil {
		return err
	}
	var view app.TodayView
	if err := json.Unmarshal(b, &view); err != nil {
		return err
	}
	writeToday(w, view)
	return nil
}

func (c *apiClient) printNext(w io.Writer) error {
	b, err := c.do("GET", "/api/v1/prayer/next")
	if err != nil {
		return err
	}
	var next domain.NextPrayerCountdown
	if err := json.Unmarshal(b, &next); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s (%s)\n", next.Name, next.Time, next.RemainingLabel)
	return nil
}

func writeToday(w io.Writer, view app.TodayView) {
	header := view.Date
	if view.HijriLabel != "" {
		header += " / " + view.HijriLabel
	}
	if view.Place != nil && view.Place.City != "" {
		header += " - " + view.Place.City
	}
	fmt.Fprintln(w, header)
	if view.Source != domain.SourceRemote {
		fmt.Fprintf(w, "(source: %s)\n", view.Source)
	}
	for _, p := range view.Prayers {
		marker := " "
		if p.Key == view.Active {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-8s %s", marker, p.Name, p.Time)
		if p.Label != "" {
			line += "  " + p.Label
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Berikutnya: %s %s (%s)\n", view.Next.Name, view.Next.Time, view.Next.RemainingLabel)
}
