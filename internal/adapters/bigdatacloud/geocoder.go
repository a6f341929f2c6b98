package bigdatacloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const DefaultEndpoint = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// UnknownCity est renvoyé quand le service répond sans ville ni localité.
const UnknownCity = "Lokasi Aktif"

type Geocoder struct {
	endpoint string
	language string
	client   *http.Client
}

func NewGeocoder() *Geocoder {
	return &Geocoder{
		endpoint: DefaultEndpoint,
		language: "id",
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *Geocoder) WithEndpoint(endpoint string) *Geocoder {
	if strings.TrimSpace(endpoint) != "" {
		g.endpoint = strings.TrimSpace(endpoint)
	}
	return g
}

func (g *Geocoder) WithLanguage(lang string) *Geocoder {
	if strings.TrimSpace(lang) != "" {
		g.language = strings.TrimSpace(lang)
	}
	return g
}

type reverseResponse struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
}

func (g *Geocoder) Reverse(ctx context.Context, at domain.Coordinates) (domain.Location, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', 6, 64))
	q.Set("localityLanguage", g.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Location{}, &ports.CodedError{Code: "network_error", Message: "bigdatacloud", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.Location{}, &ports.CodedError{Code: "http_status", Message: "bigdatacloud http error: " + resp.Status}
	}

	var out reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Location{}, &ports.CodedError{Code: "invalid_payload", Message: "bigdatacloud decode", Err: err}
	}

	city := strings.TrimSpace(out.City)
	if city == "" {
		city = strings.TrimSpace(out.Locality)
	}
	if city == "" {
		city = UnknownCity
	}
	return domain.Location{Coordinates: at, City: city, Country: out.CountryName}, nil
}
