package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"medifind/internal/domain"
)

// ReverseGeocoder превращает координаты в человекочитаемый адрес
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (domain.DetectedLocation, error)
}

// NominatimClient обратное геокодирование через OSM Nominatim-совместимый сервис
type NominatimClient struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		BaseURL:   baseURL,
		UserAgent: "medifind/1.0",
		HTTP:      &http.Client{},
	}
}

var _ ReverseGeocoder = (*NominatimClient)(nil)

func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (domain.DetectedLocation, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("format", "jsonv2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.DetectedLocation{}, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.DetectedLocation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.DetectedLocation{}, fmt.Errorf("reverse geocode: HTTP %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			Country string `json:"country"`
			State   string `json:"state"`
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.DetectedLocation{}, err
	}

	city := body.Address.City
	if city == "" {
		city = body.Address.Town
	}
	if city == "" {
		city = body.Address.Village
	}
	return domain.DetectedLocation{
		Country:        body.Address.Country,
		State:          body.Address.State,
		City:           city,
		DisplayAddress: body.DisplayName,
		Coordinates:    &domain.Coordinates{Lat: lat, Lng: lng},
	}, nil
}
