package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/platform/httpclient"
	"github.com/106shubh/JeevanDhara-sub000/internal/ports/weather"
)

var (
	ErrUpstream = errors.New("open-meteo upstream error")
)

const defaultBaseURL = "https://api.open-meteo.com"

// Client implementa weather.Provider contra Open-Meteo.
// No requiere API key; BaseURL se puede overridear para tests.
type Client struct {
	http *httpclient.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type currentResponse struct {
	Current struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		Humidity      int     `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WindSpeed     float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

func (c *Client) Current(ctx context.Context, lat, lon float64) (weather.Observation, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m")

	var out currentResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/forecast?"+q.Encode(), nil, nil, &out)
	if err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// Open-Meteo devuelve hora local sin zona ("2026-08-31T10:00")
	observed, err := time.Parse("2006-01-02T15:04", out.Current.Time)
	if err != nil {
		observed = time.Time{}
	}

	return weather.Observation{
		TemperatureC:    out.Current.Temperature,
		HumidityPct:     out.Current.Humidity,
		PrecipitationMm: out.Current.Precipitation,
		WindSpeedKmh:    out.Current.WindSpeed,
		ObservedAt:      observed,
	}, nil
}
