package weather

import (
	"context"
	"time"
)

// Observation son las condiciones actuales para el widget del dashboard.
type Observation struct {
	TemperatureC    float64
	HumidityPct     int
	PrecipitationMm float64
	WindSpeedKmh    float64
	ObservedAt      time.Time
}

type Provider interface {
	Current(ctx context.Context, lat, lon float64) (Observation, error)
}
