package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/106shubh/JeevanDhara-sub000/docs"
	"github.com/106shubh/JeevanDhara-sub000/internal/adapters/push"
	mem "github.com/106shubh/JeevanDhara-sub000/internal/adapters/storage/memory"
	pg "github.com/106shubh/JeevanDhara-sub000/internal/adapters/storage/postgres"
	"github.com/106shubh/JeevanDhara-sub000/internal/adapters/weather/openmeteo"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/animals"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/compliance"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/treatments"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/withdrawal"
	"github.com/106shubh/JeevanDhara-sub000/internal/middleware"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/bus"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
	"github.com/106shubh/JeevanDhara-sub000/internal/ports/auth"
	"github.com/106shubh/JeevanDhara-sub000/internal/ports/weather"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, intenta DB_DSN por env
	// y cae a in-memory.
	DB *sql.DB

	// Opcional: provider de clima; default Open-Meteo.
	Weather weather.Provider

	// Cortes de clasificación del check de compliance.
	// Zero value => DefaultThresholds.
	Thresholds withdrawal.Thresholds

	// Opcional: logger; default NewFromEnv.
	Logger logger.Logger
}

// App agrupa lo que main necesita correr: el handler HTTP y el
// checker de compliance (que main agenda con su propio intervalo).
type App struct {
	Handler http.Handler
	Checker *compliance.Checker
	Alerts  *alerts.Service
}

func New(opts Options) *App {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		animalRepo    animals.Repository
		treatmentRepo treatments.Repository
		alertRepo     alerts.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to in-memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		animalRepo = pg.NewAnimalsRepo(db)
		treatmentRepo = pg.NewTreatmentsRepo(db)
		alertRepo = pg.NewAlertsRepo(db)
	} else {
		animalRepo = mem.NewAnimalsRepo()
		treatmentRepo = mem.NewTreatmentsRepo()
		alertRepo = mem.NewAlertsRepo()
	}

	// Canal push in-process, un topic por usuario
	alertBus := bus.New[alerts.Event]()

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo)
	alertsSvc := alerts.NewService(alertRepo, alertBus)
	treatmentsSvc := treatments.NewService(treatmentRepo, alertsSvc)

	th := opts.Thresholds
	if th == (withdrawal.Thresholds{}) {
		th = withdrawal.DefaultThresholds()
	}
	checker := compliance.NewChecker(treatmentRepo, animalsSvc, alertsSvc, th, log)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc)
	treatments.RegisterRoutes(r, treatmentsSvc, animalsSvc)
	alerts.RegisterRoutes(r, alertsSvc)

	// Push por WebSocket
	pushHandler := push.NewHandler(alertsSvc, log)
	r.Get("/ws/alerts", pushHandler.ServeAlerts)

	// Clima para el widget del dashboard
	provider := opts.Weather
	if provider == nil {
		if c, err := openmeteo.NewClient(openmeteo.Config{BaseURL: os.Getenv("WEATHER_BASE_URL")}); err == nil {
			provider = c
		}
	}
	r.Get("/weather", weatherHandler(provider, log))

	r.Get("/swagger/*", httpSwagger.Handler())

	return &App{
		Handler: r,
		Checker: checker,
		Alerts:  alertsSvc,
	}
}

// NewRouter existe para consumidores que solo quieren el handler
// (tests, embedding).
func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

type weatherResponse struct {
	TemperatureC    float64   `json:"temperature_c"`
	HumidityPct     int       `json:"humidity_pct"`
	PrecipitationMm float64   `json:"precipitation_mm"`
	WindSpeedKmh    float64   `json:"wind_speed_kmh"`
	ObservedAt      time.Time `json:"observed_at"`
}

func weatherHandler(provider weather.Provider, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil {
			http.Error(w, "weather not configured", http.StatusServiceUnavailable)
			return
		}

		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if errLat != nil || errLon != nil {
			http.Error(w, "lat and lon query params required", http.StatusBadRequest)
			return
		}

		obs, err := provider.Current(r.Context(), lat, lon)
		if err != nil {
			log.Warn("weather fetch failed", map[string]any{"error": err.Error()})
			http.Error(w, "weather unavailable", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(weatherResponse{
			TemperatureC:    obs.TemperatureC,
			HumidityPct:     obs.HumidityPct,
			PrecipitationMm: obs.PrecipitationMm,
			WindSpeedKmh:    obs.WindSpeedKmh,
			ObservedAt:      obs.ObservedAt,
		})
	}
}
