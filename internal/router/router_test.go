package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
	"github.com/106shubh/JeevanDhara-sub000/internal/ports/weather"
)

type fakeWeather struct {
	obs weather.Observation
}

func (f *fakeWeather) Current(ctx context.Context, lat, lon float64) (weather.Observation, error) {
	return f.obs, nil
}

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	t.Setenv("DB_DSN", "")

	app := New(Options{
		Logger: logger.New(logger.Options{Level: logger.Error}),
		Weather: &fakeWeather{obs: weather.Observation{
			TemperatureC: 24.5,
			HumidityPct:  61,
			ObservedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
	})

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)
	return app, srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, userID string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	_, srv := newTestApp(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAlertsRequireAuth(t *testing.T) {
	_, srv := newTestApp(t)

	resp := doJSON(t, srv, http.MethodGet, "/alerts", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWithdrawalPreviewIsPublic(t *testing.T) {
	_, srv := newTestApp(t)

	var out struct {
		Days int `json:"days"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/withdrawal/preview?drug=Amoxicillin&dosage=5mg/kg&species=cattle", "", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if out.Days != 14 {
		t.Fatalf("expected 14 days, got %d", out.Days)
	}
}

func TestWeatherWidget(t *testing.T) {
	_, srv := newTestApp(t)

	var out struct {
		TemperatureC float64 `json:"temperature_c"`
		HumidityPct  int     `json:"humidity_pct"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/weather?lat=-12.05&lon=-77.04", "", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if out.TemperatureC != 24.5 || out.HumidityPct != 61 {
		t.Fatalf("unexpected payload: %+v", out)
	}

	resp = doJSON(t, srv, http.MethodGet, "/weather?lat=abc", "", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on bad coords, got %d", resp.StatusCode)
	}
}

// TestComplianceFlow recorre el flujo completo contra el stack
// in-memory: registrar animal, loguear tratamiento, ver la alerta
// pending, descartarla y verificar el aislamiento entre usuarios.
func TestComplianceFlow(t *testing.T) {
	_, srv := newTestApp(t)

	var animal struct {
		ID        string `json:"id"`
		TagNumber string `json:"tag_number"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/animals", "farmer-1", map[string]any{
		"tag_number": "C-102",
		"species":    "cattle",
		"name":       "Aurora",
	}, &animal)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create animal: expected 201, got %d", resp.StatusCode)
	}

	var treatment struct {
		ID             string `json:"id"`
		WithdrawalDays int    `json:"withdrawal_days"`
	}
	resp = doJSON(t, srv, http.MethodPost, "/animals/"+animal.ID+"/treatments", "farmer-1", map[string]any{
		"drug_name": "Amoxicillin",
		"dosage":    "5mg/kg",
		"reason":    "mastitis",
	}, &treatment)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log treatment: expected 201, got %d", resp.StatusCode)
	}
	if treatment.WithdrawalDays != 14 {
		t.Fatalf("expected 14 withdrawal days, got %d", treatment.WithdrawalDays)
	}

	// otro usuario no puede tocar el animal ajeno
	resp = doJSON(t, srv, http.MethodPost, "/animals/"+animal.ID+"/treatments", "farmer-2", map[string]any{
		"drug_name": "Amoxicillin",
	}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign treatment: expected 403, got %d", resp.StatusCode)
	}

	var mine []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		CanDismiss bool   `json:"can_dismiss"`
		AnimalTag  string `json:"animal_tag"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/alerts", "farmer-1", nil, &mine)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list alerts: expected 200, got %d", resp.StatusCode)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(mine))
	}
	if mine[0].Type != "pending" || !mine[0].CanDismiss || mine[0].AnimalTag != "C-102" {
		t.Fatalf("unexpected alert: %+v", mine[0])
	}

	var theirs []json.RawMessage
	doJSON(t, srv, http.MethodGet, "/alerts", "farmer-2", nil, &theirs)
	if len(theirs) != 0 {
		t.Fatalf("alerts leaked across users: %d", len(theirs))
	}

	var grouped map[string][]json.RawMessage
	doJSON(t, srv, http.MethodGet, "/alerts/grouped", "farmer-1", nil, &grouped)
	if len(grouped) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(grouped))
	}
	if len(grouped["pending"]) != 1 {
		t.Fatalf("expected alert in pending bucket: %+v", grouped)
	}

	// descartar la alerta de otro no revela su existencia
	resp = doJSON(t, srv, http.MethodPost, "/alerts/"+mine[0].ID+"/dismiss", "farmer-2", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign dismiss: expected 404, got %d", resp.StatusCode)
	}

	var dismissed struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, srv, http.MethodPost, "/alerts/"+mine[0].ID+"/dismiss", "farmer-1", nil, &dismissed)
	if resp.StatusCode != http.StatusOK || dismissed.Status != "dismissed" {
		t.Fatalf("dismiss: expected 200/dismissed, got %d/%s", resp.StatusCode, dismissed.Status)
	}

	// re-descartar es idempotente
	resp = doJSON(t, srv, http.MethodPost, "/alerts/"+mine[0].ID+"/dismiss", "farmer-1", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("repeat dismiss: expected 200, got %d", resp.StatusCode)
	}

	mine = nil
	doJSON(t, srv, http.MethodGet, "/alerts", "farmer-1", nil, &mine)
	if len(mine) != 0 {
		t.Fatalf("dismissed alert still listed: %+v", mine)
	}
}

func TestWebSocketPushesInserts(t *testing.T) {
	app, srv := newTestApp(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts"
	header := http.Header{"X-Debug-User-ID": []string{"farmer-1"}}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	if _, err := app.Alerts.Raise(context.Background(), alerts.RaiseInput{
		UserID:     "farmer-1",
		Type:       alerts.TypeUrgent,
		Title:      "Withdrawal period ending",
		Message:    "C-102: 2 day(s) left",
		CanDismiss: false,
	}); err != nil {
		t.Fatalf("raise: %v", err)
	}

	var frame struct {
		Kind  string `json:"kind"`
		Alert struct {
			Type       string `json:"type"`
			Title      string `json:"title"`
			CanDismiss bool   `json:"can_dismiss"`
		} `json:"alert"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	if frame.Kind != "insert" {
		t.Fatalf("expected insert frame, got %s", frame.Kind)
	}
	if frame.Alert.Type != "urgent" || frame.Alert.Title != "Withdrawal period ending" {
		t.Fatalf("unexpected frame payload: %+v", frame.Alert)
	}

	// eventos de otros usuarios no viajan por esta conexión
	if _, err := app.Alerts.Raise(context.Background(), alerts.RaiseInput{
		UserID: "farmer-2",
		Type:   alerts.TypePending,
		Title:  "other user's alert",
	}); err != nil {
		t.Fatalf("raise: %v", err)
	}
	if _, err := app.Alerts.Raise(context.Background(), alerts.RaiseInput{
		UserID: "farmer-1",
		Type:   alerts.TypePending,
		Title:  "marker",
	}); err != nil {
		t.Fatalf("raise: %v", err)
	}

	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Alert.Title != "marker" {
		t.Fatalf("received foreign event: %+v", frame.Alert)
	}
}

func TestWebSocketRequiresAuth(t *testing.T) {
	_, srv := newTestApp(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure without auth")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestStreamOverServiceConverges(t *testing.T) {
	app, _ := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := alerts.Open(ctx, "farmer-9", app.Alerts, nil, logger.New(logger.Options{Level: logger.Error}))
	defer s.Close()

	a, err := app.Alerts.Raise(context.Background(), alerts.RaiseInput{
		UserID:     "farmer-9",
		Type:       alerts.TypePending,
		Title:      "Withdrawal period active",
		CanDismiss: true,
	})
	if err != nil {
		t.Fatalf("raise: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Snapshot()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := s.Snapshot()
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("stream did not converge: %+v", got)
	}

	if err := s.Dismiss(context.Background(), a.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("dismissed alert still in view: %+v", got)
	}

	items, err := app.Alerts.ListActive(context.Background(), "farmer-9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("dismissal not persisted: %+v", items)
	}
}
