package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"
)

const maxInput = 256

func testTables() *pnr.MapTables {
	tables := pnr.NewMapTables()
	tables.Airports["KGL"] = pnr.AirportRecord{Code: "KGL", City: "Kigali", Name: "Kigali International Airport", Timezone: "Africa/Kigali"}
	tables.Airports["DAR"] = pnr.AirportRecord{Code: "DAR", City: "Dar es Salaam", Name: "Julius Nyerere International Airport", Timezone: "Africa/Dar_es_Salaam"}
	tables.Airlines["WB"] = "RwandAir"
	return tables
}

func newTestServer(t *testing.T, cfg Config) (http.Handler, *prometheus.Registry) {
	t.Helper()
	log := logger.FromZap(zaptest.NewLogger(t))
	reg := prometheus.NewRegistry()
	converter := usecase.NewConverterService(
		pnr.NewParser(testTables()),
		nil,
		nil,
		metrics.NewMetricsWith(reg, "test"),
		usecase.ConverterDefaults{
			MaxInputBytes:     cfg.MaxInputBytes,
			SegmentTimeFormat: pnr.Format24h,
			TransitTimeFormat: pnr.Format24h,
		},
		log,
	)
	return NewServer(converter, reg, cfg, log).Router(), reg
}

func post(h http.Handler, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type convertBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Attempted bool   `json:"pnrProcessingAttempted"`
	Result    struct {
		Flights []struct {
			FlightNumber string `json:"flightNumber"`
			Departure    struct {
				Time string `json:"time"`
			} `json:"departure"`
		} `json:"flights"`
		Passengers []string `json:"passengers"`
	} `json:"result"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) convertBody {
	t.Helper()
	var body convertBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "Healthy" {
		t.Errorf("GET /health = %d %q, want 200 Healthy", rec.Code, rec.Body.String())
	}
}

func TestConvertEndpoint(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput})

	rec := post(h, `{"pnrText": "1 wb 464 y 15aug kgldar hk1 1005 1245\n1.doe/john mr", "options": {"segmentTimeFormat": "12H"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if !body.Success || !body.Attempted {
		t.Errorf("success = %v, attempted = %v", body.Success, body.Attempted)
	}
	if len(body.Result.Flights) != 1 {
		t.Fatalf("got %d flights, want 1", len(body.Result.Flights))
	}
	if got := body.Result.Flights[0].Departure.Time; got != "10:05 AM" {
		t.Errorf("departure time = %q, want 10:05 AM", got)
	}
	if len(body.Result.Passengers) != 1 || body.Result.Passengers[0] != "DOE/JOHN MR" {
		t.Errorf("passengers = %v", body.Result.Passengers)
	}
}

func TestConvertEndpointEmptyText(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput})

	rec := post(h, `{"pnrText": ""}`)
	body := decode(t, rec)
	if rec.Code != http.StatusOK || !body.Success || body.Attempted {
		t.Errorf("status = %d, body = %+v", rec.Code, body)
	}
	if !strings.Contains(rec.Body.String(), `"flights":[]`) {
		t.Errorf("body %s should carry an empty flight list", rec.Body.String())
	}
}

func TestConvertEndpointErrors(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"pnrText": `, http.StatusBadRequest},
		{"wrong type", `{"pnrText": 42}`, http.StatusBadRequest},
		{"text over limit", `{"pnrText": "` + strings.Repeat("A", maxInput+1) + `"}`, http.StatusRequestEntityTooLarge},
		{"body over limit", `{"pnrText": "` + strings.Repeat("A", 2*maxInput+jsonOverhead) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			body := decode(t, rec)
			if body.Success || body.Error == "" {
				t.Errorf("body = %+v, want failure with a message", body)
			}
			if !strings.Contains(rec.Body.String(), `"flights":[]`) {
				t.Errorf("error body %s should carry an empty flight list", rec.Body.String())
			}
		})
	}
}

type panickingConverter struct{}

func (panickingConverter) Convert(ctx context.Context, req usecase.ConvertRequest) (*usecase.ConvertResponse, error) {
	panic("reference table exploded")
}

func TestConvertEndpointRecoversPanics(t *testing.T) {
	log := logger.FromZap(zaptest.NewLogger(t))
	h := NewServer(panickingConverter{}, nil, Config{}, log).Router()

	rec := post(h, `{"pnrText": "X"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decode(t, rec); body.Success || body.Error != "reference table exploded" {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput, RateLimitRequests: 2, RateLimitWindow: time.Hour})

	for i := 0; i < 2; i++ {
		if rec := post(h, `{"pnrText": ""}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
	if rec := post(h, `{"pnrText": ""}`); rec.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", rec.Code)
	}
	if rec := post(h, `{"pnrText": ""}`, "X-Forwarded-For", "203.0.113.9"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput, CORSOrigins: []string{"https://app.example.com"}})

	rec := post(h, `{"pnrText": ""}`, "Origin", "https://app.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); rec.Code != http.StatusOK || got != "https://app.example.com" {
		t.Errorf("allowed origin: status = %d, header = %q", rec.Code, got)
	}

	if rec := post(h, `{"pnrText": ""}`, "Origin", "https://evil.example.com"); rec.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, Config{MaxInputBytes: maxInput})
	post(h, `{"pnrText": "HELLO"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `test_conversions_total{source="api"} 1`) {
		t.Errorf("GET /metrics = %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	l := newClientLimiter(1, time.Minute)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	if !l.allow("a", now) || l.allow("a", now) {
		t.Fatal("expected one request per minute")
	}
	if !l.allow("b", now.Add(2*time.Minute)) {
		t.Fatal("new client refused")
	}
	if _, ok := l.clients["a"]; ok {
		t.Error("idle client a not swept")
	}
}
