package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"
)

var errBoom = errors.New("boom")

func testLogger(t *testing.T) logger.Logger {
	return logger.FromZap(zaptest.NewLogger(t))
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
}

func testTables() *pnr.MapTables {
	tables := pnr.NewMapTables()
	tables.Airports["KGL"] = pnr.AirportRecord{Code: "KGL", City: "Kigali", Country: "Rwanda", Name: "Kigali International Airport", Timezone: "Africa/Kigali"}
	tables.Airports["DAR"] = pnr.AirportRecord{Code: "DAR", City: "Dar es Salaam", Country: "Tanzania", Name: "Julius Nyerere International Airport", Timezone: "Africa/Dar_es_Salaam"}
	tables.Airlines["WB"] = "RwandAir"
	return tables
}

func fixedNow() time.Time {
	return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
}

type fakeConversionRepo struct {
	mu      sync.Mutex
	records []*entity.ConversionRecord
	err     error
}

func (r *fakeConversionRepo) Save(ctx context.Context, record *entity.ConversionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	record.ID = fmt.Sprintf("rec-%d", len(r.records)+1)
	r.records = append(r.records, record)
	return nil
}

func (r *fakeConversionRepo) FindByID(ctx context.Context, id string) (*entity.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConversionRepo) FindRecent(ctx context.Context, suspiciousOnly bool, limit int) ([]*entity.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ConversionRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if !suspiciousOnly || r.records[i].Suspicious {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.Alert
	err    error
}

func (r *fakeAlertRepo) Send(ctx context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, alert)
	return nil
}

type processedMark struct {
	status        string
	processorType string
	errorDetail   string
	extracted     map[string]interface{}
}

type fakeEmailRepo struct {
	mu         sync.Mutex
	pending    []*entity.Email
	statuses   map[string][]string
	marks      map[string]processedMark
	steps      map[string]entity.ProcessSteps
	resetCalls int
	findErr    error
}

func newFakeEmailRepo(pending ...*entity.Email) *fakeEmailRepo {
	return &fakeEmailRepo{
		pending:  pending,
		statuses: make(map[string][]string),
		marks:    make(map[string]processedMark),
		steps:    make(map[string]entity.ProcessSteps),
	}
}

func (r *fakeEmailRepo) Save(ctx context.Context, email *entity.Email) error { return nil }

func (r *fakeEmailRepo) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.pending, nil
}

func (r *fakeEmailRepo) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeEmailRepo) ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetCalls++
	return 0, nil
}

func (r *fakeEmailRepo) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	return map[string]*entity.Email{}, nil
}

func (r *fakeEmailRepo) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[emailID] = append(r.statuses[emailID], status)
	return nil
}

func (r *fakeEmailRepo) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks[emailID] = processedMark{status, processorType, errorDetail, extractedData}
	return nil
}

func (r *fakeEmailRepo) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[emailID] = steps
	return nil
}
