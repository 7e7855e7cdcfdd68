package rosterrouter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterhandlers "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/handlers"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

type emptyRoster struct{}

func (emptyRoster) GetPlayer(context.Context, string) (*rosterdomain.PlayerRecord, error) {
	return nil, rosterdb.ErrNotFound
}

func (emptyRoster) PlayerHistory(context.Context, string) ([]rosterdomain.HistoryEntry, error) {
	return nil, nil
}

func (emptyRoster) FuzzyMatches(context.Context, int) ([]rosterdomain.FuzzyMatch, error) {
	return nil, nil
}

func (emptyRoster) Stats(context.Context) (*rosterdb.Stats, error) {
	return &rosterdb.Stats{}, nil
}

type noMatch struct{}

func (noMatch) Resolve(context.Context, identityservice.Query) (identityservice.Outcome, error) {
	return identityservice.Outcome{}, nil
}

func TestNewRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "ttbw_router_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := rosterhandlers.NewRosterHandlers(emptyRoster{}, noMatch{},
		slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))
	router := NewRouter(h, reg)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/players/NU1", http.StatusNotFound},
		{http.MethodGet, "/players/NU1/history", http.StatusNotFound},
		{http.MethodGet, "/fuzzy-matches", http.StatusOK},
		{http.MethodGet, "/stats", http.StatusOK},
		{http.MethodGet, "/resolve", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), "ttbw_router_test_total 1")
}
