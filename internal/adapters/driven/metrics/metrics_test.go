package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestPrometheus_Counters(t *testing.T) {
	p := New()

	p.IngestCompleted("ok")
	p.IngestCompleted("ok")
	p.IngestCompleted("input")
	p.QueryCompleted("answered")
	p.InconsistencyObserved(driven.ConsistencyOrphanVector, 2)
	p.InconsistencyObserved(driven.ConsistencyDanglingPosition, 0)

	assert.InDelta(t, 2, testutil.ToFloat64(p.ingests.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(p.ingests.WithLabelValues("input")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(p.queries.WithLabelValues("answered")), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(p.inconsistency.WithLabelValues("orphan_vector")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(p.inconsistency))
}

func TestPrometheus_Generation(t *testing.T) {
	p := New()

	p.GenerationObserved(time.Second, nil)
	p.GenerationObserved(2*time.Second, errors.New("timeout"))

	assert.Equal(t, 2, testutil.CollectAndCount(p.generation))
}

func TestPrometheus_Handler(t *testing.T) {
	p := New()
	p.QueryCompleted("no confident answer")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `docqa_queries_total{outcome="no confident answer"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNop(t *testing.T) {
	var m driven.Metrics = Nop{}
	m.IngestCompleted("ok")
	m.QueryCompleted("answered")
	m.GenerationObserved(time.Second, nil)
	m.InconsistencyObserved("orphan_vector", 1)
}
