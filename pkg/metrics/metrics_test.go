package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	c := metrics.New()
	hooks := c.Hooks()
	ctx := context.Background()

	resp := domain.Response{Label: domain.LabelBefore, Code: domain.CodeBefore}
	hooks.OnPhase(ctx, &domain.PhaseEvent{Phase: domain.PhaseStaircases})
	hooks.OnTrial(ctx, &domain.TrialEvent{Record: domain.NewTrialRecord("400_1", 1, 400, resp, 50), Value: 400})
	hooks.OnTrial(ctx, &domain.TrialEvent{Record: domain.NewTrialRecord("400_1", 2, 400, resp, 50), Value: 450})
	hooks.OnReversal(ctx, &domain.ReversalEvent{Staircase: "400_1", Count: 1, Value: 450})
	hooks.OnStaircaseDone(ctx, &domain.StaircaseEvent{Staircase: "400_1", Threshold: 425, HasThreshold: true})

	n, err := testutil.GatherAndCount(c.Registry(), "hdt_trials_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP hdt_trials_total Total number of administered trials
# TYPE hdt_trials_total counter
hdt_trials_total{block="400_1",response_code="0"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "hdt_trials_total"))

	thresholds := `
# HELP hdt_staircase_threshold_ms Mean reversal value of a finished staircase
# TYPE hdt_staircase_threshold_ms gauge
hdt_staircase_threshold_ms{staircase="400_1"} 425
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(thresholds), "hdt_staircase_threshold_ms"))
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New()
	c.Hooks().OnReversal(context.Background(), &domain.ReversalEvent{Staircase: "100_1", Count: 1})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hdt_reversals_total{staircase="100_1"} 1`)
}
