package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/hdt/pkg/adapters/memory"
	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/hdt/pkg/staircase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus ports.Status

func (f fixedStatus) Status() ports.Status { return ports.Status(f) }

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Recorder) {
	t.Helper()
	rec := memory.NewRecorder()
	ctx := context.Background()
	resp := domain.Response{Label: domain.LabelAfter, Code: domain.CodeAfter}
	require.NoError(t, rec.Append(ctx, domain.NewTrialRecord(domain.BlockTraining, 1, 100, resp, 70)))
	require.NoError(t, rec.Append(ctx, domain.NewTrialRecord("400_1", 1, 400, resp, 60)))

	status := fixedStatus{
		Participant: "001",
		Phase:       domain.PhaseStaircases,
		Staircase:   0,
		Staircases:  []staircase.Snapshot{{Name: "400_1", Value: 400}},
	}
	opts = append([]Option{WithRecords(rec)}, opts...)
	return NewServer(status, opts...), rec
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got ports.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "001", got.Participant)
	assert.Equal(t, domain.PhaseStaircases, got.Phase)
	require.Len(t, got.Staircases, 1)
	assert.Equal(t, 400.0, got.Staircases[0].Value)
}

func TestServer_Records(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/records", nil))
	var all []domain.TrialRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/records?block=400_1", nil))
	var filtered []domain.TrialRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "400_1", filtered[0].Block)
}

func TestServer_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, _ := newTestServer(t, WithCancel(cancel))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cancel", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestServer_CancelUnavailable(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cancel", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MetricsAndInfo(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hdt_trials_total 3\n"))
	})
	srv, _ := newTestServer(t, WithMetrics(metrics), WithVersion("1.2.3"))
	h := srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "hdt_trials_total 3")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
}

func TestSubscribeEvents_StreamsTrials(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return srv.Streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	resp := domain.Response{Label: domain.LabelBefore, Code: domain.CodeBefore}
	srv.Hooks().OnTrial(context.Background(), &domain.TrialEvent{
		Record: domain.NewTrialRecord("100_1", 3, 150, resp, 20),
		Signal: domain.SignalIncrease,
		Value:  150,
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: ping"))
	assert.Contains(t, body, "event: trial")
	assert.Contains(t, body, `"block":"100_1"`)
	assert.Equal(t, 0, srv.Streams.Subscribers())
}
