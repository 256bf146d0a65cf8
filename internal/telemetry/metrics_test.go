package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/devstack/internal/domain"
)

func newTestRun() *domain.Run {
	plan := domain.NewPlan(
		domain.ChildSpec{Name: "livekit", Command: []string{"livekit-server"}},
		domain.ChildSpec{Name: "agent", Command: []string{"uv"}},
		domain.ChildSpec{Name: "frontend", Command: []string{"pnpm"}},
	)
	return domain.NewRun(plan, "continue")
}

func TestMetrics_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()
	run := newTestRun()

	run.Children[0].MarkRunning(10)
	run.Children[1].MarkRunning(11)
	run.Children[2].MarkSpawnFailed("executable file not found")
	run.MarkRunning()

	m.RunStarted(ctx, run)
	for _, c := range run.Children {
		m.ChildStarted(ctx, run, c)
	}

	if got := testutil.ToFloat64(m.childrenActive); got != 2 {
		t.Errorf("expected 2 running, got %v", got)
	}
	if got := testutil.ToFloat64(m.spawnFailures.WithLabelValues("frontend")); got != 1 {
		t.Errorf("expected 1 spawn failure, got %v", got)
	}

	run.Children[0].MarkExited(0, "", false)
	run.Children[1].MarkExited(1, "", false)
	m.ChildExited(ctx, run, run.Children[0])
	m.ChildExited(ctx, run, run.Children[1])
	run.MarkDone()
	m.RunFinished(ctx, run)

	if got := testutil.ToFloat64(m.childrenActive); got != 0 {
		t.Errorf("expected 0 running, got %v", got)
	}
	if got := testutil.ToFloat64(m.childExits.WithLabelValues("agent", "FAILED")); got != 1 {
		t.Errorf("expected 1 failed exit for agent, got %v", got)
	}
	if got := testutil.ToFloat64(m.childExits.WithLabelValues("livekit", "EXITED")); got != 1 {
		t.Errorf("expected 1 clean exit for livekit, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsTotal); got != 1 {
		t.Errorf("expected 1 run, got %v", got)
	}
}

func TestNewMux(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.runsTotal.Inc()

	server := httptest.NewServer(NewMux(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "devstack_runs_total 1") {
		t.Errorf("expected devstack_runs_total in output, got:\n%s", body)
	}
}
