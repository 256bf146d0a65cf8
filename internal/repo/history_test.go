package repo

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/devstack/internal/domain"
)

// memRuns — runWriter в памяти.
type memRuns struct {
	rows      map[uuid.UUID]domain.RunStatus
	calls     []string
	createErr error
}

func newMemRuns() *memRuns {
	return &memRuns{rows: make(map[uuid.UUID]domain.RunStatus)}
}

func (m *memRuns) Create(_ context.Context, run *domain.Run) error {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[run.ID] = run.Status
	return nil
}

func (m *memRuns) Finish(_ context.Context, run *domain.Run) error {
	m.calls = append(m.calls, "finish")
	if _, ok := m.rows[run.ID]; !ok {
		return ErrNotFound
	}
	m.rows[run.ID] = run.Status
	return nil
}

// memChildren — childWriter в памяти.
type memChildren struct {
	saved []string
}

func (m *memChildren) Save(_ context.Context, child *domain.Child) error {
	m.saved = append(m.saved, child.Name()+":"+child.Status.String())
	return nil
}

func finishedRun() *domain.Run {
	run := domain.NewRun(domain.NewPlan(
		domain.ChildSpec{Name: "livekit", Command: []string{"livekit-server", "--dev"}},
		domain.ChildSpec{Name: "agent", Command: []string{"uv", "run", "python", "src/agent.py", "dev"}},
	), "continue")
	run.MarkRunning()
	run.Children[0].MarkRunning(100)
	run.Children[0].MarkExited(0, "", false)
	run.Children[1].MarkSpawnFailed("executable not found")
	run.MarkDone()
	return run
}

func TestHistory_RunFinished(t *testing.T) {
	runs, children := newMemRuns(), &memChildren{}
	h := &History{runs: runs, children: children}
	run := finishedRun()
	runs.rows[run.ID] = domain.RunStatusRunning

	if err := h.RunFinished(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(runs.calls, []string{"finish"}) {
		t.Errorf("expected a single finish, got %v", runs.calls)
	}
	if runs.rows[run.ID] != domain.RunStatusDone {
		t.Errorf("expected DONE row, got %s", runs.rows[run.ID])
	}
	if len(children.saved) != 0 {
		t.Errorf("children are saved by their own events, got %v", children.saved)
	}
}

func TestHistory_RunFinished_RecreatesMissingRun(t *testing.T) {
	runs, children := newMemRuns(), &memChildren{}
	h := &History{runs: runs, children: children}
	run := finishedRun()

	if err := h.RunFinished(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"finish", "create", "finish"}; !slices.Equal(runs.calls, want) {
		t.Errorf("expected calls %v, got %v", want, runs.calls)
	}
	if runs.rows[run.ID] != domain.RunStatusDone {
		t.Errorf("expected DONE row, got %s", runs.rows[run.ID])
	}
	if want := []string{"livekit:EXITED", "agent:SPAWN_FAILED"}; !slices.Equal(children.saved, want) {
		t.Errorf("expected children %v, got %v", want, children.saved)
	}
}

func TestHistory_RunFinished_CreateFails(t *testing.T) {
	runs, children := newMemRuns(), &memChildren{}
	runs.createErr = errors.New("connection refused")
	h := &History{runs: runs, children: children}

	err := h.RunFinished(context.Background(), finishedRun())
	if !errors.Is(err, runs.createErr) {
		t.Errorf("expected create error, got %v", err)
	}
	if len(children.saved) != 0 {
		t.Errorf("children should not be saved without a run row, got %v", children.saved)
	}
}
