package plan

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeAgent(t *testing.T, root, name, body string) {
	t.Helper()
	dir := filepath.Join(root, AgentsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const agentBody = `
if __name__ == "__main__":
    cli.run_app(WorkerOptions(entrypoint_fnc=entrypoint))
`

func TestListAgents(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, root, "agent.py", agentBody)
	writeAgent(t, root, "foodAgent.py", agentBody)
	writeAgent(t, root, "catalog.py", "ITEMS = []\n")
	writeAgent(t, root, "notes.txt", agentBody)

	agents, err := ListAgents(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"agent", "foodAgent"}
	if !slices.Equal(agents, want) {
		t.Errorf("expected %v, got %v", want, agents)
	}
}

func TestListAgents_NoDir(t *testing.T) {
	agents, err := ListAgents(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agents) != 0 {
		t.Errorf("expected no agents, got %v", agents)
	}
}

func TestCheckAgent(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, root, "agent.py", agentBody)

	if err := CheckAgent(root, "agent"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckAgent(root, "ghost"); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("expected ErrUnknownAgent, got %v", err)
	}
	// Без backend/src проверка пропускается
	if err := CheckAgent(t.TempDir(), "anything"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
