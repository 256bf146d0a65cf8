package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/devstack/internal/domain"
)

func TestParse_Valid(t *testing.T) {
	data := []byte(`{
		"children": [
			{"name": "livekit", "command": ["livekit-server", "--dev"]},
			{"name": "frontend", "command": ["pnpm", "dev"], "dir": "frontend", "env": {"PORT": "3000"}}
		]
	}`)

	specs, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 children, got %d", len(specs))
	}
	if specs[1].Dir != "frontend" {
		t.Errorf("expected dir frontend, got %s", specs[1].Dir)
	}
	if specs[1].Env["PORT"] != "3000" {
		t.Errorf("expected PORT=3000, got %s", specs[1].Env["PORT"])
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"children": [{"name": "a", "cmd": ["true"]}]}`))
	if !errors.Is(err, ErrInvalidPlanFile) {
		t.Errorf("expected ErrInvalidPlanFile, got %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		specs   []domain.ChildSpec
		wantErr error
	}{
		{
			name:    "empty plan",
			specs:   nil,
			wantErr: ErrEmptyPlan,
		},
		{
			name:    "empty name",
			specs:   []domain.ChildSpec{{Command: []string{"true"}}},
			wantErr: ErrEmptyName,
		},
		{
			name: "duplicate name",
			specs: []domain.ChildSpec{
				{Name: "a", Command: []string{"true"}},
				{Name: "a", Command: []string{"false"}},
			},
			wantErr: ErrDuplicateName,
		},
		{
			name:    "empty command",
			specs:   []domain.ChildSpec{{Name: "a"}},
			wantErr: ErrEmptyCommand,
		},
		{
			name:    "empty executable",
			specs:   []domain.ChildSpec{{Name: "a", Command: []string{""}}},
			wantErr: ErrEmptyCommand,
		},
		{
			name:  "default plan",
			specs: DefaultSpecs(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.specs)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ValidationErrorContext(t *testing.T) {
	err := Validate([]domain.ChildSpec{
		{Name: "ok", Command: []string{"true"}},
		{Name: "broken"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Child != "broken" || vErr.Index != 1 || vErr.Field != "command" {
		t.Errorf("unexpected context: %+v", vErr)
	}
}

func TestBuild_Default(t *testing.T) {
	root := t.TempDir()

	p, err := Build(Options{Root: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 children, got %d", p.Len())
	}

	agent := p.At(1)
	if agent.Command[3] != "src/agent.py" {
		t.Errorf("expected src/agent.py, got %s", agent.Command[3])
	}
	if agent.Dir != filepath.Join(root, "backend") {
		t.Errorf("expected dir %s, got %s", filepath.Join(root, "backend"), agent.Dir)
	}
	if p.At(0).Dir != root {
		t.Errorf("expected livekit dir %s, got %s", root, p.At(0).Dir)
	}
}

func TestBuild_AgentVar(t *testing.T) {
	p, err := Build(Options{Vars: map[string]string{"agent": "foodAgent"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.At(1).Command[3]; got != "src/foodAgent.py" {
		t.Errorf("expected src/foodAgent.py, got %s", got)
	}
}

func TestBuild_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	data := `{"children": [
		{"name": "echo", "command": ["echo", "{{ .Vars.greeting }}"], "dir": "/tmp"},
		{"name": "worker", "command": ["sleep", "1"]}
	]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Build(Options{Path: path, Root: dir, Vars: map[string]string{"greeting": "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := p.At(0).Command[1]; got != "hi" {
		t.Errorf("expected hi, got %s", got)
	}
	// Абсолютный путь не меняется
	if got := p.At(0).Dir; got != "/tmp" {
		t.Errorf("expected /tmp, got %s", got)
	}
	// Пустой dir — корень проекта
	if got := p.At(1).Dir; got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
}

func TestBuild_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(`{"children": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Build(Options{Path: path})
	if !errors.Is(err, ErrEmptyPlan) {
		t.Errorf("expected ErrEmptyPlan, got %v", err)
	}
}
