package plan

import (
	"errors"
	"testing"

	"github.com/shaiso/devstack/internal/domain"
)

func TestRender(t *testing.T) {
	ctx := NewContext(map[string]string{"agent": "SDR_Agent", "empty": ""})
	ctx.Env["HOME"] = "/home/dev"

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"plain string", "pnpm", "pnpm"},
		{"var", "src/{{ .Vars.agent }}.py", "src/SDR_Agent.py"},
		{"env", "{{ .Env.HOME }}/bin", "/home/dev/bin"},
		{"lower", "{{ lower .Vars.agent }}", "sdr_agent"},
		{"default", `{{ default "fallback" .Vars.empty }}`, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_MissingVar(t *testing.T) {
	_, err := Render("{{ .Vars.missing }}", NewContext(nil))
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}

func TestRender_ParseError(t *testing.T) {
	_, err := Render("{{ .Vars.agent", NewContext(nil))
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}

func TestRenderSpec(t *testing.T) {
	spec := domain.ChildSpec{
		Name:    "{{ .Vars.agent }}",
		Command: []string{"python", "src/{{ .Vars.agent }}.py"},
		Dir:     "backend",
		Env:     map[string]string{"AGENT": "{{ .Vars.agent }}"},
	}

	out, err := RenderSpec(spec, NewContext(map[string]string{"agent": "foodAgent"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "foodAgent" || out.Command[1] != "src/foodAgent.py" || out.Env["AGENT"] != "foodAgent" {
		t.Errorf("unexpected render result: %+v", out)
	}
	// Исходный spec не изменяется
	if spec.Command[1] != "src/{{ .Vars.agent }}.py" {
		t.Error("source spec was mutated")
	}
}
