package plan

import "github.com/shaiso/devstack/internal/domain"

// DefaultAgent — точка входа backend-агента по умолчанию (backend/src/agent.py).
const DefaultAgent = "agent"

// DefaultSpecs возвращает шаблоны плана по умолчанию.
//
// Порядок: media server, backend agent, frontend dev server.
// Команда агента собирается из {{ .Vars.agent }}.
func DefaultSpecs() []domain.ChildSpec {
	return []domain.ChildSpec{
		{
			Name:    "livekit",
			Command: []string{"livekit-server", "--dev"},
			Dir:     ".",
		},
		{
			Name:    "agent",
			Command: []string{"uv", "run", "python", "src/{{ .Vars.agent }}.py", "dev"},
			Dir:     "backend",
		},
		{
			Name:    "frontend",
			Command: []string{"pnpm", "dev"},
			Dir:     "frontend",
		},
	}
}
