package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AgentsDir — директория точек входа агентов относительно корня проекта.
const AgentsDir = "backend/src"

// mainMarker — признак исполняемого модуля агента.
var mainMarker = []byte(`if __name__ == "__main__"`)

// ListAgents возвращает имена агентов (без .py) из <root>/backend/src.
// Агентом считается .py файл с точкой входа __main__.
// Отсутствие директории — не ошибка, результат пустой.
func ListAgents(root string) ([]string, error) {
	dir := filepath.Join(root, AgentsDir)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents dir: %w", err)
	}

	var agents []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".py") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read agent %s: %w", e.Name(), err)
		}
		if !bytes.Contains(data, mainMarker) {
			continue
		}

		agents = append(agents, strings.TrimSuffix(e.Name(), ".py"))
	}

	slices.Sort(agents)
	return agents, nil
}

// CheckAgent проверяет, что агент существует.
// Если агентов не найдено (нет backend/src), проверка пропускается.
func CheckAgent(root, name string) error {
	agents, err := ListAgents(root)
	if err != nil {
		return err
	}
	if len(agents) == 0 || slices.Contains(agents, name) {
		return nil
	}
	return fmt.Errorf("%w: %s (available: %s)", ErrUnknownAgent, name, strings.Join(agents, ", "))
}
