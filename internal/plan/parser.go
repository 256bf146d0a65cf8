package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shaiso/devstack/internal/domain"
)

// File — формат JSON-файла плана.
//
//	{
//	    "children": [
//	        {"name": "livekit", "command": ["livekit-server", "--dev"]},
//	        {"name": "frontend", "command": ["pnpm", "dev"], "dir": "frontend"}
//	    ]
//	}
type File struct {
	Children []domain.ChildSpec `json:"children"`
}

// Parse разбирает JSON плана. Неизвестные поля — ошибка.
func Parse(data []byte) ([]domain.ChildSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlanFile, err)
	}
	return f.Children, nil
}

// LoadFile читает и разбирает файл плана.
func LoadFile(path string) ([]domain.ChildSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	specs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Validate выполняет полную валидацию плана.
//
// Проверяет:
// - Наличие процессов
// - Непустые и уникальные имена
// - Непустую команду (первый элемент — исполняемый файл)
//
// Существование исполняемого файла не проверяется: это ошибка запуска,
// а не валидации.
func Validate(specs []domain.ChildSpec) error {
	if len(specs) == 0 {
		return ErrEmptyPlan
	}

	names := make(map[string]bool, len(specs))
	for i := range specs {
		spec := &specs[i]

		if spec.Name == "" {
			return NewValidationError("", i, "name",
				fmt.Sprintf("child #%d has empty name", i), ErrEmptyName)
		}

		if names[spec.Name] {
			return NewValidationError(spec.Name, i, "name",
				fmt.Sprintf("duplicate child name: %s", spec.Name), ErrDuplicateName)
		}
		names[spec.Name] = true

		if len(spec.Command) == 0 || spec.Command[0] == "" {
			return NewValidationError(spec.Name, i, "command",
				"command is required", ErrEmptyCommand)
		}
	}

	return nil
}
