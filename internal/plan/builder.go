package plan

import (
	"fmt"
	"maps"
	"path/filepath"

	"github.com/shaiso/devstack/internal/domain"
)

// Options — параметры построения плана.
type Options struct {
	// Path — путь к JSON-файлу плана. Пустой — план по умолчанию.
	Path string

	// Root — корень проекта. Относительные Dir разрешаются от него.
	// Пустой — текущая директория.
	Root string

	// Vars — переменные шаблонов. "agent" по умолчанию DefaultAgent.
	Vars map[string]string
}

// Build строит неизменяемый план: загрузка, рендеринг, валидация,
// разрешение рабочих директорий.
func Build(opts Options) (domain.Plan, error) {
	specs := DefaultSpecs()
	if opts.Path != "" {
		loaded, err := LoadFile(opts.Path)
		if err != nil {
			return domain.Plan{}, err
		}
		specs = loaded
	}

	vars := map[string]string{"agent": DefaultAgent}
	maps.Copy(vars, opts.Vars)

	ctx := NewContext(vars)
	ctx.LoadEnv()

	rendered := make([]domain.ChildSpec, len(specs))
	for i, spec := range specs {
		r, err := RenderSpec(spec, ctx)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("render child #%d: %w", i, err)
		}
		rendered[i] = r
	}

	if err := Validate(rendered); err != nil {
		return domain.Plan{}, err
	}

	for i := range rendered {
		rendered[i].Dir = resolveDir(opts.Root, rendered[i].Dir)
	}

	return domain.NewPlan(rendered...), nil
}

// resolveDir разрешает рабочую директорию относительно root.
func resolveDir(root, dir string) string {
	if dir == "" {
		return root
	}
	if filepath.IsAbs(dir) || root == "" {
		return dir
	}
	return filepath.Join(root, dir)
}
