package plan

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/shaiso/devstack/internal/domain"
)

// Context — контекст для рендеринга шаблонов плана.
//
//   - {{ .Vars.name }}  — переменные запуска (--set name=value)
//   - {{ .Env.NAME }}   — переменные окружения
type Context struct {
	// Vars — переменные запуска.
	Vars map[string]string `json:"vars"`

	// Env — переменные окружения.
	Env map[string]string `json:"env"`
}

// NewContext создаёт контекст с переменными запуска.
func NewContext(vars map[string]string) *Context {
	if vars == nil {
		vars = make(map[string]string)
	}
	return &Context{
		Vars: vars,
		Env:  make(map[string]string),
	}
}

// LoadEnv копирует переменные окружения процесса в контекст.
func (c *Context) LoadEnv() {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		c.Env[key] = value
	}
}

// templateFuncs — дополнительные функции для шаблонов.
var templateFuncs = template.FuncMap{
	// default — возвращает значение по умолчанию, если второй аргумент пустой
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},

	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"replace": strings.ReplaceAll,
}

// Render рендерит строковый шаблон с контекстом.
// Обращение к неизвестной переменной — ошибка.
func Render(tmpl string, ctx *Context) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Funcs(templateFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// RenderSpec рендерит все строковые поля ChildSpec.
func RenderSpec(spec domain.ChildSpec, ctx *Context) (domain.ChildSpec, error) {
	out := spec.Clone()

	var err error
	if out.Name, err = Render(spec.Name, ctx); err != nil {
		return out, fmt.Errorf("name: %w", err)
	}

	for i, arg := range spec.Command {
		if out.Command[i], err = Render(arg, ctx); err != nil {
			return out, fmt.Errorf("command[%d]: %w", i, err)
		}
	}

	if out.Dir, err = Render(spec.Dir, ctx); err != nil {
		return out, fmt.Errorf("dir: %w", err)
	}

	for key, value := range spec.Env {
		if out.Env[key], err = Render(value, ctx); err != nil {
			return out, fmt.Errorf("env %s: %w", key, err)
		}
	}

	return out, nil
}
