package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// ChildSpec — описание одного дочернего процесса.
type ChildSpec struct {
	// Name — имя процесса (для логов, метрик и истории).
	Name string `json:"name"`

	// Command — командная строка: исполняемый файл и аргументы.
	Command []string `json:"command"`

	// Dir — рабочая директория процесса.
	// Пустая строка — текущая директория супервизора.
	Dir string `json:"dir,omitempty"`

	// Env — переменные окружения поверх унаследованных.
	Env map[string]string `json:"env,omitempty"`
}

// Clone возвращает глубокую копию ChildSpec.
func (s ChildSpec) Clone() ChildSpec {
	return ChildSpec{
		Name:    s.Name,
		Command: slices.Clone(s.Command),
		Dir:     s.Dir,
		Env:     maps.Clone(s.Env),
	}
}

// CommandLine возвращает команду одной строкой (только для вывода).
func (s ChildSpec) CommandLine() string {
	return strings.Join(s.Command, " ")
}

// Plan — фиксированная упорядоченная последовательность ChildSpec.
//
// Plan строится один раз при старте и после этого не меняется:
// конструктор и все методы доступа работают с копиями.
type Plan struct {
	children []ChildSpec
}

// NewPlan создаёт Plan из копий переданных ChildSpec.
func NewPlan(children ...ChildSpec) Plan {
	cloned := make([]ChildSpec, len(children))
	for i, c := range children {
		cloned[i] = c.Clone()
	}
	return Plan{children: cloned}
}

// Len возвращает количество процессов в плане.
func (p Plan) Len() int {
	return len(p.children)
}

// At возвращает копию i-го ChildSpec.
func (p Plan) At(i int) ChildSpec {
	return p.children[i].Clone()
}

// Children возвращает копии всех ChildSpec в порядке плана.
func (p Plan) Children() []ChildSpec {
	out := make([]ChildSpec, len(p.children))
	for i, c := range p.children {
		out[i] = c.Clone()
	}
	return out
}

// MarshalJSON сериализует план как {"children": [...]}.
func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Children []ChildSpec `json:"children"`
	}{Children: p.children})
}
