// Package plan строит неизменяемый domain.Plan для супервизора.
//
// Источники плана:
//   - встроенный план по умолчанию (media server, backend agent, frontend)
//   - JSON-файл плана ({"children": [...]})
//
// Строки ChildSpec (name, command, dir, env) — Go templates:
//
//	{{ .Vars.agent }}   — переменные из --set / --agent
//	{{ .Env.HOME }}     — переменные окружения супервизора
//
// После рендеринга план валидируется (Validate), относительные
// рабочие директории разрешаются относительно корня проекта.
package plan
