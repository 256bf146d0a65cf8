package plan

import "errors"

// Ошибки валидации плана.
var (
	// ErrEmptyPlan — план не содержит процессов.
	ErrEmptyPlan = errors.New("plan has no children")

	// ErrEmptyName — процесс не имеет имени.
	ErrEmptyName = errors.New("child has empty name")

	// ErrDuplicateName — несколько процессов с одинаковым именем.
	ErrDuplicateName = errors.New("duplicate child name")

	// ErrEmptyCommand — у процесса нет команды.
	ErrEmptyCommand = errors.New("child has empty command")
)

// Ошибки загрузки и рендеринга.
var (
	// ErrInvalidPlanFile — файл плана не удалось разобрать.
	ErrInvalidPlanFile = errors.New("invalid plan file")

	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")

	// ErrUnknownAgent — агент не найден в backend/src.
	ErrUnknownAgent = errors.New("unknown agent")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Child   string // имя процесса, где произошла ошибка
	Index   int    // позиция в плане
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Child != "" {
		return "child " + e.Child + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(child string, index int, field, message string, err error) *ValidationError {
	return &ValidationError{
		Child:   child,
		Index:   index,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
