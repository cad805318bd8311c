package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation: базовая ошибка для некорректных входных данных.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound возвращается, если сущность с указанным идентификатором не найдена.
	ErrNotFound = errors.New("entity not found")
	// ErrReferential сигнализирует о ссылке на несуществующую сущность.
	ErrReferential = errors.New("referenced entity does not resolve")
	// ErrConflict: нарушение уникальности бизнес-ключа (номер заказа, госномер, порядок участка).
	ErrConflict = errors.New("entity conflict")
	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// FieldError описывает одну ошибку валидации конкретного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError агрегирует ошибки по полям.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError собирает ошибку из пар поле/сообщение.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Add добавляет ошибку поля.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has сообщает, есть ли ошибка по указанному полю.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil возвращает nil, если ошибок нет. Удобно в конце Validate().
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError возвращается репозиториями при отсутствии сущности.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError создаёт NotFoundError для сущности.
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ReferentialError: внешняя ссылка (отправитель, склад, транспорт и т.д.) не разрешается.
type ReferentialError struct {
	Entity string
	Field  string
	ID     string
	Reason string
}

// NewReferentialError создаёт ReferentialError.
func NewReferentialError(entity, field string, id any) *ReferentialError {
	return &ReferentialError{Entity: entity, Field: field, ID: fmt.Sprint(id)}
}

func (e *ReferentialError) Error() string {
	msg := fmt.Sprintf("%s.%s references unknown id %q", e.Entity, e.Field, e.ID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
