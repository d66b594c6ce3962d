package domain

import (
	"errors"
	"strings"
)

// DefaultStudentID — идентификатор, который подставляется, если клиент его не передал.
const DefaultStudentID = "anonymous"

// Ошибки валидации запроса.
var (
	// ErrEmptyText — текст запроса пустой.
	ErrEmptyText = errors.New("request text is empty")

	// ErrTextTooLong — текст запроса превышает допустимый размер.
	ErrTextTooLong = errors.New("request text is too long")
)

// MaxTextLength — максимальная длина текста запроса вместе с документом.
const MaxTextLength = 1 << 20

// Request — входящий запрос студента.
//
// Неизменяем после создания: pipeline только читает его.
type Request struct {
	// Text — свободный текст запроса. Может содержать блок документа
	// между маркерами [UPLOADED_BOOK_CONTENT] и [/UPLOADED_BOOK_CONTENT].
	Text string `json:"text"`

	// StudentID — идентификатор студента.
	StudentID string `json:"student_id"`

	// Document — текст приложенного документа (опционально).
	Document string `json:"document,omitempty"`
}

// NewRequest создаёт запрос с нормализованным StudentID.
func NewRequest(text, studentID, document string) Request {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		studentID = DefaultStudentID
	}
	return Request{Text: text, StudentID: studentID, Document: document}
}

// Validate проверяет запрос на границе системы.
//
// Это единственная фатальная проверка: всё, что дальше, деградирует
// до fallback'ов, но не возвращает ошибку.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return NewValidationError("text", "text must not be empty", ErrEmptyText)
	}
	if len(r.Text)+len(r.Document) > MaxTextLength {
		return NewValidationError("text", "text exceeds maximum length", ErrTextTooLong)
	}
	return nil
}

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
