// Package syncerr описывает таксономию ошибок синхронизации.
//
// Каждая ошибка несет Kind, по которому вызывающий код решает,
// повторять ли операцию, отправлять ли ее в очередь или на ручной разбор.
package syncerr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind класс ошибки синхронизации. Строковые значения сериализуются в тела ответов API.
type Kind string

const (
	// KindTransient сетевая ошибка или таймаут: повторяемо, операция ставится в очередь
	KindTransient Kind = "TRANSIENT"
	// KindValidation некорректные данные или несовпадение политики: не повторяется
	KindValidation Kind = "VALIDATION"
	// KindSecurity отклоненная подпись или источник: не повторяется, попадает в аудит
	KindSecurity Kind = "SECURITY"
	// KindClinicalIntegrity валидатор отклонил результат разрешения: требуется ручной разбор
	KindClinicalIntegrity Kind = "CLINICAL_INTEGRITY"
	// KindResourceExhaustion превышен лимит запросов или переполнена очередь: повторяемо после ожидания
	KindResourceExhaustion Kind = "RESOURCE_EXHAUSTION"
	// KindUnknown неклассифицированная ошибка
	KindUnknown Kind = "UNKNOWN"
)

// Retryable reports whether errors of this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindResourceExhaustion
}

// Error типизированная ошибка синхронизации
type Error struct {
	Err        error
	Kind       Kind
	Op         string
	RetryAfter time.Duration // для KindResourceExhaustion - рекомендуемое ожидание
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по Kind, чтобы работало errors.Is(err, syncerr.ErrTransient)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Эталонные значения для errors.Is
var (
	ErrTransient          = &Error{Kind: KindTransient}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrSecurity           = &Error{Kind: KindSecurity}
	ErrClinicalIntegrity  = &Error{Kind: KindClinicalIntegrity}
	ErrResourceExhaustion = &Error{Kind: KindResourceExhaustion}
)

// New creates an error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap оборачивает err с указанным Kind. nil остается nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Exhausted creates a ResourceExhaustion error with a retry hint.
func Exhausted(op string, retryAfter time.Duration, format string, args ...any) *Error {
	return &Error{Kind: KindResourceExhaustion, Op: op, Err: fmt.Errorf(format, args...), RetryAfter: retryAfter}
}

// KindOf возвращает Kind первой *Error в цепочке.
// Таймауты и отмена контекста без явной классификации считаются Transient.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindUnknown
}

// IsRetryable reports whether err may be retried later.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// RetryAfter returns the retry hint carried by err, or zero.
func RetryAfter(err error) time.Duration {
	var se *Error
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}
