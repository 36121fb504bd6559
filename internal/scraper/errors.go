package scraper

import (
	"errors"
	"fmt"
)

// ErrMissingField сопоставляется с любым MissingFieldError через errors.Is
var ErrMissingField = errors.New("missing field")

// MissingFieldError: ожидаемый элемент не найден на странице.
// Ошибка восстановимая: цикл обхода повторяет страницу целиком.
type MissingFieldError struct {
	Field    string
	Selector string
	Reason   string
}

func (e *MissingFieldError) Error() string {
	msg := fmt.Sprintf("missing field %s", e.Field)
	if e.Selector != "" {
		msg += fmt.Sprintf(" (selector %s)", e.Selector)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func missing(field string, sel Selector, reason string) error {
	return &MissingFieldError{Field: field, Selector: sel.CSS(), Reason: reason}
}
