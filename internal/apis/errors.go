package apis

import (
	"errors"
	"fmt"
)

// Kind классифицирует отказ внешнего API.
type Kind string

const (
	KindTransport Kind = "transport"
	KindUpstream  Kind = "upstream"
	KindNotFound  Kind = "not_found"
	KindDecode    Kind = "decode"
	KindConfig    Kind = "config"
)

// Error является единственным типом ошибки, который адаптеры возвращают наружу.
// Reason пригоден для показа пользователю.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func notFound(reason string) *Error {
	return newError(KindNotFound, reason, nil)
}

func decodeError(service string, err error) *Error {
	return newError(KindDecode, fmt.Sprintf("unexpected response from %s: %v", service, err), err)
}

func missingKey(service, envName string) *Error {
	return newError(KindConfig, fmt.Sprintf("%s API key is not configured (%s)", service, envName), nil)
}

// IsKind сообщает, является ли err ошибкой адаптера указанного вида.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf возвращает вид ошибки адаптера или пустую строку.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
