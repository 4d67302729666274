package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラー種別。HTTPError.Kindに入れてerrors.Isで判定する。
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrValidationFailed      = errors.New("validation failed")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrTableUnavailable      = errors.New("table unavailable")
	ErrInvalidCartState      = errors.New("invalid cart state")
	ErrInvalidTransition     = errors.New("invalid reservation transition")
	ErrExtensionLimitReached = errors.New("extension limit reached")
	ErrTransactionFailed     = errors.New("transaction failed")
)

var kindStatus = map[error]int{
	ErrUnauthenticated:       http.StatusUnauthorized,
	ErrUnauthorized:          http.StatusForbidden,
	ErrNotFound:              http.StatusNotFound,
	ErrValidationFailed:      http.StatusUnprocessableEntity,
	ErrEmptyCart:             http.StatusBadRequest,
	ErrTableUnavailable:      http.StatusBadRequest,
	ErrInvalidCartState:      http.StatusBadRequest,
	ErrInvalidTransition:     http.StatusConflict,
	ErrExtensionLimitReached: http.StatusConflict,
	ErrTransactionFailed:     http.StatusInternalServerError,
}

var kindCode = map[error]string{
	ErrUnauthenticated:       "UNAUTHENTICATED",
	ErrUnauthorized:          "UNAUTHORIZED",
	ErrNotFound:              "NOT_FOUND",
	ErrValidationFailed:      "VALIDATION_FAILED",
	ErrEmptyCart:             "EMPTY_CART",
	ErrTableUnavailable:      "TABLE_UNAVAILABLE",
	ErrInvalidCartState:      "INVALID_CART_STATE",
	ErrInvalidTransition:     "INVALID_TRANSITION",
	ErrExtensionLimitReached: "EXTENSION_LIMIT_REACHED",
	ErrTransactionFailed:     "TRANSACTION_FAILED",
}

type HTTPError struct {
	Status  int
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Kind
}

func (e *HTTPError) Code() string {
	if c, ok := kindCode[e.Kind]; ok {
		return c
	}
	return "ERROR"
}

// NewError はKindからステータスを決める
func NewError(kind error, message string) error {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = kind.Error()
	}
	return &HTTPError{Status: status, Kind: kind, Message: message}
}

// 項目ごとのエラー（422）
func NewValidationError(fields map[string]string) error {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Kind:    ErrValidationFailed,
		Message: "validation failed",
		Fields:  fields,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
