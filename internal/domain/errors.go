package domain

import (
	"errors"
	"fmt"
)

// Terminal verification failures. None of them mutates state.
var (
	ErrInvalidToken     = errors.New("invalid booking token")
	ErrOrderMismatch    = errors.New("order id mismatch")
	ErrSignatureInvalid = errors.New("signature verification failed")
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// UploadError is a client-fixable failure to store the identity document.
type UploadError struct {
	Err error
}

func (e UploadError) Error() string {
	if e.Err == nil {
		return "upload error"
	}
	return fmt.Sprintf("upload error: %v", e.Err)
}

func (e UploadError) Unwrap() error { return e.Err }

// GatewayOrderError is only surfaced when the simulated fallback is disabled.
type GatewayOrderError struct {
	Err error
}

func (e GatewayOrderError) Error() string {
	if e.Err == nil {
		return "payment gateway error"
	}
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e GatewayOrderError) Unwrap() error { return e.Err }

// PersistenceError means no booking was committed; the draft is kept for a retry.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence error"
	}
	return fmt.Sprintf("persistence error: %v", e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target UploadError
	return errors.As(err, &target)
}

func IsGatewayOrder(err error) bool {
	var target GatewayOrderError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}
