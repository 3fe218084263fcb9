package services

import (
	"errors"
	"fmt"
)

// ErrRateLimited rejects a request that exceeded its allowed frequency.
var ErrRateLimited = errors.New("too many requests, try again later")

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError means the referenced entity does not resolve within the
// caller's shop.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConflictError means the write collides with existing state (duplicate
// name, referenced item, already-processed request).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
