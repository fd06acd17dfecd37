// Package apperr defines the error kinds shared by the workflow services.
// Every failure a workflow operation can surface is one of these kinds;
// the HTTP boundary maps each kind to a status code with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing resource by kind and identifier.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError for the given resource and id.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError reports a reservation that exceeds available stock.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s: insufficient stock (requested %d, available %d)",
		e.ProductID, e.Requested, e.Available)
}

// InsufficientStock builds an InsufficientStockError for the given product.
func InsufficientStock(productID string, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

// AlreadyExistsError reports a uniqueness violation.
type AlreadyExistsError struct {
	Resource string
	Key      string
}

func (e *AlreadyExistsError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: already exists", e.Resource)
	}
	return fmt.Sprintf("%s %s: already exists", e.Resource, e.Key)
}

// AlreadyExists builds an AlreadyExistsError for the given resource and key.
func AlreadyExists(resource, key string) error {
	return &AlreadyExistsError{Resource: resource, Key: key}
}

// InvalidStateError reports an operation attempted against a resource whose
// current state does not permit it.
type InvalidStateError struct {
	Resource     string
	ID           string
	CurrentState string
	Operation    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s in state %s",
		e.Resource, e.ID, e.Operation, e.CurrentState)
}

// InvalidState builds an InvalidStateError.
func InvalidState(resource, id, currentState, operation string) error {
	return &InvalidStateError{Resource: resource, ID: id, CurrentState: currentState, Operation: operation}
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation builds a ValidationError with the given message.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsAlreadyExists(err error) bool {
	var target *AlreadyExistsError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
