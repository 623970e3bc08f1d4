package order

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("order not found")

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

type MissingSellerInfoError struct {
	ProductName string
}

func (e *MissingSellerInfoError) Error() string {
	return fmt.Sprintf("seller information missing for product: %s", e.ProductName)
}

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidStateError reports a guarded transition attempted from the wrong
// state. Required holds every state the transition accepts.
type InvalidStateError struct {
	Required []Status
	Actual   Status
}

func (e *InvalidStateError) Error() string {
	names := make([]string, len(e.Required))
	for i, s := range e.Required {
		names[i] = string(s)
	}
	return fmt.Sprintf("order must be in %s state, currently %s",
		strings.Join(names, " or "), e.Actual)
}

type UnauthorizedError struct {
	RequiredRole string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("only the %s may perform this action", e.RequiredRole)
}

// ValidationError reports malformed input rejected before any work is done.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PersistenceError wraps store failures so callers can distinguish them from
// domain errors without inspecting driver internals.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
