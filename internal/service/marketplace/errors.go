package marketplace

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lookups
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrNoCatalog        = errors.New("no resource catalog configured")
)

// CatalogError wraps a failure of the backing catalog store
type CatalogError struct {
	Operation string
	Err       error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Operation, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}
