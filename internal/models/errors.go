package models

import "fmt"

// NoDataError is returned when a query yields zero listings. It is the only
// error that escapes the report orchestrator; everything else degrades the
// report instead of failing it.
type NoDataError struct {
	Query string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no listings found for query %q", e.Query)
}

// PartialFetchError marks a failed page or item-detail call. It is recovered
// locally as an empty contribution and logged, never surfaced to the caller.
type PartialFetchError struct {
	Scope string
	Err   error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("partial fetch failure for %s: %v", e.Scope, e.Err)
}

func (e *PartialFetchError) Unwrap() error { return e.Err }

// DependencyError marks an unreachable detail/seller/store endpoint for a
// specific record.
type DependencyError struct {
	Endpoint string
	Err      error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Endpoint, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
