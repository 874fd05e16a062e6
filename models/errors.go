package models

import "fmt"

// NormalizationError reports invalid user input: bad symbol, bad date spec
// or an unsupported interval/range combination.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return "normalize: " + e.Reason
}

// Normalizef builds a NormalizationError with a formatted reason.
func Normalizef(format string, args ...interface{}) *NormalizationError {
	return &NormalizationError{Reason: fmt.Sprintf(format, args...)}
}

// FetchKind classifies provider failures so callers can map them to
// HTTP statuses without string matching.
type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchNotFound
	FetchRateLimited
	FetchEmpty
)

func (k FetchKind) String() string {
	switch k {
	case FetchNotFound:
		return "symbol not found"
	case FetchRateLimited:
		return "rate limited"
	case FetchEmpty:
		return "no data for range"
	default:
		return "network failure"
	}
}

// FetchError reports a provider failure. Err is the underlying cause,
// nil for provider-level conditions like an empty result.
type FetchError struct {
	Kind   FetchKind
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Symbol, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed stored file. Line is 1-based and 0 when
// the failure is not tied to a single row.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

// TransformError reports a series that cannot be transformed. The transform
// produces no partial output when this is returned.
type TransformError struct {
	Index  int
	Reason string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform: candle %d: %s", e.Index, e.Reason)
}
