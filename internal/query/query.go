// Package query holds the filter and paging objects passed to stores.
package query

import "math"

// Op is a comparison operator understood by the stores.
type Op string

const (
	OpEq    Op = "="
	OpNe    Op = "<>"
	OpILike Op = "ILIKE"
)

// Condition compares one field against a value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Predicate is a conjunction of conditions. Stores require a concrete,
// non-empty predicate; use MatchAll when nothing should be filtered.
type Predicate struct {
	Conditions []Condition
}

// InvalidID never identifies a stored record.
const InvalidID int64 = -1

// MatchAll returns the always-true predicate "id <> InvalidID".
func MatchAll() Predicate {
	return Predicate{Conditions: []Condition{{Field: "id", Op: OpNe, Value: InvalidID}}}
}

// Where starts a predicate with a single condition.
func Where(field string, op Op, value any) *Predicate {
	return &Predicate{Conditions: []Condition{{Field: field, Op: op, Value: value}}}
}

// And appends a condition and returns the predicate for chaining.
func (p *Predicate) And(field string, op Op, value any) *Predicate {
	p.Conditions = append(p.Conditions, Condition{Field: field, Op: op, Value: value})
	return p
}

// PageRequest is a zero-based page offset plus page size.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	return p.Page * p.Size
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	// Page*Size must not overflow.
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		p.Page = math.MaxInt / p.Size
	}
	return p
}

// Page is one slice of a larger ordered result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}
