package models

import "time"

// TransactionKind separates money coming in from money going out.
type TransactionKind string

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

// OccurrenceType describes how often a transaction recurs.
type OccurrenceType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is a single income or expense booked against a user.
type Transaction struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Amount         string          `json:"amount"`
	Description    string          `json:"description"`
	Kind           TransactionKind `json:"type"`
	OccurrenceType OccurrenceType  `json:"occurrence_type"`
	OccurredAt     time.Time       `json:"occurred_at"`
	CreatedAt      time.Time       `json:"created_at"`
}
