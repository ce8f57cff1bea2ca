package dto

import "time"

type TransactionRequest struct {
	UserID           int64     `json:"user_id" validate:"required,gt=0"`
	Amount           string    `json:"amount" validate:"required,numeric"`
	Description      string    `json:"description" validate:"max=255"`
	Type             string    `json:"type" validate:"required"`
	OccurrenceTypeID int64     `json:"occurrence_type_id" validate:"required,gt=0"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// TransactionUpdate changes a stored transaction; nil fields are kept.
type TransactionUpdate struct {
	ID               int64      `json:"id"`
	Amount           *string    `json:"amount,omitempty" validate:"omitempty,numeric"`
	Description      *string    `json:"description,omitempty" validate:"omitempty,max=255"`
	Type             *string    `json:"type,omitempty"`
	OccurrenceTypeID *int64     `json:"occurrence_type_id,omitempty" validate:"omitempty,gt=0"`
	OccurredAt       *time.Time `json:"occurred_at,omitempty"`
}
