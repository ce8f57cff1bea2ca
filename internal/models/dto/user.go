package dto

// UserUpdate carries the fields of an account to change. Nil fields are left as they are.
type UserUpdate struct {
	ID       int64   `json:"id"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}
