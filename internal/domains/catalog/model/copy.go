package model

import (
	"time"

	"github.com/google/uuid"
)

// CopyState is the availability state of one lendable unit.
type CopyState string

const (
	CopyAvailable CopyState = "available"
	CopyOnLoan    CopyState = "on_loan"
	CopyLost      CopyState = "lost"
)

func (s CopyState) IsValid() bool {
	switch s {
	case CopyAvailable, CopyOnLoan, CopyLost:
		return true
	}
	return false
}

// validTransitions guards every copy state change. Anything not listed is a
// conflict: the caller acted on a stale view of the copy.
var validTransitions = map[CopyState][]CopyState{
	CopyAvailable: {CopyOnLoan, CopyLost},
	CopyOnLoan:    {CopyAvailable, CopyLost},
	CopyLost:      {},
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to CopyState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Copy is one lendable unit of a Book.
type Copy struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	State     CopyState `json:"state" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
