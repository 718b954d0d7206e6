package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Book is a catalog title. TotalCopies is maintained by catalog management
// commands only; for every book the copy states always sum to it.
type Book struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Author      string         `json:"author" db:"author"`
	ISBN        string         `json:"isbn" db:"isbn"`
	Category    string         `json:"category" db:"category"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	TotalCopies int            `json:"total_copies" db:"total_copies"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// BookWithAvailability is a catalog listing row: the book plus its current
// copy-state counts.
type BookWithAvailability struct {
	Book
	AvailableCopies int `json:"available_copies" db:"available_copies"`
	OnLoanCopies    int `json:"on_loan_copies" db:"on_loan_copies"`
	LostCopies      int `json:"lost_copies" db:"lost_copies"`
}
