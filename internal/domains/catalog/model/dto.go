package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// AddBookRequest creates a new title with an initial number of copies.
type AddBookRequest struct {
	Title         string   `json:"title" binding:"required"`
	Author        string   `json:"author" binding:"required"`
	ISBN          string   `json:"isbn" binding:"required"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	InitialCopies int      `json:"initial_copies"`
}

func (r AddBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			is.ISBN.Error("invalid ISBN"),
		),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.InitialCopies, validation.Min(0), validation.Max(1000)),
	)
}

// CopyCountRequest adds or removes n copies of a book.
type CopyCountRequest struct {
	Count int `json:"count" binding:"required"`
}

func (r CopyCountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Count,
			validation.Required.Error("count is required"),
			validation.Min(1).Error("count must be at least 1"),
			validation.Max(1000),
		),
	)
}

// ListBooksFilter narrows the catalog listing. All fields optional.
type ListBooksFilter struct {
	Title    string `form:"title"`
	Author   string `form:"author"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// Normalize applies defaults and bounds for pagination.
func (f *ListBooksFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// CopyStatusResponse summarizes one book's copies for the status listing.
type CopyStatusResponse struct {
	BookID          string `json:"book_id"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	OnLoanCopies    int    `json:"on_loan_copies"`
	LostCopies      int    `json:"lost_copies"`
	Copies          []Copy `json:"copies"`
}

// ListBooksResponse is a paginated catalog listing.
type ListBooksResponse struct {
	Items      []BookWithAvailability `json:"items"`
	TotalItems int                    `json:"total_items"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}
