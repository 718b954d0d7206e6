package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SubmitRequest asks to borrow a book. The reader id comes from the
// authenticated actor, never from the payload.
type SubmitRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

func (r SubmitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID,
			validation.Required.Error("book id is required"),
			is.UUIDv4.Error("book id must be a UUID"),
		),
	)
}

// ResolveRequest carries a staff decision. Reason is optional and only
// meaningful for rejections.
type ResolveRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

func (r ResolveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Decision,
			validation.Required.Error("decision is required"),
			validation.In(string(DecisionApprove), string(DecisionReject)).
				Error("decision must be approve or reject"),
		),
		validation.Field(&r.Reason, validation.Length(0, 500)),
	)
}

// ListScope narrows the pending-request listing: "mine" for the acting
// reader's own requests, "all" for the staff queue.
type ListScope string

const (
	ScopeMine ListScope = "mine"
	ScopeAll  ListScope = "all"
)
