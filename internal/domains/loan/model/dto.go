package model

// ListLoansFilter narrows a loan listing. OnlyOpen and OnlyOverdue stack:
// overdue implies open.
type ListLoansFilter struct {
	OnlyOpen    bool
	OnlyOverdue bool
	Page        int
	Limit       int
}

func (f *ListLoansFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.OnlyOverdue {
		f.OnlyOpen = true
	}
}

// ListLoansResponse is a paginated loan listing.
type ListLoansResponse struct {
	Loans []Loan `json:"loans"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
