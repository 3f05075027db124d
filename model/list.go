package model

// ListQuery describes one page of a property listing.
// Filters hold already type-coerced values keyed by bson field name.
type ListQuery struct {
	Filters map[string]interface{}
	SortBy  string
	Desc    bool
	Page    int64
	Limit   int64
}

func (q ListQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

type PropertyPage struct {
	Properties []Property `json:"properties"`
	Page       int64      `json:"page"`
	TotalPages int64      `json:"totalPages"`
	Total      int64      `json:"total"`
}
