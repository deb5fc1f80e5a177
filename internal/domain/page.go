package domain

// Page est une page renvoyée par l'API catalogue.
// CurrentPage et TotalPages sont opaques: on les compare, on ne les recalcule pas.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

func (p Page[T]) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}
