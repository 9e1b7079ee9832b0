package domain

// Page is the envelope returned by every paginated listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Pagination bounds per listing kind.
type PageBounds struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	RecipePageBounds  = PageBounds{DefaultLimit: 12, MaxLimit: 100}
	CommentPageBounds = PageBounds{DefaultLimit: 10, MaxLimit: 50}
	UserPageBounds    = PageBounds{DefaultLimit: 20, MaxLimit: 100}
)

// Normalize clamps page to at least 1 and limit into [1, MaxLimit], using
// DefaultLimit when limit is unset.
func (b PageBounds) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = b.DefaultLimit
	}
	if limit > b.MaxLimit {
		limit = b.MaxLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}
