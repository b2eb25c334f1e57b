package directory

// ListPage selects a slice of an ordered listing. Pagination engages
// whenever Limit is positive; Page is 1-based and any value below 1 is
// treated as the first page. The zero value means "no pagination".
type ListPage struct {
	Page  int
	Limit int
}

// Enabled reports whether the page actually constrains the listing.
func (p ListPage) Enabled() bool { return p.Limit > 0 }

// Offset returns the number of rows to skip, clamped at zero so any
// under-threshold page value degrades to the first page.
func (p ListPage) Offset() int {
	off := (p.Page - 1) * p.Limit
	if off < 0 {
		return 0
	}
	return off
}
