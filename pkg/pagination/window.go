package pagination

// Window describes the slice of an ordered result set that belongs to a page.
// Start and End are zero-based, half-open bounds suitable for s[Start:End].
type Window struct {
	Page  int
	Pages int
	Start int
	End   int
}

// Pages returns ceil(total / perPage), never less than 1.
// A non-positive perPage is treated as 1.
func Pages(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Clamp bounds page to [1, pages].
func Clamp(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// Range returns the zero-based slice bounds for a page without clamping.
// Pages past the end produce an empty range at total.
func Range(total, page, perPage int) (start, end int) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	return start, end
}

// NewWindow clamps page into range and computes its slice bounds.
func NewWindow(total, page, perPage int) Window {
	pages := Pages(total, perPage)
	page = Clamp(page, pages)
	start, end := Range(total, page, perPage)
	return Window{
		Page:  page,
		Pages: pages,
		Start: start,
		End:   end,
	}
}

// Slice returns the items within the window, never nil.
func Slice[T any](items []T, w Window) []T {
	if w.Start >= len(items) || w.Start >= w.End {
		return []T{}
	}
	end := min(w.End, len(items))
	out := make([]T, end-w.Start)
	copy(out, items[w.Start:end])
	return out
}
