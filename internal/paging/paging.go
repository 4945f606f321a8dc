// Package paging derives page windows over a counted item list.
package paging

// Window is the half-open [Start, End) index range of one page.
type Window struct {
	Start      int `json:"start"`
	End        int `json:"end"`
	TotalPages int `json:"total_pages"`
}

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Slice computes the window of page (1-based) for total items. The
// requested page is not rewritten: a page past the end yields an empty
// window at total, and callers decide how to clamp navigation.
func Slice(total, page, pageSize int) Window {
	if total < 0 {
		total = 0
	}
	w := Window{TotalPages: TotalPages(total, pageSize)}
	if pageSize <= 0 || page < 1 {
		return w
	}
	w.Start = min((page-1)*pageSize, total)
	w.End = min(w.Start+pageSize, total)
	return w
}

// Visible returns the items inside w, bounded by len(items).
func Visible[T any](items []T, w Window) []T {
	start := min(max(w.Start, 0), len(items))
	end := min(max(w.End, start), len(items))
	return items[start:end]
}

// CanNavigate reports whether target is a selectable page.
func CanNavigate(target, totalPages int) bool {
	return target >= 1 && target <= totalPages
}

// Clamp moves page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return min(max(page, 1), totalPages)
}

const numbersWidth = 5

// Numbers returns the page buttons to show around current: up to five
// consecutive pages, shifted so the window stays full near either end.
func Numbers(current, totalPages int) []int {
	if totalPages < 1 {
		return []int{1}
	}
	current = Clamp(current, totalPages)
	start := max(1, current-2)
	end := min(totalPages, current+2)
	if current <= 3 {
		end = min(numbersWidth, totalPages)
	}
	if current >= totalPages-2 {
		start = max(1, totalPages-numbersWidth+1)
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
