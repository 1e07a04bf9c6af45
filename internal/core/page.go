package core

// Page sizes offered by the transaction table.
var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

// Paginate returns items[page*size : page*size+size] clamped to the slice.
// An out-of-range page or a non-positive size yields an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 0 || len(items) == 0 {
		return []T{}
	}
	// Compare page counts first; page*size overflows for huge pages.
	if page > (len(items)-1)/size {
		return []T{}
	}
	start := page * size
	end := min(start+size, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// ListView is the table state: active filter and current page. Changing the
// filter or the page size always returns to the first page.
type ListView struct {
	Spec FilterSpec
	Page int
	Size int
}

func NewListView() ListView {
	return ListView{Size: DefaultPageSize}
}

func (v ListView) WithFilter(spec FilterSpec) ListView {
	v.Spec = spec
	v.Page = 0
	return v
}

func (v ListView) WithPageSize(size int) ListView {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.Size = size
	v.Page = 0
	return v
}

func (v ListView) WithPage(page int) ListView {
	if page < 0 {
		page = 0
	}
	v.Page = page
	return v
}

// PageCount is the number of pages needed for total rows; at least one.
func (v ListView) PageCount(total int) int {
	if v.Size <= 0 || total <= 0 {
		return 1
	}
	return (total + v.Size - 1) / v.Size
}

// Window filters txs and returns the current page plus the filtered count.
func (v ListView) Window(txs []Transaction) ([]Transaction, int) {
	filtered := Apply(txs, v.Spec)
	return Paginate(filtered, v.Page, v.Size), len(filtered)
}

// AfterDelete steps back one page when a delete removed the only row on the
// last page. totalBefore is the filtered row count before the delete.
func (v ListView) AfterDelete(totalBefore int) ListView {
	if v.Page > 0 && v.Page >= v.PageCount(totalBefore-1) {
		v.Page--
	}
	return v
}
