package services

const (
	// DefaultPageSize applies when the caller omits page_size. A zero
	// PageSize is indistinguishable from an omitted one and gets the same
	// treatment.
	DefaultPageSize = 20
	// MaxPageSize caps a single tree level page; larger requests are clamped.
	MaxPageSize = 100
)

// PageRequest is a clamped page/page_size pair. Out-of-range values are
// clamped here; rejecting non-numeric or negative raw input is the
// transport's job.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) normalized() (page, size int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	size = p.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func (p PageRequest) offsetLimit() (offset, limit int) {
	page, size := p.normalized()
	return (page - 1) * size, size
}

// PageInfo is the pagination block attached to every paged response.
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

func newPageInfo(req PageRequest, total int64) PageInfo {
	page, size := req.normalized()
	pages := int((total + int64(size) - 1) / int64(size))
	return PageInfo{CurrentPage: page, PageSize: size, TotalItems: total, TotalPages: pages}
}
