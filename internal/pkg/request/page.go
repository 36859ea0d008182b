package request

// PageParams carries the from/size paging query parameters shared by list
// endpoints. "from" is a record index, but paging is resolved to the page
// containing that index: the window returned is page floor(from/size) of
// length size, not a row-level skip. Callers passing a from that is not a
// multiple of size get the enclosing page.
type PageParams struct {
	From int `form:"from" binding:"omitempty,min=0"`
	Size int `form:"size" binding:"omitempty,min=1"`
}

const defaultPageSize = 10

// Normalize applies defaults for unset or out-of-range values.
func (p *PageParams) Normalize() {
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.From < 0 {
		p.From = 0
	}
}

// Limit returns the SQL LIMIT for the page.
func (p PageParams) Limit() uint64 {
	return uint64(p.Size)
}

// Offset returns the SQL OFFSET for the page: (from/size)*size.
func (p PageParams) Offset() uint64 {
	page := p.From / p.Size
	return uint64(page * p.Size)
}
