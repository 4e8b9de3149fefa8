package response

type Pagination struct {
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
}

func NewPagination(offset, limit int, total int64) *Pagination {
	return &Pagination{
		Offset:     offset,
		Limit:      limit,
		TotalItems: total,
		HasMore:    int64(offset+limit) < total,
	}
}
