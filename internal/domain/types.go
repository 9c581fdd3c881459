package domain

// ID is used across domain entities.
type ID = int64

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// RequestContext carries authenticated user info extracted from the bearer
// token; handlers pass it down instead of reading ambient session state.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email"`
}

// IsAdmin reports whether the request belongs to a portal admin.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == "admin"
}
