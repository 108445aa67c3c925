package shared

import (
	"net/http"
	"strconv"
)

// Page is a limit/offset window read from ?limit= and ?offset=.
type Page struct {
	Limit  int
	Offset int
}

// ParsePagination reads the window, ignoring malformed values and clamping
// the limit to maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Page {
	q := r.URL.Query()
	page := Page{Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		page.Limit = min(v, maxLimit)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		page.Offset = v
	}
	return page
}

// SetTotal reports the unpaged size of a list in X-Total-Count.
func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
}
