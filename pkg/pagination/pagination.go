package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/caduceus/pkg/query"
)

// SortFields accepts either "name,-created_at" or an array of
// query.SortField objects when decoded from JSON.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = query.ParseSortFields(str)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest is a client request for one page with optional search and sorting.
type PageRequest struct {
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Search  *string    `json:"search,omitempty"`
	Sort    SortFields `json:"sort,omitempty"`
}

// Normalize fills a missing page or per_page and caps per_page at cfg.MaxPerPage.
// It does not clamp page to the last page, which needs the total.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 {
		r.PerPage = cfg.DefaultPerPage
	}
	r.PerPage = min(r.PerPage, cfg.MaxPerPage)
}

// PageRequestFromQuery reads page, per_page, search, and sort from values.
// The legacy page_size parameter is honored when per_page is absent.
// Unparseable numbers fall back to the configured defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	perPage := values.Get("per_page")
	if perPage == "" {
		perPage = values.Get("page_size")
	}

	req := PageRequest{
		Page:    atoi(values.Get("page")),
		PerPage: atoi(perPage),
		Sort:    query.ParseSortFields(values.Get("sort")),
	}
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}

// PageResult is one page of data with its paging metadata.
type PageResult[T any] struct {
	Data    []T `json:"data"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// NewPageResult wraps data fetched for page. Data is never encoded as null.
func NewPageResult[T any](data []T, total, page, perPage int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:    data,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   Pages(total, perPage),
	}
}

// Paginate windows an ordered in-memory result set. The requested page is
// clamped into range before slicing.
func Paginate[T any](items []T, page, perPage int) PageResult[T] {
	w := NewWindow(len(items), page, perPage)
	return NewPageResult(Slice(items, w), len(items), w.Page, perPage)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
