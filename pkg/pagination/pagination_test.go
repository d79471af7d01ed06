package pagination_test

import (
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/caduceus/pkg/pagination"
	"github.com/JaimeStill/caduceus/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPerPage: 10, MaxPerPage: 100}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPerPage != 10 {
		t.Errorf("DefaultPerPage = %d, want 10", cfg.DefaultPerPage)
	}
	if cfg.MaxPerPage != 100 {
		t.Errorf("MaxPerPage = %d, want 100", cfg.MaxPerPage)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PER_PAGE", "50")
	t.Setenv("TEST_MAX_PER_PAGE", "200")
	t.Setenv("TEST_BAD", "lots")

	env := &pagination.ConfigEnv{
		DefaultPerPage: "TEST_PER_PAGE",
		MaxPerPage:     "TEST_MAX_PER_PAGE",
	}

	cfg := pagination.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.DefaultPerPage != 50 || cfg.MaxPerPage != 200 {
		t.Errorf("config = %+v, want 50/200", cfg)
	}

	cfg = pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPerPage: "TEST_BAD"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.DefaultPerPage != 10 {
		t.Errorf("unparseable override should keep default, got %d", cfg.DefaultPerPage)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	cfg := pagination.Config{DefaultPerPage: 200, MaxPerPage: 100}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot exceed max_per_page") {
		t.Errorf("error = %q", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := pagination.Config{DefaultPerPage: 20, MaxPerPage: 100}
	base.Merge(&pagination.Config{DefaultPerPage: 50})

	if base.DefaultPerPage != 50 {
		t.Errorf("DefaultPerPage = %d, want 50", base.DefaultPerPage)
	}
	if base.MaxPerPage != 100 {
		t.Errorf("MaxPerPage = %d, want 100 (unchanged)", base.MaxPerPage)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		req         pagination.PageRequest
		wantPage    int
		wantPerPage int
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 10},
		{"negative page corrected", pagination.PageRequest{Page: -1, PerPage: 5}, 1, 5},
		{"per page capped", pagination.PageRequest{Page: 1, PerPage: 500}, 1, 100},
		{"page past the end kept", pagination.PageRequest{Page: 40, PerPage: 25}, 40, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage || tt.req.PerPage != tt.wantPerPage {
				t.Errorf("got page %d per_page %d, want %d %d",
					tt.req.Page, tt.req.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name        string
		values      url.Values
		wantPage    int
		wantPerPage int
	}{
		{"per_page", url.Values{"page": {"2"}, "per_page": {"15"}}, 2, 15},
		{"page_size alias", url.Values{"page_size": {"7"}}, 1, 7},
		{"per_page wins", url.Values{"per_page": {"3"}, "page_size": {"7"}}, 1, 3},
		{"empty gets defaults", url.Values{}, 1, 10},
		{"garbage gets defaults", url.Values{"page": {"x"}, "per_page": {"-4"}}, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequestFromQuery(tt.values, defaultConfig())
			if req.Page != tt.wantPage || req.PerPage != tt.wantPerPage {
				t.Errorf("got page %d per_page %d, want %d %d",
					req.Page, req.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageRequestFromQuerySearchAndSort(t *testing.T) {
	values := url.Values{
		"search": {"answer"},
		"sort":   {"name,-stage"},
	}

	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Search == nil || *req.Search != "answer" {
		t.Errorf("Search = %v, want answer", req.Search)
	}
	want := []query.SortField{{Field: "name"}, {Field: "stage", Descending: true}}
	if !slices.Equal(req.Sort, want) {
		t.Errorf("Sort = %+v, want %+v", req.Sort, want)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		perPage int
		want    int
	}{
		{"exact division", 100, 20, 5},
		{"remainder", 101, 20, 6},
		{"single page", 5, 20, 1},
		{"empty result has one page", 0, 20, 1},
		{"non-positive per page", 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pagination.Pages(tt.total, tt.perPage); got != tt.want {
				t.Errorf("Pages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		page    int
		perPage int
		want    pagination.Window
	}{
		{"first page", 12, 1, 5, pagination.Window{Page: 1, Pages: 3, Start: 0, End: 5}},
		{"last partial page", 12, 3, 5, pagination.Window{Page: 3, Pages: 3, Start: 10, End: 12}},
		{"past the end clamps", 12, 5, 5, pagination.Window{Page: 3, Pages: 3, Start: 10, End: 12}},
		{"before the start clamps", 12, 0, 5, pagination.Window{Page: 1, Pages: 3, Start: 0, End: 5}},
		{"empty", 0, 4, 5, pagination.Window{Page: 1, Pages: 1, Start: 0, End: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pagination.NewWindow(tt.total, tt.page, tt.perPage); got != tt.want {
				t.Errorf("NewWindow(%d, %d, %d) = %+v, want %+v",
					tt.total, tt.page, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestRangeOutOfBoundsIsEmpty(t *testing.T) {
	start, end := pagination.Range(12, 5, 5)
	if start != 12 || end != 12 {
		t.Errorf("Range(12, 5, 5) = [%d, %d), want empty at 12", start, end)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	got := pagination.Slice(items, pagination.NewWindow(len(items), 5, 5))
	if !slices.Equal(got, []int{11, 12}) {
		t.Errorf("Slice = %v, want [11 12]", got)
	}

	got[0] = 99
	if items[10] != 11 {
		t.Error("Slice must copy, not alias, the input")
	}

	empty := pagination.Slice(items, pagination.Window{Start: 20, End: 25})
	if empty == nil || len(empty) != 0 {
		t.Errorf("out of range Slice = %v, want empty non-nil", empty)
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	result := pagination.Paginate(items, 9, 3)

	if result.Page != 3 || result.Pages != 3 || result.Total != 7 || result.PerPage != 3 {
		t.Errorf("metadata = %+v", result)
	}
	if !slices.Equal(result.Data, []string{"g"}) {
		t.Errorf("Data = %v, want [g]", result.Data)
	}
}

func TestNewPageResultNilDataBecomesEmpty(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil || len(result.Data) != 0 {
		t.Errorf("Data = %v, want empty slice", result.Data)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"data":[]`) || !strings.Contains(string(data), `"pages":1`) {
		t.Errorf("json = %s", data)
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	want := pagination.SortFields{{Field: "name"}, {Field: "stage", Descending: true}}

	tests := []struct {
		name  string
		input string
	}{
		{"string", `"name,-stage"`},
		{"array", `[{"field":"name"},{"field":"stage","descending":true}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sf pagination.SortFields
			if err := json.Unmarshal([]byte(tt.input), &sf); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if !slices.Equal(sf, want) {
				t.Errorf("SortFields = %+v, want %+v", sf, want)
			}
		})
	}
}
