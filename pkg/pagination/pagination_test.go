package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/filmpulse/arbiter/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestPageRequestNormalize(t *testing.T) {
	t.Run("zero values get defaults", func(t *testing.T) {
		req := pagination.PageRequest{}
		req.Normalize(cfg)
		if req.Page != 1 {
			t.Errorf("Page = %d, want 1", req.Page)
		}
		if req.PageSize != 20 {
			t.Errorf("PageSize = %d, want 20", req.PageSize)
		}
	})

	t.Run("oversized page size clamps to max", func(t *testing.T) {
		req := pagination.PageRequest{Page: 2, PageSize: 500}
		req.Normalize(cfg)
		if req.PageSize != 100 {
			t.Errorf("PageSize = %d, want 100", req.PageSize)
		}
	})

	t.Run("negative values get defaults", func(t *testing.T) {
		req := pagination.PageRequest{Page: -3, PageSize: -1}
		req.Normalize(cfg)
		if req.Page != 1 || req.PageSize != 20 {
			t.Errorf("req = %+v, want page 1 size 20", req)
		}
	})

	t.Run("valid values untouched", func(t *testing.T) {
		req := pagination.PageRequest{Page: 4, PageSize: 50}
		req.Normalize(cfg)
		if req.Page != 4 || req.PageSize != 50 {
			t.Errorf("req = %+v, want unchanged", req)
		}
	})
}

func TestPageRequestFromQuery(t *testing.T) {
	t.Run("full query", func(t *testing.T) {
		values := url.Values{
			"page":      {"2"},
			"page_size": {"10"},
			"search":    {"review"},
			"sort":      {"-CreatedAt"},
		}

		req := pagination.PageRequestFromQuery(values, cfg)
		if req.Page != 2 || req.PageSize != 10 {
			t.Errorf("req = %+v, want page 2 size 10", req)
		}
		if req.Search == nil || *req.Search != "review" {
			t.Errorf("Search = %v, want review", req.Search)
		}
		if len(req.Sort) != 1 || !req.Sort[0].Descending {
			t.Errorf("Sort = %+v, want descending CreatedAt", req.Sort)
		}
	})

	t.Run("empty query normalizes", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, cfg)
		if req.Page != 1 || req.PageSize != 20 {
			t.Errorf("req = %+v, want normalized defaults", req)
		}
		if req.Search != nil {
			t.Errorf("Search = %v, want nil", req.Search)
		}
	})
}

func TestSortFieldsUnmarshal(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var req pagination.PageRequest
		if err := json.Unmarshal([]byte(`{"sort":"CreatedAt,-Status"}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(req.Sort) != 2 || req.Sort[1].Field != "Status" {
			t.Errorf("Sort = %+v, want parsed string form", req.Sort)
		}
	})

	t.Run("array form", func(t *testing.T) {
		var req pagination.PageRequest
		data := `{"sort":[{"Field":"CreatedAt","Descending":true}]}`
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(req.Sort) != 1 || !req.Sort[0].Descending {
			t.Errorf("Sort = %+v, want descending array form", req.Sort)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	t.Run("partial last page rounds up", func(t *testing.T) {
		result := pagination.NewPageResult([]int{1, 2, 3}, 45, 1, 20)
		if result.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", result.TotalPages)
		}
	})

	t.Run("exact division", func(t *testing.T) {
		result := pagination.NewPageResult([]int{1}, 40, 1, 20)
		if result.TotalPages != 2 {
			t.Errorf("TotalPages = %d, want 2", result.TotalPages)
		}
	})

	t.Run("empty data never nil", func(t *testing.T) {
		result := pagination.NewPageResult[int](nil, 0, 1, 20)
		if result.Data == nil {
			t.Error("Data = nil, want empty slice")
		}
		if result.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", result.TotalPages)
		}
	})
}
