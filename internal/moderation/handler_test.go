package moderation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/filmpulse/arbiter/internal/moderation"
	"github.com/filmpulse/arbiter/pkg/pagination"
)

type mockSystem struct {
	submitFn  func(ctx context.Context, cmd moderation.SubmitCommand) (*moderation.Record, bool, error)
	findFn    func(ctx context.Context, id uuid.UUID) (*moderation.Record, error)
	statusFn  func(ctx context.Context, contentID string) (*moderation.Record, error)
	listFn    func(ctx context.Context, page pagination.PageRequest, filters moderation.Filters) (*pagination.PageResult[moderation.Record], error)
	backlogFn func(ctx context.Context, limit int) ([]moderation.Record, error)
	countsFn  func(ctx context.Context) (map[moderation.Status]int, error)
	sweepFn   func(ctx context.Context) (*moderation.SweepReport, error)
}

func (m *mockSystem) Handler() *moderation.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) Submit(ctx context.Context, cmd moderation.SubmitCommand) (*moderation.Record, bool, error) {
	return m.submitFn(ctx, cmd)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*moderation.Record, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Status(ctx context.Context, contentID string) (*moderation.Record, error) {
	return m.statusFn(ctx, contentID)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters moderation.Filters) (*pagination.PageResult[moderation.Record], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Backlog(ctx context.Context, limit int) ([]moderation.Record, error) {
	return m.backlogFn(ctx, limit)
}

func (m *mockSystem) Counts(ctx context.Context) (map[moderation.Status]int, error) {
	return m.countsFn(ctx)
}

func (m *mockSystem) Sweep(ctx context.Context) (*moderation.SweepReport, error) {
	return m.sweepFn(ctx)
}

func newTestHandler(sys *mockSystem) *moderation.Handler {
	return moderation.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *moderation.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func ptr[T any](v T) *T { return &v }

func sampleRecord() moderation.Record {
	return moderation.Record{
		ID:             uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		ContentID:      "review-8812",
		RawText:        "this movie is garbage",
		HeuristicScore: 0.4,
		AIScore:        ptr(0.35),
		AIProcessed:    true,
		AIRationale:    ptr("mildly negative, not abusive"),
		AIAttempts:     1,
		Status:         moderation.StatusApproved,
		CreatedAt:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 10, 9, 0, 1, 0, time.UTC),
	}
}

func TestHandlerSubmit(t *testing.T) {
	rec := sampleRecord()

	t.Run("creates record", func(t *testing.T) {
		var captured moderation.SubmitCommand
		sys := &mockSystem{
			submitFn: func(_ context.Context, cmd moderation.SubmitCommand) (*moderation.Record, bool, error) {
				captured = cmd
				return &rec, true, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(moderation.SubmitCommand{
			ContentID: "review-8812",
			Text:      "this movie is garbage",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/moderation", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		if captured.ContentID != "review-8812" {
			t.Errorf("content id = %q, want review-8812", captured.ContentID)
		}

		var got moderation.Record
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != rec.ID {
			t.Errorf("id = %v, want %v", got.ID, rec.ID)
		}
		if got.Status != moderation.StatusApproved {
			t.Errorf("status = %v, want approved", got.Status)
		}
	})

	t.Run("duplicate content id returns 200 with existing record", func(t *testing.T) {
		sys := &mockSystem{
			submitFn: func(_ context.Context, _ moderation.SubmitCommand) (*moderation.Record, bool, error) {
				return &rec, false, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(moderation.SubmitCommand{
			ContentID: "review-8812",
			Text:      "this movie is garbage",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/moderation", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for existing record", w.Code)
		}

		var got moderation.Record
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != rec.ID {
			t.Errorf("id = %v, want existing %v", got.ID, rec.ID)
		}
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/moderation", bytes.NewReader([]byte("{broken")))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("blank content id returns 400", func(t *testing.T) {
		sys := &mockSystem{
			submitFn: func(_ context.Context, _ moderation.SubmitCommand) (*moderation.Record, bool, error) {
				return nil, false, moderation.ErrBlankContentID
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(moderation.SubmitCommand{Text: "hi"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/moderation", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	rec := sampleRecord()
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, _ moderation.Filters) (*pagination.PageResult[moderation.Record], error) {
			result := pagination.NewPageResult([]moderation.Record{rec}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("returns paginated list", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var result pagination.PageResult[moderation.Record]
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("total = %d, want 1", result.Total)
		}
		if len(result.Data) != 1 || result.Data[0].ContentID != rec.ContentID {
			t.Errorf("data = %+v, want one record for %s", result.Data, rec.ContentID)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured moderation.Filters
		sys.listFn = func(_ context.Context, _ pagination.PageRequest, f moderation.Filters) (*pagination.PageResult[moderation.Record], error) {
			captured = f
			result := pagination.NewPageResult([]moderation.Record{}, 0, 1, 20)
			return &result, nil
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation?status=pending&content_id=review-1", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if captured.Status == nil || *captured.Status != "pending" {
			t.Errorf("status filter = %v, want pending", captured.Status)
		}
		if captured.ContentID == nil || *captured.ContentID != "review-1" {
			t.Errorf("content_id filter = %v, want review-1", captured.ContentID)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	rec := sampleRecord()

	t.Run("returns record by id", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, id uuid.UUID) (*moderation.Record, error) {
				if id != rec.ID {
					return nil, moderation.ErrNotFound
				}
				return &rec, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation/"+rec.ID.String(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, _ uuid.UUID) (*moderation.Record, error) {
				return nil, moderation.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation/"+uuid.NewString(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation/not-a-uuid", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlerStatus(t *testing.T) {
	rec := sampleRecord()

	t.Run("returns record by content id", func(t *testing.T) {
		sys := &mockSystem{
			statusFn: func(_ context.Context, contentID string) (*moderation.Record, error) {
				if contentID != rec.ContentID {
					return nil, moderation.ErrNotFound
				}
				return &rec, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation/content/review-8812", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var got moderation.Record
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ContentID != rec.ContentID {
			t.Errorf("content id = %q, want %q", got.ContentID, rec.ContentID)
		}
	})

	t.Run("unknown content id returns 404", func(t *testing.T) {
		sys := &mockSystem{
			statusFn: func(_ context.Context, _ string) (*moderation.Record, error) {
				return nil, moderation.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/moderation/content/review-999", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestHandlerBacklog(t *testing.T) {
	pending := sampleRecord()
	pending.Status = moderation.StatusPending
	pending.AIProcessed = false
	pending.AIScore = nil

	var capturedLimit int
	sys := &mockSystem{
		backlogFn: func(_ context.Context, limit int) ([]moderation.Record, error) {
			capturedLimit = limit
			return []moderation.Record{pending}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/moderation/backlog?limit=10", nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if capturedLimit != 10 {
		t.Errorf("limit = %d, want 10", capturedLimit)
	}

	var got []moderation.Record
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Status != moderation.StatusPending {
		t.Errorf("backlog = %+v, want one pending record", got)
	}
}

func TestHandlerCounts(t *testing.T) {
	sys := &mockSystem{
		countsFn: func(_ context.Context) (map[moderation.Status]int, error) {
			return map[moderation.Status]int{
				moderation.StatusPending:  2,
				moderation.StatusApproved: 5,
				moderation.StatusRejected: 1,
				moderation.StatusFlagged:  0,
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/moderation/counts", nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got map[moderation.Status]int
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[moderation.StatusApproved] != 5 {
		t.Errorf("approved = %d, want 5", got[moderation.StatusApproved])
	}
	if got[moderation.StatusFlagged] != 0 {
		t.Errorf("flagged = %d, want 0", got[moderation.StatusFlagged])
	}
}

func TestHandlerSweep(t *testing.T) {
	sys := &mockSystem{
		sweepFn: func(_ context.Context) (*moderation.SweepReport, error) {
			return &moderation.SweepReport{Scanned: 3, Resolved: 2, Deferred: 1}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/moderation/sweep", nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got moderation.SweepReport
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scanned != 3 || got.Resolved != 2 || got.Deferred != 1 {
		t.Errorf("report = %+v, want {Scanned:3 Resolved:2 Deferred:1}", got)
	}
}
