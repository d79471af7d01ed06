package queries_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/pagination"
)

type mockSystem struct {
	createFn         func(ctx context.Context, patientID uuid.UUID, cmd queries.CreateCommand) (queries.Query, error)
	findFn           func(ctx context.Context, id uuid.UUID) (queries.Query, error)
	listForPatientFn func(ctx context.Context, patientID uuid.UUID, page, perPage int) (queries.Page, error)
	stalledFn        func(ctx context.Context, olderThan time.Duration) ([]queries.Query, error)
	regenerateFn     func(ctx context.Context, id uuid.UUID) (queries.Query, error)
}

func (m *mockSystem) Handler(queue queries.ReviewQueue) *queries.Handler {
	return newTestHandler(m, queue)
}

func (m *mockSystem) Create(ctx context.Context, patientID uuid.UUID, cmd queries.CreateCommand) (queries.Query, error) {
	return m.createFn(ctx, patientID, cmd)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (queries.Query, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) ListForPatient(ctx context.Context, patientID uuid.UUID, page, perPage int) (queries.Page, error) {
	return m.listForPatientFn(ctx, patientID, page, perPage)
}

func (m *mockSystem) Stalled(ctx context.Context, olderThan time.Duration) ([]queries.Query, error) {
	return m.stalledFn(ctx, olderThan)
}

func (m *mockSystem) Regenerate(ctx context.Context, id uuid.UUID) (queries.Query, error) {
	return m.regenerateFn(ctx, id)
}

type mockQueue struct {
	listPendingFn func(ctx context.Context, page, perPage int) (queries.Page, error)
}

func (m *mockQueue) ListPending(ctx context.Context, page, perPage int) (queries.Page, error) {
	return m.listPendingFn(ctx, page, perPage)
}

func newTestHandler(sys queries.System, queue queries.ReviewQueue) *queries.Handler {
	return queries.NewHandler(
		sys,
		queue,
		discardLogger(),
		pagination.Config{DefaultPerPage: 10, MaxPerPage: 100},
		1<<10,
	)
}

func setupMux(h *queries.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func as(r *http.Request, role string, id uuid.UUID) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: id, Role: role}))
}

func sampleQuery(patient uuid.UUID) queries.Query {
	return queries.Query{
		ID:          uuid.New(),
		PatientID:   patient,
		Question:    "I have had a fever for two days.",
		Category:    queries.CategoryGeneral,
		Urgency:     queries.UrgencyNormal,
		Status:      queries.StatusPending,
		IsAnonymous: true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestHandlerCreate(t *testing.T) {
	patient := uuid.New()

	tests := []struct {
		name        string
		role        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"created", auth.RolePatient, "application/json", `{"question":"fever","is_anonymous":true}`, http.StatusCreated},
		{"clinician forbidden", auth.RoleClinician, "application/json", `{"question":"fever"}`, http.StatusForbidden},
		{"anonymous caller", "", "application/json", `{"question":"fever"}`, http.StatusUnauthorized},
		{"not json", auth.RolePatient, "text/plain", `question=fever`, http.StatusUnsupportedMediaType},
		{"malformed", auth.RolePatient, "application/json", `{"question":`, http.StatusBadRequest},
		{"bad urgency", auth.RolePatient, "application/json", `{"question":"q","urgency_level":"extreme"}`, http.StatusBadRequest},
		{"too large", auth.RolePatient, "application/json", `{"question":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge},
		{"blank question", auth.RolePatient, "application/json", `{"question":"  "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				createFn: func(_ context.Context, patientID uuid.UUID, cmd queries.CreateCommand) (queries.Query, error) {
					if strings.TrimSpace(cmd.Question) == "" {
						return queries.Query{}, queries.ErrEmptyQuestion
					}
					if patientID != patient {
						t.Errorf("patientID = %s, want %s", patientID, patient)
					}
					q := sampleQuery(patientID)
					q.IsAnonymous = cmd.IsAnonymous
					return q, nil
				},
			}
			mux := setupMux(newTestHandler(sys, &mockQueue{}))

			req := httptest.NewRequest(http.MethodPost, "/queries", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.role != "" {
				req = as(req, tt.role, patient)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				var body map[string]string
				json.NewDecoder(rec.Body).Decode(&body)
				if body["error"] == "" {
					t.Error("error body missing")
				}
				return
			}

			var v queries.View
			if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if v.Status != queries.StatusPending || !v.IsAnonymous {
				t.Errorf("view = %+v", v)
			}
		})
	}
}

func TestHandlerListByRole(t *testing.T) {
	patient := uuid.New()
	var patientCalled, queueCalled bool

	sys := &mockSystem{
		listForPatientFn: func(_ context.Context, patientID uuid.UUID, page, perPage int) (queries.Page, error) {
			patientCalled = true
			if patientID != patient || page != 2 || perPage != 5 {
				t.Errorf("ListForPatient(%s, %d, %d)", patientID, page, perPage)
			}
			return queries.Page{Queries: []queries.View{}, Pages: 3, CurrentPage: 2}, nil
		},
	}
	queue := &mockQueue{
		listPendingFn: func(_ context.Context, page, perPage int) (queries.Page, error) {
			queueCalled = true
			if page != 1 || perPage != 10 {
				t.Errorf("ListPending(%d, %d)", page, perPage)
			}
			return queries.Page{Queries: []queries.View{}, Pages: 1, CurrentPage: 1}, nil
		},
	}
	mux := setupMux(newTestHandler(sys, queue))

	req := as(httptest.NewRequest(http.MethodGet, "/queries?page=2&per_page=5", nil), auth.RolePatient, patient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !patientCalled {
		t.Fatalf("patient listing: status %d, called %v", rec.Code, patientCalled)
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	for _, key := range []string{"queries", "pages", "current_page"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}

	req = as(httptest.NewRequest(http.MethodGet, "/queries", nil), auth.RoleClinician, uuid.New())
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !queueCalled {
		t.Errorf("clinician listing: status %d, called %v", rec.Code, queueCalled)
	}
}

func TestHandlerFind(t *testing.T) {
	owner := uuid.New()
	q := sampleQuery(owner)

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (queries.Query, error) {
			if id != q.ID {
				return queries.Query{}, queries.ErrNotFound
			}
			return q, nil
		},
	}
	mux := setupMux(newTestHandler(sys, &mockQueue{}))

	tests := []struct {
		name       string
		path       string
		role       string
		caller     uuid.UUID
		wantStatus int
		wantAuthor bool
	}{
		{"owner", "/queries/" + q.ID.String(), auth.RolePatient, owner, http.StatusOK, true},
		{"other patient", "/queries/" + q.ID.String(), auth.RolePatient, uuid.New(), http.StatusForbidden, false},
		{"clinician", "/queries/" + q.ID.String(), auth.RoleClinician, uuid.New(), http.StatusOK, false},
		{"unknown", "/queries/" + uuid.New().String(), auth.RoleClinician, uuid.New(), http.StatusNotFound, false},
		{"bad id", "/queries/not-a-uuid", auth.RoleClinician, uuid.New(), http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := as(httptest.NewRequest(http.MethodGet, tt.path, nil), tt.role, tt.caller)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var v queries.View
			json.NewDecoder(rec.Body).Decode(&v)
			if (v.PatientID != nil) != tt.wantAuthor {
				t.Errorf("patient_id present = %v, want %v", v.PatientID != nil, tt.wantAuthor)
			}
		})
	}
}

func TestHandlerStalledAndRegenerate(t *testing.T) {
	q := sampleQuery(uuid.New())
	var gotOlderThan time.Duration

	sys := &mockSystem{
		stalledFn: func(_ context.Context, olderThan time.Duration) ([]queries.Query, error) {
			gotOlderThan = olderThan
			return []queries.Query{q}, nil
		},
		regenerateFn: func(_ context.Context, id uuid.UUID) (queries.Query, error) {
			if id != q.ID {
				return queries.Query{}, &queries.TransitionError{ID: id, From: queries.StatusVerified, To: queries.StatusPendingReview}
			}
			return q, nil
		},
	}
	mux := setupMux(newTestHandler(sys, &mockQueue{}))
	clinician := uuid.New()

	req := as(httptest.NewRequest(http.MethodGet, "/queries/stalled?older_than=10m", nil), auth.RoleClinician, clinician)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || gotOlderThan != 10*time.Minute {
		t.Errorf("stalled: status %d, older_than %v", rec.Code, gotOlderThan)
	}

	req = as(httptest.NewRequest(http.MethodGet, "/queries/stalled?older_than=soon", nil), auth.RoleClinician, clinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad duration: status %d", rec.Code)
	}

	req = as(httptest.NewRequest(http.MethodGet, "/queries/stalled", nil), auth.RolePatient, uuid.New())
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient stalled: status %d", rec.Code)
	}

	req = as(httptest.NewRequest(http.MethodPost, "/queries/"+q.ID.String()+"/regenerate", nil), auth.RoleClinician, clinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Errorf("regenerate: status %d", rec.Code)
	}

	req = as(httptest.NewRequest(http.MethodPost, "/queries/"+uuid.New().String()+"/regenerate", nil), auth.RoleClinician, clinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("regenerate verified: status %d", rec.Code)
	}
}
