package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/pagination"
)

type mockSystem struct {
	listFn         func(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error)
	findFn         func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	instructionsFn func(ctx context.Context, stage prompts.Stage) (string, error)
	createFn       func(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error)
	updateFn       func(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	activateFn     func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	deactivateFn   func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
}

func (m *mockSystem) Handler() *prompts.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	return m.instructionsFn(ctx, stage)
}

func (m *mockSystem) Create(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Activate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.activateFn(ctx, id)
}

func (m *mockSystem) Deactivate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.deactivateFn(ctx, id)
}

func newTestHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		discardLogger(),
		pagination.Config{DefaultPerPage: 20, MaxPerPage: 100},
		1<<16,
	)
}

func setupMux(h *prompts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func asRole(r *http.Request, role string) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: uuid.New(), Role: role}))
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Name:         "plain-language",
		Stage:        prompts.StageAnswer,
		Instructions: "Answer in plain language.",
		Description:  ptr("Plain language answers"),
	}
}

func TestHandlerRequiresClinician(t *testing.T) {
	sys := &mockSystem{
		listFn: func(context.Context, pagination.PageRequest, prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			result := pagination.NewPageResult([]prompts.Prompt{samplePrompt()}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		role string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"patient", auth.RolePatient, http.StatusForbidden},
		{"clinician", auth.RoleClinician, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/prompts", nil)
			if tt.role != "" {
				req = asRole(req, tt.role)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
			if cmd.Stage != prompts.StageAnswer {
				t.Errorf("stage = %q", cmd.Stage)
			}
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"created", `{"name":"plain-language","stage":"answer","instructions":"Answer in plain language."}`, "application/json", http.StatusCreated},
		{"invalid stage", `{"name":"x","stage":"enhance","instructions":"y"}`, "application/json", http.StatusBadRequest},
		{"not json", `name=x`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asRole(httptest.NewRequest("POST", "/prompts", bytes.NewBufferString(tt.body)), auth.RoleClinician)
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerStageContent(t *testing.T) {
	sys := &mockSystem{
		instructionsFn: func(_ context.Context, stage prompts.Stage) (string, error) {
			return "effective " + string(stage), nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	req := asRole(httptest.NewRequest("GET", "/prompts/classify/instructions", nil), auth.RoleClinician)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("instructions status = %d", rec.Code)
	}
	var content prompts.StageContent
	json.NewDecoder(rec.Body).Decode(&content)
	if content.Content != "effective classify" {
		t.Errorf("content = %q", content.Content)
	}

	req = asRole(httptest.NewRequest("GET", "/prompts/answer/spec", nil), auth.RoleClinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	json.NewDecoder(rec.Body).Decode(&content)
	spec, _ := prompts.Spec(prompts.StageAnswer)
	if rec.Code != http.StatusOK || content.Content != spec {
		t.Errorf("spec status = %d", rec.Code)
	}

	req = asRole(httptest.NewRequest("GET", "/prompts/finalize/spec", nil), auth.RoleClinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown stage status = %d", rec.Code)
	}
}

func TestHandlerActivate(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		activateFn: func(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
			if id != p.ID {
				return nil, prompts.ErrNotFound
			}
			active := p
			active.Active = true
			return &active, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	req := asRole(httptest.NewRequest("POST", "/prompts/"+p.ID.String()+"/activate", nil), auth.RoleClinician)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got prompts.Prompt
	json.NewDecoder(rec.Body).Decode(&got)
	if !got.Active {
		t.Error("activated prompt not active")
	}

	req = asRole(httptest.NewRequest("POST", "/prompts/"+uuid.New().String()+"/activate", nil), auth.RoleClinician)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}
}

func TestHandlerPreview(t *testing.T) {
	sys := &mockSystem{
		instructionsFn: func(_ context.Context, stage prompts.Stage) (string, error) {
			return "Be concise.", nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	req := asRole(httptest.NewRequest("GET", "/prompts/answer/preview", nil), auth.RoleClinician)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var content prompts.StageContent
	if err := json.NewDecoder(rec.Body).Decode(&content); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want, _ := prompts.Compose("Be concise.", prompts.StageAnswer)
	if content.Stage != prompts.StageAnswer || content.Content != want {
		t.Errorf("preview = %+v", content)
	}
}

func TestHandlerInvalidID(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	for _, path := range []string{"/prompts/not-a-uuid", "/prompts/42/deactivate"} {
		method := "GET"
		if path != "/prompts/not-a-uuid" {
			method = "POST"
		}
		req := asRole(httptest.NewRequest(method, path, nil), auth.RoleClinician)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", method, path, rec.Code)
		}
	}
}

func TestHandlerSearch(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters prompts.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]prompts.Prompt{samplePrompt()}, 1, page.Page, page.PerPage)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"page":0,"per_page":500,"stage":"classify","active":true}`
	req := asRole(httptest.NewRequest("POST", "/prompts/search", bytes.NewBufferString(body)), auth.RoleClinician)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if gotPage.Page != 1 || gotPage.PerPage != 100 {
		t.Errorf("page not normalized: %+v", gotPage)
	}
	if gotFilters.Stage == nil || *gotFilters.Stage != prompts.StageClassify {
		t.Errorf("stage filter = %v", gotFilters.Stage)
	}
	if gotFilters.Active == nil || !*gotFilters.Active {
		t.Errorf("active filter = %v", gotFilters.Active)
	}
}
