package prompts_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"invalid stage", prompts.ErrInvalidStage, http.StatusBadRequest},
		{"invalid prompt", prompts.ErrInvalid, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", prompts.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStages(t *testing.T) {
	want := []prompts.Stage{prompts.StageClassify, prompts.StageAnswer}
	stages := prompts.Stages()
	if len(stages) != len(want) {
		t.Fatalf("len(Stages()) = %d, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s != want[i] {
			t.Errorf("Stages()[%d] = %q, want %q", i, s, want[i])
		}
	}

	var s prompts.Stage
	if err := json.Unmarshal([]byte(`"answer"`), &s); err != nil || s != prompts.StageAnswer {
		t.Errorf("Unmarshal(answer) = %q, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`"enhance"`), &s); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Unmarshal(enhance) err = %v", err)
	}
	if _, err := prompts.ParseStage("finalize"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("ParseStage(finalize) err = %v", err)
	}
}

func TestSpecs(t *testing.T) {
	classify, err := prompts.Spec(prompts.StageClassify)
	if err != nil {
		t.Fatalf("Spec(classify): %v", err)
	}
	for _, label := range []string{"Cardiology", "Ear, Nose & Throat", "General Medicine", "urgency_level"} {
		if !strings.Contains(classify, label) {
			t.Errorf("classify spec missing %q", label)
		}
	}

	answer, err := prompts.Spec(prompts.StageAnswer)
	if err != nil {
		t.Fatalf("Spec(answer): %v", err)
	}
	if !strings.Contains(answer, "# Category") || !strings.Contains(answer, "# Next Steps") {
		t.Error("answer spec missing required sections")
	}

	composed, err := prompts.Compose("  custom instructions  ", prompts.StageAnswer)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.HasPrefix(composed, "custom instructions\n\n") || !strings.HasSuffix(composed, answer) {
		t.Error("Compose did not join instructions and spec")
	}

	if _, err := prompts.Spec("enhance"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Spec(enhance) err = %v", err)
	}
}

func TestMemorySystem(t *testing.T) {
	ctx := context.Background()
	sys := prompts.NewMemory(discardLogger(), pagination.Config{DefaultPerPage: 10, MaxPerPage: 50}, 0)

	defaults, _ := prompts.DefaultInstructions(prompts.StageAnswer)
	got, err := sys.Instructions(ctx, prompts.StageAnswer)
	if err != nil || got != defaults {
		t.Fatalf("Instructions before override = %q, %v", got, err)
	}

	if _, err := sys.Create(ctx, prompts.CreateCommand{Name: "", Stage: prompts.StageAnswer, Instructions: "x"}); !errors.Is(err, prompts.ErrInvalid) {
		t.Errorf("blank name: err = %v", err)
	}

	first, err := sys.Create(ctx, prompts.CreateCommand{Name: "concise", Stage: prompts.StageAnswer, Instructions: "Be concise."})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := sys.Create(ctx, prompts.CreateCommand{Name: "thorough", Stage: prompts.StageAnswer, Instructions: "Be thorough.", Description: ptr("long form")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sys.Create(ctx, prompts.CreateCommand{Name: "concise", Stage: prompts.StageClassify, Instructions: "dup"}); !errors.Is(err, prompts.ErrDuplicate) {
		t.Errorf("duplicate name: err = %v", err)
	}

	if _, err := sys.Activate(ctx, first.ID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := sys.Activate(ctx, second.ID); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	active, _ := sys.List(ctx, pagination.PageRequest{}, prompts.Filters{Active: ptr(true)})
	if active.Total != 1 || active.Data[0].ID != second.ID {
		t.Errorf("active prompts = %+v, want only %s", active.Data, second.ID)
	}

	got, _ = sys.Instructions(ctx, prompts.StageAnswer)
	if got != "Be thorough." {
		t.Errorf("Instructions with override = %q", got)
	}

	composed, err := prompts.SystemPrompt(ctx, sys, prompts.StageAnswer)
	if err != nil || !strings.HasPrefix(composed, "Be thorough.") {
		t.Errorf("SystemPrompt = %q, %v", composed, err)
	}

	if _, err := sys.Deactivate(ctx, second.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	got, _ = sys.Instructions(ctx, prompts.StageAnswer)
	if got != defaults {
		t.Error("deactivating the override should restore defaults")
	}

	searched, _ := sys.List(ctx, pagination.PageRequest{Search: ptr("LONG")}, prompts.Filters{})
	if searched.Total != 1 || searched.Data[0].ID != second.ID {
		t.Errorf("search by description = %d results", searched.Total)
	}

	if err := sys.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sys.Find(ctx, first.ID); !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("Find deleted: err = %v", err)
	}
}

func TestMemoryUpdateStageConflict(t *testing.T) {
	ctx := context.Background()
	sys := prompts.NewMemory(discardLogger(), pagination.Config{DefaultPerPage: 10, MaxPerPage: 50}, 0)

	triage, _ := sys.Create(ctx, prompts.CreateCommand{Name: "triage", Stage: prompts.StageClassify, Instructions: "Flag chest pain as urgent."})
	answer, _ := sys.Create(ctx, prompts.CreateCommand{Name: "answer", Stage: prompts.StageAnswer, Instructions: "Be plain."})
	sys.Activate(ctx, triage.ID)
	sys.Activate(ctx, answer.ID)

	move := prompts.UpdateCommand{Name: "triage", Stage: prompts.StageAnswer, Instructions: "Flag chest pain as urgent."}
	if _, err := sys.Update(ctx, triage.ID, move); !errors.Is(err, prompts.ErrDuplicate) {
		t.Fatalf("moving active prompt onto active stage: err = %v", err)
	}

	sys.Deactivate(ctx, answer.ID)
	moved, err := sys.Update(ctx, triage.ID, move)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.Stage != prompts.StageAnswer || !moved.Active {
		t.Errorf("moved = %+v", moved)
	}

	classify, _ := prompts.DefaultInstructions(prompts.StageClassify)
	if got, _ := sys.Instructions(ctx, prompts.StageClassify); got != classify {
		t.Error("classify should fall back to defaults once its override moves")
	}
}
