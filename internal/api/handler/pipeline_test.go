package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maraichr/conveyor/pkg/apierr"
	"github.com/maraichr/conveyor/pkg/models"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestPipelineHandler_Create_InvalidBody(t *testing.T) {
	ph := &PipelineHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader([]byte("invalid")))
	w := httptest.NewRecorder()

	ph.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidRequestBody {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRequestBody, resp.Error.Code)
	}
}

func TestPipelineHandler_Create_InvalidSlug(t *testing.T) {
	ph := &PipelineHandler{}
	body, _ := json.Marshal(map[string]any{
		"slug": "",
		"name": "Bake and Deploy",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader(body))
	w := httptest.NewRecorder()

	ph.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeSlugRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeSlugRequired, resp.Error.Code)
	}
}

func TestPipelineHandler_Create_InvalidName(t *testing.T) {
	ph := &PipelineHandler{}
	body, _ := json.Marshal(map[string]any{
		"slug": "bake-and-deploy",
		"name": "",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader(body))
	w := httptest.NewRecorder()

	ph.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeNameRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeNameRequired, resp.Error.Code)
	}
}

func TestPipelineHandler_Create_EmptyDefinition(t *testing.T) {
	ph := &PipelineHandler{}
	body, _ := json.Marshal(map[string]any{
		"slug":       "bake-and-deploy",
		"name":       "Bake and Deploy",
		"definition": map[string]any{"stages": []any{}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader(body))
	w := httptest.NewRecorder()

	ph.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeStagesRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeStagesRequired, resp.Error.Code)
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug string
		code apierr.Code
	}{
		{"", apierr.CodeSlugRequired},
		{"UPPER", apierr.CodeSlugInvalid},
		{"-leading-dash", apierr.CodeSlugInvalid},
		{"ok", apierr.CodeSlugInvalid},
		{"bake-and-deploy", ""},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			e := validateSlug(tt.slug)
			switch {
			case tt.code == "" && e != nil:
				t.Fatalf("expected valid, got %s", e.Code())
			case tt.code != "" && (e == nil || e.Code() != tt.code):
				t.Fatalf("expected code %s, got %v", tt.code, e)
			}
		})
	}
}

func TestValidateDefinition(t *testing.T) {
	bakeStage := models.StageDefinition{
		RefID: "1",
		Type:  "bake",
		Context: map[string]any{
			"cloudProviderType": "aws",
			"region":            "us-east-1",
		},
	}

	tests := []struct {
		name   string
		stages []models.StageDefinition
		code   apierr.Code
	}{
		{
			name:   "valid bake and deploy",
			stages: []models.StageDefinition{bakeStage, {RefID: "2", Type: "deploy", RequisiteStageRefIDs: []string{"1"}}},
		},
		{
			name:   "no stages",
			stages: nil,
			code:   apierr.CodeStagesRequired,
		},
		{
			name:   "missing refId",
			stages: []models.StageDefinition{{Type: "wait"}},
			code:   apierr.CodeStageRefIDRequired,
		},
		{
			name:   "duplicate refId",
			stages: []models.StageDefinition{bakeStage, bakeStage},
			code:   apierr.CodeDuplicateStageRefID,
		},
		{
			name:   "missing type",
			stages: []models.StageDefinition{{RefID: "1"}},
			code:   apierr.CodeStageTypeRequired,
		},
		{
			name:   "bake without provider",
			stages: []models.StageDefinition{{RefID: "1", Type: "bake"}},
			code:   apierr.CodeCloudProviderRequired,
		},
		{
			name:   "unknown requisite",
			stages: []models.StageDefinition{bakeStage, {RefID: "2", Type: "deploy", RequisiteStageRefIDs: []string{"7"}}},
			code:   apierr.CodeUnknownRequisiteRefID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validateDefinition(models.PipelineDefinition{Stages: tt.stages})
			switch {
			case tt.code == "" && e != nil:
				t.Fatalf("expected valid, got %s", e.Code())
			case tt.code != "" && (e == nil || e.Code() != tt.code):
				t.Fatalf("expected code %s, got %v", tt.code, e)
			}
		})
	}
}
