package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maraichr/conveyor/pkg/apierr"
)

func TestExecutionHandler_Get_InvalidID(t *testing.T) {
	eh := &ExecutionHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/not-a-uuid", nil)
	w := httptest.NewRecorder()

	eh.Get(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidExecutionID {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidExecutionID, resp.Error.Code)
	}
}

func TestExecutionHandler_DeploymentDetails_InvalidID(t *testing.T) {
	eh := &ExecutionHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/not-a-uuid/stages/1/deployment-details", nil)
	w := httptest.NewRecorder()

	eh.DeploymentDetails(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidExecutionID {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidExecutionID, resp.Error.Code)
	}
}
