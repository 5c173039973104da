package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

func NotImplemented(feature string) *Error {
	return New(CodeNotImplemented, http.StatusNotImplemented, feature+" is not implemented yet")
}

// --- Pipeline ---

func PipelineNotFound() *Error {
	return New(CodePipelineNotFound, http.StatusNotFound, "Pipeline not found")
}

func PipelineCreateFailed(cause error) *Error {
	return Wrap(CodePipelineCreateFailed, http.StatusInternalServerError, "Failed to create pipeline", cause)
}

func PipelineUpdateFailed(cause error) *Error {
	return Wrap(CodePipelineUpdateFailed, http.StatusInternalServerError, "Failed to update pipeline", cause)
}

func PipelineDeleteFailed(cause error) *Error {
	return Wrap(CodePipelineDeleteFailed, http.StatusInternalServerError, "Failed to delete pipeline", cause)
}

func PipelineListFailed(cause error) *Error {
	return Wrap(CodePipelineListFailed, http.StatusInternalServerError, "Failed to list pipelines", cause)
}

// --- Execution ---

func ExecutionNotFound() *Error {
	return New(CodeExecutionNotFound, http.StatusNotFound, "Execution not found")
}

func InvalidExecutionID() *Error {
	return New(CodeInvalidExecutionID, http.StatusBadRequest, "Invalid execution ID")
}

func ExecutionCreateFailed(cause error) *Error {
	return Wrap(CodeExecutionCreateFailed, http.StatusInternalServerError, "Failed to create execution", cause)
}

func ExecutionListFailed(cause error) *Error {
	return Wrap(CodeExecutionListFailed, http.StatusInternalServerError, "Failed to list executions", cause)
}

func ExecutionEnqueueFailed(cause error) *Error {
	return Wrap(CodeExecutionEnqueueFailed, http.StatusInternalServerError, "Failed to enqueue execution", cause)
}

func QueueUnavailable() *Error {
	return New(CodeQueueUnavailable, http.StatusServiceUnavailable, "Execution queue is not configured")
}

// --- Stage / definition validation ---

func StagesRequired() *Error {
	return New(CodeStagesRequired, http.StatusBadRequest, "Pipeline definition must contain at least one stage")
}

func StageRefIDRequired() *Error {
	return New(CodeStageRefIDRequired, http.StatusBadRequest, "Stage refId is required")
}

func StageTypeRequired(refID string) *Error {
	return New(CodeStageTypeRequired, http.StatusBadRequest, "Stage "+refID+": type is required")
}

func DuplicateStageRefID(refID string) *Error {
	return New(CodeDuplicateStageRefID, http.StatusBadRequest, "Duplicate stage refId: "+refID)
}

func UnknownRequisiteRefID(refID, requisite string) *Error {
	return New(CodeUnknownRequisiteRefID, http.StatusBadRequest,
		"Stage "+refID+" depends on unknown refId: "+requisite)
}

func CloudProviderRequired(refID string) *Error {
	return New(CodeCloudProviderRequired, http.StatusBadRequest,
		"Bake stage "+refID+": cloudProviderType is required")
}

func DeploymentDetailsMissing() *Error {
	return New(CodeDeploymentDetailsMissing, http.StatusNotFound, "Stage has no deployment details")
}

// --- Validation ---

func SlugRequired() *Error {
	return New(CodeSlugRequired, http.StatusBadRequest, "Slug is required")
}

func SlugInvalid() *Error {
	return New(CodeSlugInvalid, http.StatusBadRequest, "Slug must be 3-63 chars, lowercase alphanumeric and hyphens, must start/end with alphanumeric")
}

func NameRequired() *Error {
	return New(CodeNameRequired, http.StatusBadRequest, "Name is required")
}

func NameTooLong() *Error {
	return New(CodeNameTooLong, http.StatusBadRequest, "Name must be 255 characters or fewer")
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
