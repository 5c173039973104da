package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeNotImplemented     Code = "NOT_IMPLEMENTED"
)

// Pipeline errors.
const (
	CodePipelineNotFound     Code = "PIPELINE_NOT_FOUND"
	CodePipelineCreateFailed Code = "PIPELINE_CREATE_FAILED"
	CodePipelineUpdateFailed Code = "PIPELINE_UPDATE_FAILED"
	CodePipelineDeleteFailed Code = "PIPELINE_DELETE_FAILED"
	CodePipelineListFailed   Code = "PIPELINE_LIST_FAILED"
)

// Execution errors.
const (
	CodeExecutionNotFound      Code = "EXECUTION_NOT_FOUND"
	CodeInvalidExecutionID     Code = "INVALID_EXECUTION_ID"
	CodeExecutionCreateFailed  Code = "EXECUTION_CREATE_FAILED"
	CodeExecutionListFailed    Code = "EXECUTION_LIST_FAILED"
	CodeExecutionEnqueueFailed Code = "EXECUTION_ENQUEUE_FAILED"
	CodeQueueUnavailable       Code = "QUEUE_UNAVAILABLE"
)

// Stage / definition validation errors.
const (
	CodeStagesRequired           Code = "STAGES_REQUIRED"
	CodeStageRefIDRequired       Code = "STAGE_REF_ID_REQUIRED"
	CodeStageTypeRequired        Code = "STAGE_TYPE_REQUIRED"
	CodeDuplicateStageRefID      Code = "DUPLICATE_STAGE_REF_ID"
	CodeUnknownRequisiteRefID    Code = "UNKNOWN_REQUISITE_REF_ID"
	CodeCloudProviderRequired    Code = "CLOUD_PROVIDER_REQUIRED"
	CodeDeploymentDetailsMissing Code = "DEPLOYMENT_DETAILS_MISSING"
)

// Validation errors.
const (
	CodeSlugRequired Code = "SLUG_REQUIRED"
	CodeSlugInvalid  Code = "SLUG_INVALID"
	CodeNameRequired Code = "NAME_REQUIRED"
	CodeNameTooLong  Code = "NAME_TOO_LONG"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
