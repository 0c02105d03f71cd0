package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/auth"
	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error codes let clients pick a presentation without parsing messages.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInFlight     = "REQUEST_IN_FLIGHT"
	CodeFrozen       = "ANSWER_FROZEN"
	CodeHintRejected = "HINT_REJECTED"
	CodeFetchFailed  = "FETCH_FAILED"
	CodeSubmitFailed = "SUBMISSION_FAILED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// log returns the request-scoped logger when ContextLogger ran, the handler's otherwise.
func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"user_id", auth.UserID(c),
	}
	fields = append(fields, additionalFields...)
	h.log(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", auth.UserID(c)}, additionalFields...)
	h.log(c).LogError(err, message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", auth.UserID(c)}, additionalFields...)
	h.log(c).Warn(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses. Upstream failures
// are 502 and marked retryable; hint rejections carry the economy's message inline.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err, validationErrors)
		return
	}

	var hintErr *services.HintRejectedError
	if errors.As(err, &hintErr) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, CodeHintRejected, hintErr.Error(), err,
			map[string]interface{}{"question_id": hintErr.QuestionID})
		return
	}

	var fetchErr *services.FetchError
	if errors.As(err, &fetchErr) {
		h.RespondWithError(c, http.StatusBadGateway, CodeFetchFailed, "Failed to load "+fetchErr.Resource, err,
			map[string]interface{}{"id": fetchErr.ID, "retryable": true})
		return
	}

	var submitErr *services.SubmissionError
	if errors.As(err, &submitErr) {
		h.RespondWithError(c, http.StatusBadGateway, CodeSubmitFailed, "Submission failed, answers were kept", err,
			map[string]interface{}{"question_id": submitErr.QuestionID, "retryable": true})
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error(), err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error(), err)
	case errors.Is(err, services.ErrRequestInFlight):
		h.RespondWithError(c, http.StatusConflict, CodeInFlight, err.Error(), err)
	case errors.Is(err, services.ErrAnswerFrozen):
		h.RespondWithError(c, http.StatusConflict, CodeFrozen, err.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, err.Error(), err)
	case services.IsUpstream(err):
		h.RespondWithError(c, http.StatusBadGateway, CodeUpstream, "Upstream service failed", err,
			map[string]interface{}{"retryable": true})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
