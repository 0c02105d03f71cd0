package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/auth"
	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves the lesson lifecycle: open, answer, submit, hint, retry.
type SessionHandler struct {
	BaseHandler
	lessons     services.LessonService
	answers     services.AnswerService
	submissions services.SubmissionCoordinator
	hints       services.HintController
	validator   *validator.Validator
}

func NewSessionHandler(
	manager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		lessons:     manager.Lesson(),
		answers:     manager.Answer(),
		submissions: manager.Submission(),
		hints:       manager.Hint(),
		validator:   validator,
	}
}

// OpenLesson fetches the lesson's questions and starts a session
// @Router /lessons/{lesson_id}/sessions [post]
func (h *SessionHandler) OpenLesson(c *gin.Context) {
	lessonID := ParseStringIDParam(c, "lesson_id")
	if lessonID == "" {
		return
	}
	h.LogRequest(c, "Opening lesson session", "lesson_id", lessonID)

	resp, err := h.lessons.Open(c.Request.Context(), lessonID, auth.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Session opened", resp)
}

// OpenMission loads the mission's chapters and starts a session
// @Router /missions/{mission_id}/sessions [post]
func (h *SessionHandler) OpenMission(c *gin.Context) {
	missionID := ParseStringIDParam(c, "mission_id")
	if missionID == "" {
		return
	}
	h.LogRequest(c, "Opening mission session", "mission_id", missionID)

	resp, err := h.lessons.OpenMission(c.Request.Context(), missionID, auth.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Session opened", resp)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	resp, err := h.lessons.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Session retrieved", resp)
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := h.lessons.Close(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== ANSWERS =====

// SetAnswer replaces the whole answer of one question
// @Router /sessions/{id}/questions/{question_id}/answer [put]
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	var req services.AnswerRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.answers.SetAnswer(c.Request.Context(), id, questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answer saved", resp)
}

func (h *SessionHandler) SetBlank(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	index, ok := ParseIntParam(c, "index")
	if !ok {
		return
	}
	var req services.BlankRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.answers.SetBlank(c.Request.Context(), id, questionID, index, req.Value)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Blank saved", resp)
}

func (h *SessionHandler) BeginDrag(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	var req services.DragRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.answers.BeginDrag(c.Request.Context(), id, questionID, req.ItemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Drag started", resp)
}

func (h *SessionHandler) Drop(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	var req services.DropRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.answers.Drop(c.Request.Context(), id, questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Item placed", resp)
}

func (h *SessionHandler) ClearSlot(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	slotID := ParseStringIDParam(c, "slot_id")
	if slotID == "" {
		return
	}

	resp, err := h.answers.ClearSlot(c.Request.Context(), id, questionID, slotID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Slot cleared", resp)
}

// ===== SUBMISSION =====

func (h *SessionHandler) SubmitQuestion(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Submitting question", "session_id", id, "question_id", questionID)

	resp, err := h.submissions.SubmitOne(c.Request.Context(), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question graded", resp)
}

// SubmitAll grades every question of the session in one batch
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitAll(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Submitting session", "session_id", id)

	resp, err := h.submissions.SubmitAll(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answers graded", resp)
}

// ===== HINTS =====

func (h *SessionHandler) RevealHint(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Revealing hint", "session_id", id, "question_id", questionID)

	resp, err := h.hints.Reveal(c.Request.Context(), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Hint revealed", resp)
}

func (h *SessionHandler) ToggleHint(c *gin.Context) {
	id, questionID, ok := sessionQuestion(c)
	if !ok {
		return
	}
	resp, err := h.hints.Toggle(c.Request.Context(), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Hint toggled", resp)
}

// ===== ROUND CONTROL =====

func (h *SessionHandler) Generate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Generating questions", "session_id", id)

	resp, err := h.lessons.Generate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Questions generated", resp)
}

func (h *SessionHandler) Retry(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	resp, err := h.lessons.Retry(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Session reset", resp)
}

func sessionQuestion(c *gin.Context) (id, questionID string, ok bool) {
	if id = ParseStringIDParam(c, "id"); id == "" {
		return "", "", false
	}
	if questionID = ParseStringIDParam(c, "question_id"); questionID == "" {
		return "", "", false
	}
	return id, questionID, true
}
