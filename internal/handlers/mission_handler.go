package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// MissionHandler serves chapter navigation of mission sessions.
type MissionHandler struct {
	BaseHandler
	missions services.MissionService
}

func NewMissionHandler(missions services.MissionService, logger utils.Logger) *MissionHandler {
	return &MissionHandler{
		BaseHandler: NewBaseHandler(logger),
		missions:    missions,
	}
}

func (h *MissionHandler) GetChapter(c *gin.Context) {
	h.chapter(c, "Chapter retrieved", h.missions.Chapter)
}

func (h *MissionHandler) Advance(c *gin.Context) {
	h.chapter(c, "Chapter advanced", h.missions.Advance)
}

func (h *MissionHandler) Retreat(c *gin.Context) {
	h.chapter(c, "Chapter retreated", h.missions.Retreat)
}

// Retry resets the whole mission and returns to the first chapter
// @Router /sessions/{id}/chapter/retry [post]
func (h *MissionHandler) Retry(c *gin.Context) {
	h.chapter(c, "Mission reset", h.missions.Retry)
}

func (h *MissionHandler) GetScore(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	score, err := h.missions.Score(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Score retrieved", score)
}

func (h *MissionHandler) chapter(c *gin.Context, message string, op func(ctx context.Context, sessionID string) (*services.ChapterResponse, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	resp, err := op(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, message, resp)
}
