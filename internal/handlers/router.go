package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/auth"
	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	missionHandler *MissionHandler
	reportHandler  *ReportHandler
	registry       *services.SessionRegistry
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(serviceManager, validator, logger),
		missionHandler: NewMissionHandler(serviceManager.Mission(), logger),
		reportHandler:  NewReportHandler(serviceManager.Report(), validator, logger),
		registry:       serviceManager.Registry(),
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.ContextLogger(hm.logger))

	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware())
	{
		lessons := v1.Group("/lessons")
		{
			lessons.POST("/:lesson_id/sessions", hm.sessionHandler.OpenLesson)
			lessons.GET("/:lesson_id/report", hm.reportHandler.ExportLedger)
		}

		v1.POST("/missions/:mission_id/sessions", hm.sessionHandler.OpenMission)

		sessions := v1.Group("/sessions")
		sessions.Use(hm.requireOwner())
		{
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.CloseSession)

			// Answer capture
			sessions.PUT("/:id/questions/:question_id/answer", hm.sessionHandler.SetAnswer)
			sessions.PUT("/:id/questions/:question_id/blanks/:index", hm.sessionHandler.SetBlank)
			sessions.POST("/:id/questions/:question_id/drag", hm.sessionHandler.BeginDrag)
			sessions.POST("/:id/questions/:question_id/drop", hm.sessionHandler.Drop)
			sessions.DELETE("/:id/questions/:question_id/slots/:slot_id", hm.sessionHandler.ClearSlot)

			// Grading and hints
			sessions.POST("/:id/questions/:question_id/submit", hm.sessionHandler.SubmitQuestion)
			sessions.POST("/:id/questions/:question_id/hint", hm.sessionHandler.RevealHint)
			sessions.POST("/:id/questions/:question_id/hint/toggle", hm.sessionHandler.ToggleHint)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitAll)

			// Round control
			sessions.POST("/:id/generate", hm.sessionHandler.Generate)
			sessions.POST("/:id/retry", hm.sessionHandler.Retry)
			sessions.GET("/:id/report", hm.reportHandler.ExportSession)

			// Mission chapters
			sessions.GET("/:id/chapter", hm.missionHandler.GetChapter)
			sessions.POST("/:id/chapter/advance", hm.missionHandler.Advance)
			sessions.POST("/:id/chapter/retreat", hm.missionHandler.Retreat)
			sessions.POST("/:id/chapter/retry", hm.missionHandler.Retry)
			sessions.GET("/:id/score", hm.missionHandler.GetScore)
		}
	}
}

// requireOwner hides a session from callers whose token subject differs from
// the subject that opened it. Sessions opened anonymously are not checked.
func (hm *HandlerManager) requireOwner() gin.HandlerFunc {
	base := NewBaseHandler(hm.logger)
	return func(c *gin.Context) {
		ws, err := hm.registry.Get(c.Param("id"))
		if err != nil || ws.UserID == "" || ws.UserID == auth.UserID(c) {
			c.Next()
			return
		}
		base.RespondWithError(c, http.StatusNotFound, CodeNotFound,
			"session not found: "+c.Param("id"), services.ErrSessionNotFound)
		c.Abort()
	}
}

func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "learning-engine",
		"sessions": hm.registry.Len(),
	})
}
