package services

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
)

// ===== REQUEST DTOs =====

// AnswerRequest replaces a whole answer. Value uses the submission wire shape
// of the question type: a key, a source string, a list of blanks or a slot map.
type AnswerRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

type BlankRequest struct {
	Value string `json:"value"`
}

type DragRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type DropRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
	ItemID string `json:"item_id"`
}

type ReportRequest struct {
	Format string `form:"format" json:"format" validate:"omitempty,report_format"`
}

// ===== RESPONSE DTOs =====

type SessionResponse struct {
	ID          string          `json:"id"`
	LessonID    string          `json:"lesson_id"`
	MissionID   string          `json:"mission_id,omitempty"`
	Message     string          `json:"message,omitempty"`
	Questions   []render.Widget `json:"questions"`
	Answered    int             `json:"answered"`
	Graded      int             `json:"graded"`
	TotalPoints *int            `json:"total_points,omitempty"`
	Balance     *int            `json:"balance,omitempty"`
	Busy        string          `json:"busy,omitempty"`
	Mission     *MissionInfo    `json:"mission,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type MissionInfo struct {
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	XPReward     int                 `json:"xp_reward,omitempty"`
	ChapterCount int                 `json:"chapter_count"`
	Chapter      int                 `json:"chapter"`
	Score        models.MissionScore `json:"score"`
}

type ChapterResponse struct {
	SessionID   string          `json:"session_id"`
	Index       int             `json:"index"`
	Count       int             `json:"count"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content,omitempty"`
	Offset      int             `json:"offset"`
	Questions   []render.Widget `json:"questions"`
	HasPrevious bool            `json:"has_previous"`
	HasNext     bool            `json:"has_next"`
	ScrollToTop bool            `json:"scroll_to_top"`
}

type SubmitResponse struct {
	Results     []models.SubmissionResult `json:"results"`
	TotalPoints int                       `json:"total_points"`
	Score       *models.MissionScore      `json:"score,omitempty"`
	Session     *SessionResponse          `json:"session"`
}

type HintResponse struct {
	QuestionID string        `json:"question_id"`
	Visible    bool          `json:"visible"`
	Charged    bool          `json:"charged"`
	Cost       int           `json:"cost,omitempty"`
	Balance    *int          `json:"balance,omitempty"`
	Widget     render.Widget `json:"widget"`
}

type WidgetResponse struct {
	SessionID string        `json:"session_id"`
	Widget    render.Widget `json:"widget"`
}

// ===== VIEW BUILDERS (session lock held) =====

func buildSessionResponse(ws *Workspace, threshold float64) *SessionResponse {
	s := ws.Session
	resp := &SessionResponse{
		ID:        s.ID,
		LessonID:  s.LessonID,
		MissionID: s.MissionID,
		Message:   s.Message(),
		Questions: ws.Board.Widgets(),
		Graded:    s.Results.Len(),
		Busy:      s.InFlight(),
		CreatedAt: s.CreatedAt,
	}
	for _, q := range s.Questions() {
		if s.Answers.HasAnswer(q.ID) {
			resp.Answered++
		}
	}
	if total, ok := s.Results.AggregatePoints(); ok {
		resp.TotalPoints = &total
	}
	if balance, ok := s.Balance(); ok {
		resp.Balance = &balance
	}
	if m := ws.Mission; m != nil {
		resp.Mission = &MissionInfo{
			Title:        m.Title,
			Description:  m.Description,
			XPReward:     m.XPReward,
			ChapterCount: len(m.Chapters),
			Chapter:      ws.chapter,
			Score:        missionScore(ws, threshold),
		}
	}
	return resp
}

func buildChapterResponse(ws *Workspace, moved bool) *ChapterResponse {
	m := ws.Mission
	resp := &ChapterResponse{
		SessionID:   ws.ID(),
		Index:       ws.chapter,
		Count:       len(m.Chapters),
		HasPrevious: ws.chapter > 0,
		HasNext:     ws.chapter < len(m.Chapters)-1,
		ScrollToTop: moved,
		Questions:   []render.Widget{},
	}
	if len(m.Chapters) == 0 {
		return resp
	}

	ch := m.Chapters[ws.chapter]
	resp.ID = ch.ID
	resp.Title = ch.Title
	resp.Content = ch.Content
	resp.Offset = m.ChapterOffsets()[ws.chapter]
	for _, q := range ch.Questions {
		if w, ok := ws.Board.Widget(q.ID); ok {
			resp.Questions = append(resp.Questions, w)
		}
	}
	return resp
}

// missionScore derives the score from the result set. Total is every question
// of the mission; ungraded questions count as not correct. A mission without
// questions is 0/0 and not completed.
func missionScore(ws *Workspace, threshold float64) models.MissionScore {
	s := ws.Session
	questions := s.Questions()
	score := models.MissionScore{Total: len(questions)}
	for _, q := range questions {
		if res, ok := s.Results.Get(q.ID); ok && res.IsCorrect {
			score.Correct++
		}
	}
	if score.Total > 0 {
		score.Ratio = float64(score.Correct) / float64(score.Total)
		score.Completed = score.Ratio >= threshold
	}
	return score
}
