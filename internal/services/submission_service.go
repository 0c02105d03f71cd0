package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
)

var (
	errEmptyResponse  = errors.New("scoring service returned no result")
	errMissingVerdict = errors.New("scoring service returned no verdict")
)

type submissionCoordinator struct {
	registry    *SessionRegistry
	submissions repositories.SubmissionService
	telemetry   repositories.TelemetrySink
	publisher   events.EventPublisher
	config      EngineConfig
	logger      *ServiceLogger
	tasks       *backgroundTasks
}

func NewSubmissionCoordinator(registry *SessionRegistry, deps Dependencies, config EngineConfig, tasks *backgroundTasks, logger *ServiceLogger) SubmissionCoordinator {
	return &submissionCoordinator{
		registry:    registry,
		submissions: deps.Submissions,
		telemetry:   deps.Telemetry,
		publisher:   deps.Events,
		config:      config.withDefaults(),
		logger:      logger,
		tasks:       tasks,
	}
}

// SubmitOne grades a single answered question and merges its verdict.
func (c *submissionCoordinator) SubmitOne(ctx context.Context, sessionID, questionID string) (resp *SubmitResponse, err error) {
	ws, err := c.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := c.logger.WithOperation(ctx, "submit_one", ws.UserID, sessionID)
	defer func() { log.LogResult(questionID, err) }()

	sess := ws.Session
	if err := sess.BeginRequest("submit"); err != nil {
		return nil, err
	}
	defer sess.EndRequest()

	sess.Lock()
	q, ok := sess.Question(questionID)
	if !ok {
		sess.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	if sess.Results.Has(questionID) {
		sess.Unlock()
		return nil, ErrAlreadyGraded
	}
	if !sess.Answers.HasAnswer(questionID) {
		sess.Unlock()
		return nil, ErrAnswerRequired
	}
	record, err := answerRecord(ws, q)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	results, err := c.submissions.Submit(ctx, []models.AnswerRecord{record})
	if err != nil {
		return nil, &SubmissionError{SessionID: sessionID, QuestionID: questionID, Err: err}
	}
	res, ok := pickResult(results, questionID)
	if !ok {
		return nil, &SubmissionError{SessionID: sessionID, QuestionID: questionID, Err: errEmptyResponse}
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Results.Merge(res)
	ws.Board.Invalidate(questionID)

	if c.publisher != nil {
		graded := models.GradedQuestion{
			QuestionID:   questionID,
			QuestionType: q.Type,
			Answer:       record.UserAnswer,
			Timing:       models.TimingRecord{Start: record.StartTime, End: record.EndTime},
			Result:       res,
		}
		event := events.NewQuestionGradedEvent(sessionID, sess.LessonID, ws.UserID, graded)
		c.tasks.run(ctx, "question_event", sessionID, func(ctx context.Context) error {
			return c.publisher.PublishTelemetryEvent(ctx, event)
		})
	}

	return c.response(ws, []models.SubmissionResult{res}), nil
}

// SubmitAll grades every question in presentation order. Unanswered questions
// travel as empty placeholders. The verdicts replace the whole result set;
// any failed entry fails the submission and leaves the previous results.
func (c *submissionCoordinator) SubmitAll(ctx context.Context, sessionID string) (resp *SubmitResponse, err error) {
	ws, err := c.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := c.logger.WithOperation(ctx, "submit_all", ws.UserID, sessionID)
	defer func() { log.LogResult("", err) }()

	sess := ws.Session
	if err := sess.BeginRequest("submit"); err != nil {
		return nil, err
	}
	defer sess.EndRequest()

	sess.Lock()
	questions := sess.Questions()
	if len(questions) == 0 {
		sess.Unlock()
		return nil, ErrNoQuestions
	}
	records := make([]models.AnswerRecord, 0, len(questions))
	for i := range questions {
		record, err := answerRecord(ws, &questions[i])
		if err != nil {
			sess.Unlock()
			return nil, err
		}
		records = append(records, record)
	}
	sess.Unlock()

	results, err := c.submissions.Submit(ctx, records)
	if err != nil {
		return nil, &SubmissionError{SessionID: sessionID, Err: err}
	}
	if err := checkVerdicts(records, results); err != nil {
		return nil, &SubmissionError{SessionID: sessionID, Err: err}
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Results.Replace(results)
	ws.Board.InvalidateAll()

	resp = c.response(ws, results)
	if c.telemetry != nil {
		batch := gradedBatch(ws, questions, records, resp.TotalPoints)
		c.tasks.run(ctx, "telemetry_forward", sessionID, func(ctx context.Context) error {
			return c.telemetry.Forward(ctx, batch)
		})
	}
	return resp, nil
}

func (c *submissionCoordinator) Wait() {
	c.tasks.wait()
}

func (c *submissionCoordinator) response(ws *Workspace, results []models.SubmissionResult) *SubmitResponse {
	total, _ := ws.Session.Results.AggregatePoints()
	resp := &SubmitResponse{
		Results:     results,
		TotalPoints: total,
		Session:     buildSessionResponse(ws, c.config.CompletionThreshold),
	}
	if ws.IsMission() {
		score := resp.Session.Mission.Score
		resp.Score = &score
	}
	return resp
}

// backgroundTasks runs telemetry work detached from the request's cancellation
// but keeps its values, so the bearer token still reaches the collectors.
// Failures are logged only.
type backgroundTasks struct {
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *ServiceLogger
}

func newBackgroundTasks(timeout time.Duration, logger *ServiceLogger) *backgroundTasks {
	return &backgroundTasks{timeout: timeout, logger: logger}
}

func (b *backgroundTasks) run(parent context.Context, op, sessionID string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), b.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			b.logger.Slog().Warn("Telemetry forward failed",
				"operation", op,
				"session_id", sessionID,
				"error", err)
		}
	}()
}

func (b *backgroundTasks) wait() {
	b.wg.Wait()
}

// answerRecord builds the wire record for q; the end of the timing window is now.
// Callers hold the session lock.
func answerRecord(ws *Workspace, q *models.Question) (models.AnswerRecord, error) {
	sess := ws.Session
	answer, err := models.EncodeAnswer(sess.Answers.Get(q.ID))
	if err != nil {
		return models.AnswerRecord{}, fmt.Errorf("encode answer for question %s: %w", q.ID, err)
	}
	window := sess.Timers.ReadWindow(q.ID, sess.Clock())
	return models.AnswerRecord{
		QuestionID:     q.ID,
		QuestionTypeID: typeID(q),
		UserAnswer:     answer,
		StartTime:      window.Start,
		EndTime:        window.End,
	}, nil
}

// typeID prefers the id the backend delivered, so unknown types round-trip.
func typeID(q *models.Question) int {
	if q.TypeID != 0 {
		return q.TypeID
	}
	return q.Type.ID()
}

// checkVerdicts requires one verdict per submitted question.
func checkVerdicts(records []models.AnswerRecord, results []models.SubmissionResult) error {
	if len(results) == 0 {
		return errEmptyResponse
	}
	graded := make(map[string]struct{}, len(results))
	for _, r := range results {
		graded[r.QuestionID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := graded[r.QuestionID]; !ok {
			return fmt.Errorf("%w for question %s", errMissingVerdict, r.QuestionID)
		}
	}
	return nil
}

func pickResult(results []models.SubmissionResult, questionID string) (models.SubmissionResult, bool) {
	for _, r := range results {
		if r.QuestionID == questionID {
			return r, true
		}
	}
	if len(results) == 1 && results[0].QuestionID == "" {
		r := results[0]
		r.QuestionID = questionID
		return r, true
	}
	return models.SubmissionResult{}, false
}

func gradedBatch(ws *Workspace, questions []models.Question, records []models.AnswerRecord, total int) *models.GradedBatch {
	sess := ws.Session
	batch := &models.GradedBatch{
		SessionID:   sess.ID,
		LessonID:    sess.LessonID,
		MissionID:   sess.MissionID,
		UserID:      ws.UserID,
		SubmittedAt: sess.Now().UTC(),
		TotalPoints: total,
	}
	for i, q := range questions {
		res, ok := sess.Results.Get(q.ID)
		if !ok {
			continue
		}
		batch.Questions = append(batch.Questions, models.GradedQuestion{
			QuestionID:   q.ID,
			QuestionType: q.Type,
			Answer:       records[i].UserAnswer,
			Timing:       models.TimingRecord{Start: records[i].StartTime, End: records[i].EndTime},
			Result:       res,
		})
	}
	return batch
}
