package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockPerformanceRepository is a mock implementation of repositories.PerformanceRepository
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) CreateBatch(ctx context.Context, tx *gorm.DB, records []*models.PerformanceRecord) error {
	args := m.Called(ctx, tx, records)
	return args.Error(0)
}

func (m *MockPerformanceRepository) DeleteBySession(ctx context.Context, tx *gorm.DB, sessionID string) error {
	args := m.Called(ctx, tx, sessionID)
	return args.Error(0)
}

func (m *MockPerformanceRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.PerformanceFilters) ([]*models.PerformanceRecord, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.PerformanceRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockPerformanceRepository) GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.PerformanceRecord, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).([]*models.PerformanceRecord), args.Error(1)
}

func (m *MockPerformanceRepository) GetLessonStats(ctx context.Context, tx *gorm.DB, lessonID string) (*repositories.LessonStats, error) {
	args := m.Called(ctx, tx, lessonID)
	return args.Get(0).(*repositories.LessonStats), args.Error(1)
}

func (m *MockPerformanceRepository) GetQuestionStats(ctx context.Context, tx *gorm.DB, lessonID string) ([]repositories.QuestionPerformanceStat, error) {
	args := m.Called(ctx, tx, lessonID)
	return args.Get(0).([]repositories.QuestionPerformanceStat), args.Error(1)
}

func TestReportService_ExportSessionCSV(t *testing.T) {
	e := newTestEngine(t, 3)
	id := e.open(t, "12", choiceQuestion("q1"), choiceQuestion("q2"))
	ctx := context.Background()
	_, err := e.manager.Answer().SetAnswer(ctx, id, "q1", &AnswerRequest{Value: rawString("b")})
	require.NoError(t, err)
	e.submissions.On("Submit", mock.Anything, mock.Anything).Return([]models.SubmissionResult{
		{QuestionID: "q1", IsCorrect: true, Points: 10, Feedback: "Well done"},
	}, nil).Once()
	_, err = e.manager.Submission().SubmitOne(ctx, id, "q1")
	require.NoError(t, err)

	var buf bytes.Buffer
	info, err := e.manager.Report().ExportSession(ctx, id, "CSV", &buf)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", info.ContentType)
	assert.Equal(t, 1, info.Rows)
	assert.Equal(t, "session-"+id+".csv", info.Filename)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "q1", rows[1][0])
	assert.Equal(t, `"b"`, rows[1][2])
	assert.Equal(t, "true", rows[1][3])
	assert.Equal(t, "10", rows[1][4])
	assert.Equal(t, "Well done", rows[1][6])
	assert.Equal(t, testNow.Format(time.RFC3339), rows[1][7])
	assert.Empty(t, rows[1][8])
}

func TestReportService_ExportSessionXLSX(t *testing.T) {
	e := newTestEngine(t, 3)
	id := e.open(t, "12", choiceQuestion("q1"))
	e.submissions.On("Submit", mock.Anything, mock.Anything).
		Return([]models.SubmissionResult{{QuestionID: "q1", Points: -2}}, nil)
	_, err := e.manager.Submission().SubmitAll(context.Background(), id)
	require.NoError(t, err)

	var buf bytes.Buffer
	info, err := e.manager.Report().ExportSession(context.Background(), id, "", &buf)
	require.NoError(t, err)
	assert.Equal(t, "session-"+id+".xlsx", info.Filename)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet}, f.GetSheetList())
	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Question ID", rows[0][0])
	assert.Equal(t, "q1", rows[1][0])
	assert.Equal(t, "-2", rows[1][4])
}

func TestReportService_RejectsUnknownFormat(t *testing.T) {
	e := newTestEngine(t, 3)
	id := e.open(t, "12", choiceQuestion("q1"))

	_, err := e.manager.Report().ExportSession(context.Background(), id, "pdf", &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestReportService_ExportLedger(t *testing.T) {
	repo := new(MockPerformanceRepository)
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f repositories.PerformanceFilters) bool {
		return f.LessonID == "12"
	})).Return([]*models.PerformanceRecord{{
		SessionID:    "s1",
		LessonID:     "12",
		QuestionID:   "q1",
		QuestionType: models.FillInBlank,
		Answer:       datatypes.JSON(`["x",null]`),
		Points:       4,
		StartedAt:    started,
		CompletedAt:  started.Add(45 * time.Second),
		TimeTaken:    45,
	}}, int64(1), nil)
	repo.On("GetLessonStats", mock.Anything, mock.Anything, "12").
		Return(&repositories.LessonStats{LessonID: "12", Submissions: 1, Answers: 1, TotalPoints: 4}, nil)
	repo.On("GetQuestionStats", mock.Anything, mock.Anything, "12").
		Return([]repositories.QuestionPerformanceStat{{QuestionID: "q1", Attempts: 1, AvgTimeTaken: 45}}, nil)

	svc := NewReportService(NewSessionRegistry(nil), repo, NewServiceLogger(testLogger(), LogConfig{Service: "test"}))

	var buf bytes.Buffer
	info, err := svc.ExportLedger(context.Background(), "12", "xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Rows)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet, summarySheet}, f.GetSheetList())
	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `["x",null]`, rows[1][2])
	assert.Equal(t, "45", rows[1][9])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lesson", "12"}, summary[0])
	repo.AssertExpectations(t)
}

func TestReportService_LedgerNotConfigured(t *testing.T) {
	svc := NewReportService(NewSessionRegistry(nil), nil, NewServiceLogger(testLogger(), LogConfig{Service: "test"}))

	_, err := svc.ExportLedger(context.Background(), "12", "csv", &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrNotFound)
}
