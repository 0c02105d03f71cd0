package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	resultsSheet = "Results"
	summarySheet = "Summary"
)

// ReportInfo describes a written report.
type ReportInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
}

var reportHeaders = []string{
	"Question ID", "Question Type", "Answer", "Correct", "Points", "Retry",
	"Feedback", "Started At", "Completed At", "Time Taken (seconds)",
}

type reportRow struct {
	QuestionID   string
	QuestionType models.QuestionType
	Answer       string
	Correct      bool
	Points       int
	Retry        int
	Feedback     string
	StartedAt    time.Time
	CompletedAt  time.Time
	TimeTaken    int
}

func (r reportRow) values() []interface{} {
	return []interface{}{
		r.QuestionID,
		string(r.QuestionType),
		r.Answer,
		r.Correct,
		r.Points,
		r.Retry,
		r.Feedback,
		formatTime(r.StartedAt, "2006-01-02 15:04:05"),
		formatTime(r.CompletedAt, "2006-01-02 15:04:05"),
		r.TimeTaken,
	}
}

func (r reportRow) strings() []string {
	return []string{
		r.QuestionID,
		string(r.QuestionType),
		r.Answer,
		strconv.FormatBool(r.Correct),
		strconv.Itoa(r.Points),
		strconv.Itoa(r.Retry),
		r.Feedback,
		formatTime(r.StartedAt, time.RFC3339),
		formatTime(r.CompletedAt, time.RFC3339),
		strconv.Itoa(r.TimeTaken),
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

type reportService struct {
	registry    *SessionRegistry
	performance repositories.PerformanceRepository
	logger      *ServiceLogger
}

// NewReportService creates the exporter. performance may be nil when no
// ledger is configured; ledger exports then fail with ErrNotFound.
func NewReportService(registry *SessionRegistry, performance repositories.PerformanceRepository, logger *ServiceLogger) ReportService {
	return &reportService{
		registry:    registry,
		performance: performance,
		logger:      logger,
	}
}

// ExportSession writes the graded questions of an open session. Completion
// times are only known to the ledger, so session rows carry the start stamp only.
func (s *reportService) ExportSession(ctx context.Context, sessionID, format string, w io.Writer) (info *ReportInfo, err error) {
	format, err = normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	ws, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithOperation(ctx, "export_session", ws.UserID, sessionID)
	defer func() { log.LogResult("", err) }()

	rows, err := sessionRows(ws)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("session-%s.%s", sessionID, format)
	return writeReport(w, format, name, rows, nil)
}

// ExportLedger writes every recorded answer of a lesson, with a summary sheet for XLSX.
func (s *reportService) ExportLedger(ctx context.Context, lessonID, format string, w io.Writer) (info *ReportInfo, err error) {
	format, err = normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if s.performance == nil {
		return nil, fmt.Errorf("%w: performance ledger is not configured", ErrNotFound)
	}
	log := s.logger.WithOperation(ctx, "export_ledger", "", "")
	defer func() { log.LogResult("", err) }()

	records, _, err := s.performance.List(ctx, nil, repositories.PerformanceFilters{
		LessonID:  lessonID,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}

	rows := make([]reportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, reportRow{
			QuestionID:   r.QuestionID,
			QuestionType: r.QuestionType,
			Answer:       string(r.Answer),
			Correct:      r.IsCorrect,
			Points:       r.Points,
			Retry:        r.Retry,
			Feedback:     r.Feedback,
			StartedAt:    r.StartedAt,
			CompletedAt:  r.CompletedAt,
			TimeTaken:    r.TimeTaken,
		})
	}

	var summary func(f *excelize.File) error
	if format == FormatXLSX {
		stats, err := s.performance.GetLessonStats(ctx, nil, lessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to get lesson stats: %w", err)
		}
		questionStats, err := s.performance.GetQuestionStats(ctx, nil, lessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to get question stats: %w", err)
		}
		summary = func(f *excelize.File) error {
			return writeSummarySheet(f, stats, questionStats)
		}
	}

	name := fmt.Sprintf("lesson-%s.%s", lessonID, format)
	return writeReport(w, format, name, rows, summary)
}

func normalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported report format %q", ErrValidationFailed, format)
	}
}

func sessionRows(ws *Workspace) ([]reportRow, error) {
	sess := ws.Session
	sess.Lock()
	defer sess.Unlock()

	var rows []reportRow
	for _, q := range sess.Questions() {
		res, ok := sess.Results.Get(q.ID)
		if !ok {
			continue
		}
		answer, err := models.EncodeAnswer(sess.Answers.Get(q.ID))
		if err != nil {
			return nil, err
		}
		row := reportRow{
			QuestionID:   q.ID,
			QuestionType: q.Type,
			Answer:       string(answer),
			Correct:      res.IsCorrect,
			Points:       res.Points,
			Retry:        res.Retry,
			Feedback:     res.Feedback,
		}
		if start, ok := sess.Timers.StartedAt(q.ID); ok {
			row.StartedAt = start.UTC()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeReport(w io.Writer, format, name string, rows []reportRow, summary func(*excelize.File) error) (*ReportInfo, error) {
	info := &ReportInfo{Filename: name, Rows: len(rows)}

	if format == FormatCSV {
		info.ContentType = "text/csv"
		writer := csv.NewWriter(w)
		if err := writer.Write(reportHeaders); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, r := range rows {
			if err := writer.Write(r.strings()); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("CSV writer error: %w", err)
		}
		return info, nil
	}

	info.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(resultsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	if err := setRow(f, resultsSheet, 1, toInterfaces(reportHeaders)); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := setRow(f, resultsSheet, i+2, r.values()); err != nil {
			return nil, err
		}
	}
	if summary != nil {
		if err := summary(f); err != nil {
			return nil, err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return info, nil
}

func writeSummarySheet(f *excelize.File, stats *repositories.LessonStats, questions []repositories.QuestionPerformanceStat) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	lines := [][]interface{}{
		{"Lesson", stats.LessonID},
		{"Submissions", stats.Submissions},
		{"Answers", stats.Answers},
		{"Correct Rate", stats.CorrectRate},
		{"Total Points", stats.TotalPoints},
		{"Average Time (seconds)", stats.AvgTimeTaken},
		{},
		{"Question ID", "Attempts", "Correct", "Average Time (seconds)", "Average Retry"},
	}
	for _, q := range questions {
		lines = append(lines, []interface{}{q.QuestionID, q.Attempts, q.CorrectCount, q.AvgTimeTaken, q.AvgRetry})
	}
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		if err := setRow(f, summarySheet, i+1, line); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
