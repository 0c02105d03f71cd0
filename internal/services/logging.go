package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// Slog returns the component-scoped slog logger.
func (l *ServiceLogger) Slog() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of one service operation. The level follows the
// error class: rule violations and rejections are warnings, upstream failures errors.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, sessionID, questionID string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		case IsHintRejected(err):
			level = slog.LevelWarn
			status = "rejected"
		case IsNotFound(err):
			status = "not_found"
			level = slog.LevelInfo
		case errors.Is(err, context.Canceled):
			level = slog.LevelWarn
			status = "canceled"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("session_id", sessionID),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if questionID != "" {
		attrs = append(attrs, slog.String("question_id", questionID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var ve ValidationErrors
		var fe *FetchError
		if errors.As(err, &ve) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		} else if errors.As(err, &fe) {
			attrs = append(attrs, slog.String("resource", fe.Resource))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogQuestionIssues logs shape problems of delivered questions. They never fail an operation.
func (l *ServiceLogger) LogQuestionIssues(ctx context.Context, sessionID string, issues map[string]ValidationErrors) {
	for questionID, errs := range issues {
		attrs := []slog.Attr{
			slog.String("session_id", sessionID),
			slog.String("question_id", questionID),
			slog.Int("error_count", len(errs)),
		}
		for i, e := range errs {
			if i >= 5 {
				break
			}
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", e.Field),
				slog.String("message", e.Message),
			))
		}
		l.logger.LogAttrs(ctx, slog.LevelWarn, "Malformed question delivered", attrs...)
	}
}

// ===== CONTEXTUAL LOGGER =====

type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	sessionID string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID, sessionID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		sessionID: sessionID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(questionID string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, cl.sessionID, questionID, time.Since(cl.startTime), err)
}
