// Package httpapi implements the backend collaborators over HTTP/JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/auth"
)

const (
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 4 << 20
	maxErrorPreview = 512
)

// OperationError describes a failed backend call.
type OperationError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString("backend ")
	b.WriteString(e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OperationError) Unwrap() error { return e.Err }

// ClientError reports whether the backend refused the request (4xx).
func (e *OperationError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func opErr(op, message string, err error) *OperationError {
	return &OperationError{Operation: op, Message: message, Err: err}
}

// Client is a JSON client for the learning backend. The caller's bearer token
// is taken from the request context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "backend_client"),
	}
}

// doJSON sends in as the JSON body and returns the raw response body.
// Non-2xx responses become an *OperationError carrying the backend's message.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return nil, opErr(op, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, opErr(op, "build request failed", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "operation", op, "path", path, "error", err)
		return nil, opErr(op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, opErr(op, "read response failed", err)
	}
	c.logger.Debug("backend request",
		"operation", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &OperationError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}
	return raw, nil
}

func decode(op string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return opErr(op, "decode response failed", err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of a JSON error body, falling
// back to a preview of the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorPreview {
		msg = msg[:maxErrorPreview]
	}
	return msg
}

// IsClientError reports whether err is a 4xx refusal from the backend.
func IsClientError(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe) && oe.ClientError()
}
