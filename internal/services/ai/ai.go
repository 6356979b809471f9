// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ai talks to the document analysis sidecar: summarization,
// deadline extraction, department prediction and conversational Q&A.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/config"
)

// Client calls the analysis sidecar over HTTP. All document payloads are
// posted as multipart form data under the "file" field.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// SummaryResult is the analysis payload for one document in one language.
// RiskFactor is the urgency percentage the model assigns, 0 to 100.
type SummaryResult struct {
	Summary    string `json:"summary"`
	RiskFactor int64  `json:"risk_factor"`
}

// Summarize produces a summary in the requested language, biased toward
// the given department when one is known.
func (c *Client) Summarize(ctx context.Context, filename string, file io.Reader, language, department string) (*SummaryResult, error) {
	fields := map[string]string{"language": language}
	if department != "" {
		fields["department"] = department
	}

	var result SummaryResult
	if err := c.postFile(ctx, "/summarize", filename, file, fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExtractLastDate finds the latest actionable deadline in the document.
// An empty string means none was found.
func (c *Client) ExtractLastDate(ctx context.Context, filename string, file io.Reader) (string, error) {
	var result struct {
		LastDate string `json:"last_date"`
	}
	if err := c.postFile(ctx, "/extract-last-date", filename, file, nil, &result); err != nil {
		return "", err
	}
	return result.LastDate, nil
}

// PredictDepartments suggests the departments a document belongs to.
func (c *Client) PredictDepartments(ctx context.Context, filename string, file io.Reader) ([]string, error) {
	var result struct {
		Departments []string `json:"departments"`
	}
	if err := c.postFile(ctx, "/predict-department", filename, file, nil, &result); err != nil {
		return nil, err
	}
	return result.Departments, nil
}

// CreateConversation ingests the document for Q&A and returns the
// conversation handle to persist alongside it.
func (c *Client) CreateConversation(ctx context.Context, filename string, file io.Reader) (string, error) {
	var result struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := c.postFile(ctx, "/chunk", filename, file, nil, &result); err != nil {
		return "", err
	}
	if result.ConversationID == "" {
		return "", apperrors.New(apperrors.KindUpstream, "Analysis service returned no conversation")
	}
	return result.ConversationID, nil
}

// Chat sends a question against an existing conversation.
func (c *Client) Chat(ctx context.Context, conversationID, question string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"conversation_id": conversationID,
		"question":        question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Answer string `json:"answer"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

func (c *Client) postFile(ctx context.Context, path, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %q: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstream, "Analysis service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.Wrap(apperrors.KindUpstream, "Analysis service error",
			fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.KindUpstream, "Analysis service returned malformed response", err)
	}
	return nil
}
