// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package documents orchestrates uploads, previews, summaries and chat over
// the blob store and the analysis sidecar.
package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/ai"
)

// DefaultSummaryLanguage is used when the caller does not ask for one.
const DefaultSummaryLanguage = "en"

// Store is the blob backend the service uploads to and previews from.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Analyzer is the document analysis sidecar.
type Analyzer interface {
	Summarize(ctx context.Context, filename string, file io.Reader, language, department string) (*ai.SummaryResult, error)
	ExtractLastDate(ctx context.Context, filename string, file io.Reader) (string, error)
	PredictDepartments(ctx context.Context, filename string, file io.Reader) ([]string, error)
	CreateConversation(ctx context.Context, filename string, file io.Reader) (string, error)
	Chat(ctx context.Context, conversationID, question string) (string, error)
}

// Service wires the repository, blob store and analyzer together.
type Service struct {
	repo     *repository.Repository
	store    Store
	analyzer Analyzer
}

func NewService(repo *repository.Repository, store Store, analyzer Analyzer) *Service {
	return &Service{repo: repo, store: store, analyzer: analyzer}
}

// Upload stores the file, extracts its deadline, routes it to departments
// and records the document. Analysis failures degrade to the uploader's own
// department rather than failing the upload.
func (s *Service) Upload(ctx context.Context, user *models.User, title, fileType, fileKey string, data []byte) (*models.Document, error) {
	if err := s.store.Upload(ctx, fileKey, fileType, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		UserID:   user.ID,
		Title:    title,
		FileKey:  fileKey,
		FileType: fileType,
	}

	if lastDate, err := s.analyzer.ExtractLastDate(ctx, title, bytes.NewReader(data)); err != nil {
		slog.Warn("deadline_extraction_failed", "title", title, "error", err)
	} else if lastDate != "" {
		if due, err := time.Parse("2006-01-02", lastDate); err == nil {
			doc.LastDate = sql.NullTime{Time: due, Valid: true}
		} else {
			slog.Warn("deadline_unparseable", "title", title, "value", lastDate)
		}
	}

	departments := s.routeDepartments(ctx, user, title, data)

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}
	for _, dept := range departments {
		if err := s.repo.AddDocumentDepartment(ctx, doc.ID, dept); err != nil {
			slog.Warn("department_routing_failed", "doc_id", doc.ID, "department", dept, "error", err)
		}
	}

	slog.Info("document_uploaded", "doc_id", doc.ID, "user_id", user.ID, "departments", departments)
	return doc, nil
}

// routeDepartments asks the analyzer which departments a document belongs
// to. The uploader's own department is always included, so a failed
// prediction still routes the document somewhere.
func (s *Service) routeDepartments(ctx context.Context, user *models.User, title string, data []byte) []string {
	predicted, err := s.analyzer.PredictDepartments(ctx, title, bytes.NewReader(data))
	if err != nil {
		slog.Warn("department_prediction_failed", "title", title, "error", err)
	}

	seen := make(map[string]bool)
	var departments []string
	if user.Department.Valid && user.Department.String != "" {
		seen[user.Department.String] = true
		departments = append(departments, user.Department.String)
	}
	for _, dept := range predicted {
		if dept == "" || seen[dept] {
			continue
		}
		seen[dept] = true
		departments = append(departments, dept)
	}
	return departments
}

// ListOwn returns the documents the user uploaded, newest first.
func (s *Service) ListOwn(ctx context.Context, userID int64) ([]models.DocumentListing, error) {
	return s.repo.ListUserDocuments(ctx, userID)
}

// ListForDepartment returns the documents routed to the user's department.
func (s *Service) ListForDepartment(ctx context.Context, user *models.User) ([]models.DocumentListing, error) {
	if !user.Department.Valid || user.Department.String == "" {
		return nil, apperrors.New(apperrors.KindValidation, "Complete your profile first")
	}
	return s.repo.ListDepartmentDocuments(ctx, user.Department.String)
}

// PreviewURL returns a time-limited link to the user's document.
func (s *Service) PreviewURL(ctx context.Context, userID, docID int64) (string, error) {
	doc, err := s.getOwned(ctx, userID, docID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, doc.FileKey)
	if err != nil {
		return "", fmt.Errorf("failed to presign document: %w", err)
	}
	return url, nil
}

// Delete removes the user's document from the store and the database.
func (s *Service) Delete(ctx context.Context, userID, docID int64) error {
	doc, err := s.getOwned(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		slog.Warn("blob_delete_failed", "doc_id", docID, "error", err)
	}
	if err := s.repo.DeleteDocument(ctx, docID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "Document not found")
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	slog.Info("document_deleted", "doc_id", docID, "user_id", userID)
	return nil
}

// Summary returns the cached summary for (document, language), generating
// and caching it on a miss. Regenerate bypasses the cache.
func (s *Service) Summary(ctx context.Context, userID, docID int64, language string, regenerate bool) (*models.Summary, error) {
	if language == "" {
		language = DefaultSummaryLanguage
	}

	doc, err := s.getOwned(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	if !regenerate {
		cached, err := s.repo.GetSummary(ctx, docID, language)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up summary: %w", err)
		}
	}

	body, err := s.store.Download(ctx, doc.FileKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	department := ""
	if user, err := s.repo.GetUserByID(ctx, userID); err == nil && user.Department.Valid {
		department = user.Department.String
	}

	result, err := s.analyzer.Summarize(ctx, doc.Title, body, language, department)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		DocID:    docID,
		Language: language,
		Summary:  result.Summary,
	}
	if err := s.repo.UpsertSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to cache summary: %w", err)
	}
	if err := s.repo.MarkSummaryGenerated(ctx, docID, result.RiskFactor); err != nil {
		return nil, fmt.Errorf("failed to flag document: %w", err)
	}

	slog.Info("summary_generated", "doc_id", docID, "language", language, "risk_factor", result.RiskFactor)
	return s.repo.GetSummary(ctx, docID, language)
}

// StartConversation ingests the document for Q&A, persisting the handle so
// repeated calls reuse the same conversation.
func (s *Service) StartConversation(ctx context.Context, userID, docID int64) (string, error) {
	doc, err := s.getOwned(ctx, userID, docID)
	if err != nil {
		return "", err
	}
	if doc.ConversationID.Valid && doc.ConversationID.String != "" {
		return doc.ConversationID.String, nil
	}

	body, err := s.store.Download(ctx, doc.FileKey)
	if err != nil {
		return "", err
	}
	defer body.Close()

	conversationID, err := s.analyzer.CreateConversation(ctx, doc.Title, body)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetDocumentConversationID(ctx, docID, conversationID); err != nil {
		return "", fmt.Errorf("failed to persist conversation: %w", err)
	}
	return conversationID, nil
}

// Ask sends a question against the document's conversation.
func (s *Service) Ask(ctx context.Context, userID, docID int64, conversationID, question string) (string, error) {
	if question == "" {
		return "", apperrors.New(apperrors.KindValidation, "Message is required")
	}

	doc, err := s.getOwned(ctx, userID, docID)
	if err != nil {
		return "", err
	}
	if !doc.ConversationID.Valid || doc.ConversationID.String != conversationID {
		return "", apperrors.New(apperrors.KindValidation, "Unknown conversation")
	}

	return s.analyzer.Chat(ctx, conversationID, question)
}

func (s *Service) getOwned(ctx context.Context, userID, docID int64) (*models.Document, error) {
	doc, err := s.repo.GetUserDocument(ctx, docID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}
