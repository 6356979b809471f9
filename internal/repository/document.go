// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/legaldocs/legaldocs/internal/models"
)

// CreateDocument inserts a new document and fills in its assigned ID.
func (r *Repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (user_id, title, file_key, file_type, last_date) VALUES (?, ?, ?, ?, ?)`,
		doc.UserID, doc.Title, doc.FileKey, doc.FileType, doc.LastDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	doc.ID = id
	return r.db.GetContext(ctx, doc, `SELECT * FROM documents WHERE id = ?`, id)
}

// GetDocumentByID retrieves a document by its ID.
func (r *Repository) GetDocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &doc, nil
}

// GetUserDocument retrieves a document owned by the given user.
func (r *Repository) GetUserDocument(ctx context.Context, id, userID int64) (*models.Document, error) {
	var doc models.Document
	err := r.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &doc, nil
}

// ListUserDocuments returns the caller's documents, newest first.
func (r *Repository) ListUserDocuments(ctx context.Context, userID int64) ([]models.DocumentListing, error) {
	docs := []models.DocumentListing{}
	err := r.db.SelectContext(ctx, &docs,
		`SELECT id, title, file_type, uploaded_at FROM documents WHERE user_id = ? ORDER BY uploaded_at DESC`,
		userID)
	return docs, err
}

// ListDepartmentDocuments returns documents shared with a department.
func (r *Repository) ListDepartmentDocuments(ctx context.Context, department string) ([]models.DocumentListing, error) {
	docs := []models.DocumentListing{}
	err := r.db.SelectContext(ctx, &docs,
		`SELECT d.id, d.title, d.file_type, d.uploaded_at
		 FROM department_docs dep
		 JOIN documents d ON dep.doc_id = d.id
		 WHERE dep.department = ?
		 ORDER BY d.uploaded_at DESC`,
		department)
	return docs, err
}

// AddDocumentDepartment links a document to a department.
func (r *Repository) AddDocumentDepartment(ctx context.Context, docID int64, department string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO department_docs (department, doc_id) VALUES (?, ?)`,
		department, docID)
	return err
}

// DeleteDocument removes a document owned by the given user.
func (r *Repository) DeleteDocument(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDocumentLastDate records the extracted deadline for a document.
func (r *Repository) SetDocumentLastDate(ctx context.Context, id int64, lastDate time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE documents SET last_date = ? WHERE id = ?`, lastDate, id)
	return err
}

// SetDocumentConversationID stores the inference-service conversation id.
func (r *Repository) SetDocumentConversationID(ctx context.Context, id int64, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE documents SET conversation_id = ? WHERE id = ?`, conversationID, id)
	return err
}

// MarkSummaryGenerated flags the document and records its risk factor.
func (r *Repository) MarkSummaryGenerated(ctx context.Context, id int64, riskFactor int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE documents SET is_summary_generated = 1, risk_factor = ? WHERE id = ?`,
		riskFactor, id)
	return err
}

// GetSummary retrieves a cached summary for a document and language.
func (r *Repository) GetSummary(ctx context.Context, docID int64, language string) (*models.Summary, error) {
	var summary models.Summary
	err := r.db.GetContext(ctx, &summary,
		`SELECT * FROM summaries WHERE doc_id = ? AND language = ?`, docID, language)
	if err != nil {
		return nil, wrapError(err)
	}
	return &summary, nil
}

// UpsertSummary stores a summary, replacing any cached one for the same
// document and language.
func (r *Repository) UpsertSummary(ctx context.Context, summary *models.Summary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO summaries (doc_id, language, summary) VALUES (?, ?, ?)
		 ON CONFLICT (doc_id, language) DO UPDATE SET summary = excluded.summary, created_at = CURRENT_TIMESTAMP`,
		summary.DocID, summary.Language, summary.Summary)
	return err
}

// ListDueReminders returns documents whose deadline falls on the given day
// and whose reminder has not been sent yet.
func (r *Repository) ListDueReminders(ctx context.Context, day time.Time) ([]models.DeadlineReminder, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	reminders := []models.DeadlineReminder{}
	err := r.db.SelectContext(ctx, &reminders,
		`SELECT d.id, d.title, d.last_date, u.email
		 FROM documents d
		 JOIN users u ON d.user_id = u.id
		 WHERE d.last_date >= ? AND d.last_date < ? AND d.reminder_sent = 0`,
		start, end)
	return reminders, err
}

// MarkReminderSent flags a document's reminder as delivered.
func (r *Repository) MarkReminderSent(ctx context.Context, docID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE documents SET reminder_sent = 1 WHERE id = ?`, docID)
	return err
}
