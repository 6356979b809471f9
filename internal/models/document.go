// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

type Document struct { //nolint:govet // fieldalignment not critical for models
	ID                 int64          `db:"id" json:"id"`
	UserID             int64          `db:"user_id" json:"user_id"`
	Title              string         `db:"title" json:"title"`
	FileKey            string         `db:"file_key" json:"-"`
	FileType           string         `db:"file_type" json:"file_type"`
	LastDate           sql.NullTime   `db:"last_date" json:"-"`
	ReminderSent       bool           `db:"reminder_sent" json:"-"`
	IsSummaryGenerated bool           `db:"is_summary_generated" json:"is_summary_generated"`
	RiskFactor         sql.NullInt64  `db:"risk_factor" json:"-"`
	ConversationID     sql.NullString `db:"conversation_id" json:"-"`
	UploadedAt         time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentListing is the row shape returned by document list endpoints.
type DocumentListing struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	FileType   string    `db:"file_type" json:"file_type"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Summary is a cached document summary for one language.
type Summary struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	DocID     int64     `db:"doc_id" json:"doc_id"`
	Language  string    `db:"language" json:"language"`
	Summary   string    `db:"summary" json:"summary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DeadlineReminder joins a due document with its owner's address.
type DeadlineReminder struct {
	DocID    int64     `db:"id"`
	Title    string    `db:"title"`
	LastDate time.Time `db:"last_date"`
	Email    string    `db:"email"`
}
