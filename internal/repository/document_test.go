// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/testutil"
)

func newDoc(t *testing.T, repo *repository.Repository, userID int64, title string) *models.Document {
	t.Helper()
	doc := &models.Document{
		UserID:   userID,
		Title:    title,
		FileKey:  "1693600000000_" + title,
		FileType: "application/pdf",
	}
	require.NoError(t, repo.CreateDocument(context.Background(), doc))
	return doc
}

func TestCreateAndListDocuments(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")

	first := newDoc(t, repo, user.ID, "contract.pdf")
	newDoc(t, repo, user.ID, "notice.pdf")
	assert.NotZero(t, first.ID)
	assert.NotZero(t, first.UploadedAt)

	docs, err := repo.ListUserDocuments(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestGetUserDocumentScopesOwnership(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := newUser(t, repo, "alice@example.com")
	bob := newUser(t, repo, "bob@example.com")
	doc := newDoc(t, repo, alice.ID, "contract.pdf")

	_, err := repo.GetUserDocument(ctx, doc.ID, alice.ID)
	assert.NoError(t, err)

	_, err = repo.GetUserDocument(ctx, doc.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDepartmentDocs(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")
	doc := newDoc(t, repo, user.ID, "contract.pdf")

	require.NoError(t, repo.AddDocumentDepartment(ctx, doc.ID, "Legal"))
	// Linking twice is a no-op
	require.NoError(t, repo.AddDocumentDepartment(ctx, doc.ID, "Legal"))

	docs, err := repo.ListDepartmentDocuments(ctx, "Legal")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	docs, err = repo.ListDepartmentDocuments(ctx, "Finance")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteDocument(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := newUser(t, repo, "alice@example.com")
	bob := newUser(t, repo, "bob@example.com")
	doc := newDoc(t, repo, alice.ID, "contract.pdf")

	assert.ErrorIs(t, repo.DeleteDocument(ctx, doc.ID, bob.ID), repository.ErrNotFound)
	require.NoError(t, repo.DeleteDocument(ctx, doc.ID, alice.ID))

	_, err := repo.GetDocumentByID(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSummaryUpsert(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")
	doc := newDoc(t, repo, user.ID, "contract.pdf")

	require.NoError(t, repo.UpsertSummary(ctx, &models.Summary{
		DocID: doc.ID, Language: "en", Summary: "first version",
	}))
	require.NoError(t, repo.UpsertSummary(ctx, &models.Summary{
		DocID: doc.ID, Language: "en", Summary: "second version",
	}))
	require.NoError(t, repo.UpsertSummary(ctx, &models.Summary{
		DocID: doc.ID, Language: "hi", Summary: "hindi version",
	}))

	got, err := repo.GetSummary(ctx, doc.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "second version", got.Summary)

	got, err = repo.GetSummary(ctx, doc.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hindi version", got.Summary)

	_, err = repo.GetSummary(ctx, doc.ID, "fi")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkSummaryGenerated(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")
	doc := newDoc(t, repo, user.ID, "contract.pdf")

	require.NoError(t, repo.MarkSummaryGenerated(ctx, doc.ID, 72))

	got, err := repo.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSummaryGenerated)
	assert.EqualValues(t, 72, got.RiskFactor.Int64)
}

func TestListDueReminders(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")
	tomorrow := time.Now().AddDate(0, 0, 1)

	due := newDoc(t, repo, user.ID, "due.pdf")
	require.NoError(t, repo.SetDocumentLastDate(ctx, due.ID, tomorrow))

	later := newDoc(t, repo, user.ID, "later.pdf")
	require.NoError(t, repo.SetDocumentLastDate(ctx, later.ID, tomorrow.AddDate(0, 0, 7)))

	newDoc(t, repo, user.ID, "undated.pdf")

	reminders, err := repo.ListDueReminders(ctx, tomorrow)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, due.ID, reminders[0].DocID)
	assert.Equal(t, "asha@example.com", reminders[0].Email)

	// Once sent, the document drops out of the next pass
	require.NoError(t, repo.MarkReminderSent(ctx, due.ID))
	reminders, err = repo.ListDueReminders(ctx, tomorrow)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestSetDocumentConversationID(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "asha@example.com")
	doc := newDoc(t, repo, user.ID, "contract.pdf")

	require.NoError(t, repo.SetDocumentConversationID(ctx, doc.ID, "conv-42"))

	got, err := repo.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sql.NullString{String: "conv-42", Valid: true}, got.ConversationID)
}
