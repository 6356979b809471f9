// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides shared helpers for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legaldocs/legaldocs/internal/database"
	"github.com/legaldocs/legaldocs/internal/repository"
)

var dbCounter atomic.Int64

// NewTestDB opens a fresh in-memory database with migrations applied and
// returns a repository over it. Each call gets its own named memory
// database so the pooled connections share one store and parallel tests
// stay isolated. The database is closed when the test ends.
func NewTestDB(t *testing.T) *repository.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repository.New(db)
}
