package contact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-service/common/metrics"
	"portfolio-service/testing/testdb"
)

func newSubmission(name string, createdAt time.Time) *Submission {
	ip := "203.0.113.7"
	return &Submission{
		Name:      name,
		Email:     "al@example.com",
		Message:   validMessage,
		IPAddress: &ip,
		UserAgent: "curl/8.0",
		CreatedAt: createdAt,
		Status:    StatusNew,
	}
}

func TestRepository(t *testing.T) {
	database := testdb.SetupSQLite(t)
	repo := NewRepository(database, metrics.NewMock())
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("Create assigns increasing ids", func(t *testing.T) {
		testdb.CleanupTables(t, database, "contacts")

		first := newSubmission("Al", base)
		second := newSubmission("Bo", base.Add(time.Minute))
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("GetAll returns newest first", func(t *testing.T) {
		testdb.CleanupTables(t, database, "contacts")

		require.NoError(t, repo.Create(ctx, newSubmission("Old", base)))
		require.NoError(t, repo.Create(ctx, newSubmission("New", base.Add(time.Hour))))
		require.NoError(t, repo.Create(ctx, newSubmission("Mid", base.Add(30*time.Minute))))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "New", all[0].Name)
		assert.Equal(t, "Mid", all[1].Name)
		assert.Equal(t, "Old", all[2].Name)
		assert.Equal(t, "curl/8.0", all[0].UserAgent)
		require.NotNil(t, all[0].IPAddress)
		assert.Equal(t, "203.0.113.7", *all[0].IPAddress)
	})

	t.Run("GetAll on empty table", func(t *testing.T) {
		testdb.CleanupTables(t, database, "contacts")

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("UpdateStatus changes only status", func(t *testing.T) {
		testdb.CleanupTables(t, database, "contacts")

		s := newSubmission("Al", base)
		require.NoError(t, repo.Create(ctx, s))

		require.NoError(t, repo.UpdateStatus(ctx, s.ID, StatusReplied))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		got := all[0]
		assert.Equal(t, StatusReplied, got.Status)
		assert.Equal(t, s.Name, got.Name)
		assert.Equal(t, s.Email, got.Email)
		assert.Equal(t, s.Message, got.Message)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("UpdateStatus unknown id", func(t *testing.T) {
		testdb.CleanupTables(t, database, "contacts")

		err := repo.UpdateStatus(ctx, 9999, StatusRead)
		assert.ErrorIs(t, err, ErrContactNotFound)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := repo.Create(cctx, newSubmission("Al", base))
		assert.Error(t, err)
	})
}
