package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/repository"
	"github.com/calebreed/promptmill/internal/testutil"
)

func newRepo(t *testing.T) *repository.SQLiteHistoryRepo {
	t.Helper()
	return repository.NewSQLiteHistoryRepo(testutil.NewTestDB(t))
}

func TestSaveRecord_RoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rec := enhancer.NewRecord("original", "enhanced")
	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, rec))

	got, err := repo.ListByEngine(ctx, "openai/default")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "original", got[0].OriginalPrompt)
	assert.Equal(t, "enhanced", got[0].EnhancedPrompt)
	assert.Nil(t, got[0].EffectivenessRating)
	assert.WithinDuration(t, rec.Timestamp, got[0].Timestamp, time.Second)
}

func TestSaveRecord_UpsertOnSameIndex(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first := enhancer.NewRecord("original", "first attempt")
	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, first))

	second := enhancer.NewRecord("original", "second attempt")
	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, second))

	got, err := repo.ListByEngine(ctx, "openai/default")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second attempt", got[0].EnhancedPrompt)
}

func TestListByEngine_OrderedByIndex(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 1, enhancer.NewRecord("b", "B")))
	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, enhancer.NewRecord("a", "A")))
	require.NoError(t, repo.SaveRecord(ctx, "anthropic/default", 0, enhancer.NewRecord("c", "C")))

	got, err := repo.ListByEngine(ctx, "openai/default")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].OriginalPrompt)
	assert.Equal(t, "b", got[1].OriginalPrompt)
}

func TestUpdateRating(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, enhancer.NewRecord("o", "e")))
	require.NoError(t, repo.UpdateRating(ctx, "openai/default", 0, 5))

	got, err := repo.ListByEngine(ctx, "openai/default")
	require.NoError(t, err)
	require.NotNil(t, got[0].EffectivenessRating)
	assert.Equal(t, 5, *got[0].EffectivenessRating)
}

func TestUpdateRating_NotFound(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	err := repo.UpdateRating(ctx, "openai/default", 0, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, enhancer.NewRecord("o", "e")))
	err = repo.UpdateRating(ctx, "openai/default", 9, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListEngines(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	keys, err := repo.ListEngines(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 0, enhancer.NewRecord("a", "A")))
	require.NoError(t, repo.SaveRecord(ctx, "openai/default", 1, enhancer.NewRecord("b", "B")))
	require.NoError(t, repo.SaveRecord(ctx, "anthropic/default", 0, enhancer.NewRecord("c", "C")))

	keys, err = repo.ListEngines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic/default", "openai/default"}, keys)
}
