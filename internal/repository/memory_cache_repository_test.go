package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
)

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()

	var out string
	err := repo.Get(ctx, "term:FL2019:schedule", &out)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "term:FL2019:schedule", "Days: M W", time.Minute))
	require.NoError(t, repo.Get(ctx, "term:FL2019:schedule", &out))
	assert.Equal(t, "Days: M W", out)
}

func TestMemoryCacheRepositoryDeleteByPattern(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "term:FL2019:schedule", "a", 0))
	require.NoError(t, repo.Set(ctx, "term:FL2019:export", "b", 0))
	require.NoError(t, repo.Set(ctx, "term:SP2020:schedule", "c", 0))

	require.NoError(t, repo.DeleteByPattern(ctx, "term:FL2019:*"))

	var out string
	assert.Error(t, repo.Get(ctx, "term:FL2019:schedule", &out))
	assert.Error(t, repo.Get(ctx, "term:FL2019:export", &out))
	require.NoError(t, repo.Get(ctx, "term:SP2020:schedule", &out))
	assert.Equal(t, "c", out)

	assert.Error(t, repo.DeleteByPattern(ctx, "term:["))
}
