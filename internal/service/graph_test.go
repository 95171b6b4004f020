package service

import (
	"context"
	"sync"
	"testing"

	"inkwell/blog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.graph.Follow(ctx, a.ID, b.ID))

	followers, err := f.graph.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, followers)

	following, err := f.graph.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, following)

	// Following is one way
	back, err := f.graph.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, back)

	require.NoError(t, f.graph.Unfollow(ctx, a.ID, b.ID))

	followers, err = f.graph.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	following, err = f.graph.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollow_Self(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")

	assert.ErrorIs(t, f.graph.Follow(ctx, a.ID, a.ID), ErrInvalidOperation)
	assert.ErrorIs(t, f.graph.Unfollow(ctx, a.ID, a.ID), ErrInvalidOperation)

	var n int64
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFollow_AlreadyFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	require.NoError(t, f.graph.Follow(ctx, a.ID, b.ID))

	err := f.graph.Follow(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFollow_MissingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")

	assert.ErrorIs(t, f.graph.Follow(ctx, a.ID, "nobody"), ErrNotFound)
	assert.ErrorIs(t, f.graph.Follow(ctx, a.ID, ""), ErrInvalidOperation)
}

func TestUnfollow_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	assert.NoError(t, f.graph.Unfollow(ctx, a.ID, b.ID))
	assert.NoError(t, f.graph.Unfollow(ctx, a.ID, b.ID))
}

// Runs serialized on the single test connection, it checks that duplicate
// follows are rejected by the edge's primary key rather than by timing.
func TestFollow_ConcurrentCallersOneEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")

	const workers = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dupe int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := f.graph.Follow(ctx, a.ID, b.ID)

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				ok++
				return
			}

			if assert.ErrorIs(t, err, ErrAlreadyFollowing) {
				dupe++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dupe)

	followers, err := f.graph.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, followers)
}
