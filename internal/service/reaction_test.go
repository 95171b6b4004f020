package service

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"inkwell/blog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextReaction(t *testing.T) {
	tests := []struct {
		held, pressed, want model.ReactionKind
	}{
		{"", model.ReactionLike, model.ReactionLike},
		{"", model.ReactionDislike, model.ReactionDislike},
		{model.ReactionLike, model.ReactionLike, ""},
		{model.ReactionLike, model.ReactionDislike, model.ReactionDislike},
		{model.ReactionDislike, model.ReactionLike, model.ReactionLike},
		{model.ReactionDislike, model.ReactionDislike, ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, nextReaction(tc.held, tc.pressed), "%q + %q", tc.held, tc.pressed)
	}
}

func TestToggle_LikeThenDislikeThenDislike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	p := f.post(t, author.ID)

	state, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, state.Likes)
	assert.Empty(t, state.DisLikes)

	state, err = f.reactions.ToggleDislike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Likes)
	assert.Equal(t, []string{a.ID}, state.DisLikes)

	state, err = f.reactions.ToggleDislike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Likes)
	assert.Empty(t, state.DisLikes)
}

func TestToggle_TwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")
	p := f.post(t, author.ID)

	_, err := f.reactions.ToggleDislike(ctx, b.ID, p.ID)
	require.NoError(t, err)

	before, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)

	_, err = f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	after, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, before.Likes, after.Likes)
	assert.Equal(t, before.DisLikes, after.DisLikes)
	assert.Equal(t, before.Version+2, after.Version)
}

func TestToggle_PerUserMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")
	p := f.post(t, author.ID)

	_, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)

	// b's first dislike must not be affected by a's like
	state, err := f.reactions.ToggleDislike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, state.Likes)
	assert.Equal(t, []string{b.ID}, state.DisLikes)
}

func TestToggle_MissingPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "a@x.com")

	_, err := f.reactions.ToggleLike(ctx, a.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.reactions.ToggleDislike(ctx, a.ID, "")
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func assertExclusive(t *testing.T, state *PostState) {
	t.Helper()

	for _, id := range state.Likes {
		assert.False(t, slices.Contains(state.DisLikes, id), "%s both liked and disliked", id)
	}
}

func TestToggle_RandomSequenceStaysExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	users := []string{
		f.register(t, "a@x.com").ID,
		f.register(t, "b@x.com").ID,
		f.register(t, "c@x.com").ID,
	}
	p := f.post(t, author.ID)

	// Replays the transition table next to the store and compares
	want := map[string]model.ReactionKind{}
	rng := rand.New(rand.NewPCG(1, 2))

	for range 60 {
		u := users[rng.IntN(len(users))]

		var (
			state *PostState
			err   error
		)

		if rng.IntN(2) == 0 {
			state, err = f.reactions.ToggleLike(ctx, u, p.ID)
			want[u] = nextReaction(want[u], model.ReactionLike)
		} else {
			state, err = f.reactions.ToggleDislike(ctx, u, p.ID)
			want[u] = nextReaction(want[u], model.ReactionDislike)
		}
		require.NoError(t, err)

		assertExclusive(t, state)

		for _, id := range users {
			assert.Equal(t, want[id] == model.ReactionLike, slices.Contains(state.Likes, id))
			assert.Equal(t, want[id] == model.ReactionDislike, slices.Contains(state.DisLikes, id))
		}
	}
}

// The test database has a single connection so these toggles end up running
// one after another. The CAS miss path is covered by the callback driven
// tests below.
func TestToggle_ConcurrentCallersKeepOneReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	p := f.post(t, author.ID)

	const workers = 16

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var err error
			if i%2 == 0 {
				_, err = f.reactions.ToggleLike(ctx, a.ID, p.ID)
			} else {
				_, err = f.reactions.ToggleDislike(ctx, a.ID, p.ID)
			}
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var rows []model.Reaction
	require.NoError(t, f.db.Where("post_id = ? AND user_id = ?", p.ID, a.ID).Find(&rows).Error)
	assert.LessOrEqual(t, len(rows), 1)

	var post model.Post
	require.NoError(t, f.db.Where("id = ?", p.ID).First(&post).Error)
	assert.Equal(t, 1+workers, post.Version, "every toggle bumps the version exactly once")
}

func TestToggle_StaleVersionIsRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	p := f.post(t, author.ID)

	// A callback bumping the version behind the toggle's back makes the
	// first CAS miss
	var once sync.Once
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:race", func(tx *gorm.DB) {
		if tx.Statement.Table != "posts" {
			return
		}

		once.Do(func() {
			tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
				Exec("UPDATE posts SET version = version + 1 WHERE id = ?", p.ID)
		})
	}))
	t.Cleanup(func() { f.db.Callback().Update().Remove("test:race") })

	state, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, state.Likes)

	var rows []model.Reaction
	require.NoError(t, f.db.Where("post_id = ?", p.ID).Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func TestToggle_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.register(t, "author@x.com")
	a := f.register(t, "a@x.com")
	p := f.post(t, author.ID)

	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:always-race", func(tx *gorm.DB) {
		if tx.Statement.Table != "posts" {
			return
		}

		tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Exec("UPDATE posts SET version = version + 1 WHERE id = ?", p.ID)
	}))
	t.Cleanup(func() { f.db.Callback().Update().Remove("test:always-race") })

	_, err := f.reactions.ToggleLike(ctx, a.ID, p.ID)
	assert.ErrorIs(t, err, ErrBusy)

	// Every failed attempt rolled back its reaction write
	var n int64
	require.NoError(t, f.db.Model(&model.Reaction{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
}
