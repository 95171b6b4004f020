package service

import (
	"context"
	"testing"

	"inkwell/blog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)

	u := f.register(t, "a@x.com")
	p := f.post(t, u.ID)

	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, 1, p.Version)
	assert.Empty(t, p.Likes)
	assert.Empty(t, p.DisLikes)
}

func TestCreatePost_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "a@x.com")

	_, err := f.posts.Create(ctx, u.ID, PostInput{Title: "", Description: "body"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = f.posts.Create(ctx, u.ID, PostInput{Title: "title", Description: "  "})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCreatePost_ProfaneBlocksAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "a@x.com")

	res, err := f.auth.Login(ctx, "a@x.com", testPassword)
	require.NoError(t, err)

	_, err = f.posts.Create(ctx, u.ID, PostInput{
		Title:       "what the fuck",
		Description: "harmless body",
	})
	assert.ErrorIs(t, err, ErrContentRejected)

	assert.True(t, f.user(t, u.ID).IsBlocked)

	var n int64
	require.NoError(t, f.db.Model(&model.Post{}).Count(&n).Error)
	assert.Zero(t, n, "rejected content is never stored")

	// The session issued before the block is still well formed but refused
	_, err = f.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreatePost_BlockSurvivesCancelledRequest(t *testing.T) {
	f := newFixture(t)

	u := f.register(t, "a@x.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.posts.Create(ctx, u.ID, PostInput{Title: "fuck", Description: "body"})
	assert.ErrorIs(t, err, ErrContentRejected)
	assert.True(t, f.user(t, u.ID).IsBlocked)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.register(t, "a@x.com")
	other := f.register(t, "b@x.com")
	p := f.post(t, owner.ID)

	in := PostInput{Title: "Notes on Go, revised", Description: "Now with generics"}

	_, err := f.posts.Update(ctx, other.ID, p.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.posts.Update(ctx, owner.ID, "missing", in)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.posts.Update(ctx, owner.ID, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, in.Title, updated.Title)
	assert.Equal(t, p.Version+1, updated.Version)
}

func TestUpdatePost_ProfaneBlocksAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.register(t, "a@x.com")
	p := f.post(t, owner.ID)

	_, err := f.posts.Update(ctx, owner.ID, p.ID, PostInput{Title: "ok", Description: "shit happens"})
	assert.ErrorIs(t, err, ErrContentRejected)
	assert.True(t, f.user(t, owner.ID).IsBlocked)

	var stored model.Post
	require.NoError(t, f.db.Where("id = ?", p.ID).First(&stored).Error)
	assert.Equal(t, p.Title, stored.Title)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.register(t, "a@x.com")
	other := f.register(t, "b@x.com")
	p := f.post(t, owner.ID)

	_, err := f.reactions.ToggleLike(ctx, other.ID, p.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.posts.Delete(ctx, other.ID, p.ID), ErrForbidden)
	require.NoError(t, f.posts.Delete(ctx, owner.ID, p.ID))

	_, err = f.posts.Fetch(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&model.Reaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFetchPost_CountsViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "a@x.com")
	p := f.post(t, u.ID)

	for range 3 {
		_, err := f.posts.Fetch(ctx, p.ID)
		require.NoError(t, err)
	}

	got, err := f.posts.Fetch(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.NumViews)
}

func TestListPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "a@x.com")
	reader := f.register(t, "b@x.com")

	p := f.post(t, u.ID)
	_, err := f.posts.Create(ctx, u.ID, PostInput{Title: "Sourdough", Description: "Starter care", Category: "food"})
	require.NoError(t, err)

	_, err = f.reactions.ToggleDislike(ctx, reader.ID, p.ID)
	require.NoError(t, err)

	all, err := f.posts.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	prog, err := f.posts.List(ctx, "programming")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, p.ID, prog[0].ID)
	assert.Equal(t, []string{reader.ID}, prog[0].DisLikes)
	assert.Empty(t, prog[0].Likes)

	none, err := f.posts.List(ctx, "gardening")
	require.NoError(t, err)
	assert.Empty(t, none)
}
