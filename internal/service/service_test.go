package service

import (
	"context"
	"testing"
	"time"

	"inkwell/blog-api/internal/model"
	"inkwell/blog-api/internal/moderation"
	"inkwell/blog-api/internal/testutil"
	"inkwell/blog-api/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "hunter2hunter2"

type fixture struct {
	db       *gorm.DB
	clock    *testutil.Clock
	sink     *testutil.RecordingSink
	sessions *security.SessionIssuer
	codec    *security.TokenCodec

	auth      *AuthService
	graph     *GraphService
	reactions *ReactionService
	posts     *PostService
	verify    *VerificationService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	sink := &testutil.RecordingSink{}
	argon := testutil.FastArgon()

	sessions := security.NewSessionIssuer("test-secret-test-secret-test-secret", "inkwell", time.Hour)

	codec := security.NewTokenCodec(10 * time.Minute)
	codec.Now = clock.Now

	graph := NewGraphService(gdb)

	return &fixture{
		db:        gdb,
		clock:     clock,
		sink:      sink,
		sessions:  sessions,
		codec:     codec,
		auth:      NewAuthService(gdb, argon, sessions, graph),
		graph:     graph,
		reactions: NewReactionService(gdb),
		posts:     NewPostService(gdb, moderation.New()),
		verify:    NewVerificationService(gdb, codec, argon, sink, "https://blog.example.com/"),
		admin:     NewAdminService(gdb),
	}
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := f.auth.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	return u
}

func (f *fixture) post(t *testing.T, authorID string) *model.Post {
	t.Helper()

	p, err := f.posts.Create(context.Background(), authorID, PostInput{
		Title:       "Notes on Go",
		Description: "Channels and goroutines",
		Category:    "programming",
	})
	require.NoError(t, err)

	return p
}

func (f *fixture) user(t *testing.T, id string) model.User {
	t.Helper()

	var u model.User
	require.NoError(t, f.db.Where("id = ?", id).First(&u).Error)

	return u
}
