// Package testutil has helpers shared by package tests
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"inkwell/blog-api/db"
	"inkwell/blog-api/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database private to t. A single
// connection keeps every query on the same shared-cache database, which also
// means concurrent callers are serialized and never lose a CAS race.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

// FastArgon is a hasher cheap enough to run many times per test
func FastArgon() *security.ArgonHash {
	a := security.New()
	a.Memory = 1024
	a.Iterations = 1
	a.Parallelism = 1
	return a
}

type Message struct {
	To      string
	Subject string
	Body    string
}

// RecordingSink keeps every notification instead of sending it
type RecordingSink struct {
	mu   sync.Mutex
	Sent []Message
}

func (r *RecordingSink) Send(to, subject, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sent = append(r.Sent, Message{To: to, Subject: subject, Body: body})
}

func (r *RecordingSink) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Sent) == 0 {
		return Message{}, false
	}

	return r.Sent[len(r.Sent)-1], true
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
