// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pollster/pollster/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema applies every down migration newest first, then every up
// migration oldest first, leaving an empty schema at the latest version.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ups, downs, err := migrationFiles()
	if err != nil {
		return err
	}

	for i := len(downs) - 1; i >= 0; i-- {
		if err := execFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	for _, path := range ups {
		if err := execFile(ctx, pool, path); err != nil {
			return err
		}
	}
	return nil
}

// TruncateAll empties every application table without touching the schema.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE votes, polls, sessions, users CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func migrationFiles() (ups, downs []string, err error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, nil, err
	}

	ups, err = filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob up migrations: %w", err)
	}
	downs, err = filepath.Glob(filepath.Join(root, "migrations", "*.down.sql"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob down migrations: %w", err)
	}
	sort.Strings(ups)
	sort.Strings(downs)
	return ups, downs, nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a user with a unique email and a placeholder hash.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := UniqueID("user")
	return &model.User{
		ID:           id,
		Email:        strings.ToLower(id) + "@example.test",
		PasswordHash: "$argon2id$placeholder",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPoll creates a poll owned by userID with the given options.
func NewTestPoll(t testing.TB, userID string, options ...string) *model.Poll {
	t.Helper()
	if len(options) == 0 {
		options = []string{"yes", "no"}
	}
	return &model.Poll{
		ID:        UniqueID("poll"),
		Question:  "Is this a test?",
		Options:   options,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
