package tests

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/account"
	"github.com/innkeeper/server/internal/auth"
	"github.com/innkeeper/server/internal/db"
	httphandler "github.com/innkeeper/server/internal/http"
	"github.com/innkeeper/server/internal/http/handlers"
	"github.com/innkeeper/server/internal/repo"
)

// TestServer bundles a fully wired HTTP server over a real database.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlx.DB
}

// NewTestServer opens the database from databaseURL, runs migrations and
// starts an httptest server with the full stack wired. Low bcrypt cost keeps
// the suite fast; token TTLs are short but comfortably beyond test runtime.
func NewTestServer(ctx context.Context, databaseURL string) (*TestServer, error) {
	log := zap.NewNop()

	database, err := db.Open(ctx, databaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	accounts := repo.NewAccountRepo(database)
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenService("it-access-secret", "it-refresh-secret", time.Hour, 24*time.Hour)
	svc := account.NewService(accounts, hasher, tokens, log)

	router := httphandler.NewRouter(
		handlers.NewAuthHandler(svc, log),
		handlers.NewAccountHandler(svc, log),
		tokens,
		log,
	)

	return &TestServer{
		Server: httptest.NewServer(router),
		DB:     database,
	}, nil
}

// Close shuts down the server and the database connection.
func (ts *TestServer) Close() {
	ts.Server.Close()
	_ = ts.DB.Close()
}

// TruncateAccounts clears the accounts table for a clean test state.
func (ts *TestServer) TruncateAccounts(ctx context.Context) error {
	if _, err := ts.DB.ExecContext(ctx, "TRUNCATE TABLE accounts"); err != nil {
		return fmt.Errorf("truncate accounts: %w", err)
	}
	return nil
}
