package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"colegio_backend/database"
	"colegio_backend/internal/app"
	"colegio_backend/internal/config"
	"colegio_backend/internal/unread"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestServer wraps a full application instance over a test database.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Hub    *unread.Hub
}

// NewTestServer builds the full app against the database in
// DATABASE_URL. Tests that need it must call RequireDatabase first.
func NewTestServer(t *testing.T) *TestServer {
	config.LoadConfig()
	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database (%s): %v", cfg.Database.DSN, err)
	}

	if err := database.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	router, hub, _ := app.SetupRouter(cfg, db)
	server := httptest.NewServer(router)

	return &TestServer{
		Server: server,
		DB:     db,
		Hub:    hub,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Hub.Close()
	sqlDB, _ := ts.DB.DB()
	sqlDB.Close()
}

// ClearTables truncates every application table between tests.
func (ts *TestServer) ClearTables() {
	tables := []string{
		"read_markers",
		"message_read_receipts",
		"messages",
		"conversation_participants",
		"conversations",
		"pickup_requests",
		"boletins",
		"events",
		"announcements",
		"refresh_tokens",
		"students",
		"users",
	}
	for _, table := range tables {
		ts.DB.Exec("TRUNCATE TABLE " + table + " CASCADE")
	}
}

// RequireDatabase skips the test when no test database is configured.
func RequireDatabase(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
}

// SendRequest performs an HTTP call against the test server and returns
// the response plus its body.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	raw, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return res, string(raw)
}
