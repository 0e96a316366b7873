package integration_test

import (
	"sync"
	"testing"

	"colegio_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer returns the shared test server, building it on first
// use. Tests are skipped entirely when DATABASE_URL is not set.
func GetTestServer(t *testing.T) *helpers.TestServer {
	helpers.RequireDatabase(t)

	serverOnce.Do(func() {
		globalTestServer = helpers.NewTestServer(t)
		globalTestServer.ClearTables()
	})
	return globalTestServer
}
