package discovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mattn/go-sqlite3"

	"github.com/onoffautomations/doorcore/internal/infrastructure/config"
	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

func testCreds() Credentials {
	return Credentials{
		Host:     "dbhost",
		Port:     1433,
		Database: "MyKehila",
		User:     "mysoft",
		Password: "secret",
	}
}

// driverSeq makes each registered test driver name unique;
// database/sql panics on duplicate registrations.
var driverSeq atomic.Int64

// testService returns a service whose openDB yields an in-memory SQLite
// database with a "dbo" schema attached, so the fixed SQL Server queries
// run unchanged. The fixture is built per connection because the service
// keeps no idle connections.
func testService(t *testing.T, setup string) *Service {
	t.Helper()

	driverName := fmt.Sprintf("sqlite3_dbo_%d", driverSeq.Add(1))
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec(`ATTACH ':memory:' AS dbo; `+setup, nil)
			return err
		},
	})

	s := NewService(config.DiscoveryConfig{Enabled: true, QueryTimeout: 5}, testLogger())
	s.openDB = func(string) (*sql.DB, error) {
		return sql.Open(driverName, ":memory:")
	}
	return s
}

func TestEnabled(t *testing.T) {
	s := NewService(config.DiscoveryConfig{Enabled: false}, testLogger())
	if s.Enabled() {
		t.Error("Enabled() = true, want false")
	}
}

func TestFetchHubPort(t *testing.T) {
	tests := []struct {
		name     string
		setup    string
		wantPort int
		wantOK   bool
	}{
		{
			name:     "configured port",
			setup:    `CREATE TABLE dbo.GlobalControl (ServerWebServicePort INTEGER); INSERT INTO dbo.GlobalControl VALUES (8123);`,
			wantPort: 8123,
			wantOK:   true,
		},
		{
			name:   "null port",
			setup:  `CREATE TABLE dbo.GlobalControl (ServerWebServicePort INTEGER); INSERT INTO dbo.GlobalControl VALUES (NULL);`,
			wantOK: false,
		},
		{
			name:   "zero port",
			setup:  `CREATE TABLE dbo.GlobalControl (ServerWebServicePort INTEGER); INSERT INTO dbo.GlobalControl VALUES (0);`,
			wantOK: false,
		},
		{
			name:   "no rows",
			setup:  `CREATE TABLE dbo.GlobalControl (ServerWebServicePort INTEGER);`,
			wantOK: false,
		},
		{
			name:   "missing table",
			setup:  ``,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testService(t, tt.setup)
			port, ok := s.FetchHubPort(context.Background(), testCreds())
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && port != tt.wantPort {
				t.Errorf("port = %d, want %d", port, tt.wantPort)
			}
		})
	}
}

func TestFetchHubPortConnectFailure(t *testing.T) {
	s := NewService(config.DiscoveryConfig{Enabled: true, QueryTimeout: 5}, testLogger())
	s.openDB = func(string) (*sql.DB, error) {
		return nil, errors.New("refused")
	}

	if _, ok := s.FetchHubPort(context.Background(), testCreds()); ok {
		t.Error("connect failure should report no port, not an error")
	}
}

func TestFetchDoors(t *testing.T) {
	setup := `
		CREATE TABLE dbo.Door (Oid TEXT, Description TEXT, OutputPort INTEGER);
		INSERT INTO dbo.Door VALUES ('D2', 'Back Door', 2);
		INSERT INTO dbo.Door VALUES ('D1', 'Front Door', 1);
	`
	s := testService(t, setup)

	doors, err := s.FetchDoors(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("FetchDoors: %v", err)
	}
	if len(doors) != 2 {
		t.Fatalf("len = %d, want 2", len(doors))
	}
	// Ordered by description
	if doors[0].DoorID != "D2" || doors[0].DoorName != "Back Door" {
		t.Errorf("first door = %+v, want Back Door", doors[0])
	}
	if doors[1].OutputPort != 1 {
		t.Errorf("output port = %d, want 1", doors[1].OutputPort)
	}
}

func TestFetchDoorsEmptyIsNotError(t *testing.T) {
	s := testService(t, `CREATE TABLE dbo.Door (Oid TEXT, Description TEXT, OutputPort INTEGER);`)

	doors, err := s.FetchDoors(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("FetchDoors: %v", err)
	}
	if doors == nil {
		t.Fatal("empty result should be a non-nil slice")
	}
	if len(doors) != 0 {
		t.Errorf("len = %d, want 0", len(doors))
	}
}

func TestFetchDoorsFailureIsError(t *testing.T) {
	s := testService(t, ``) // no Door table

	if _, err := s.FetchDoors(context.Background(), testCreds()); err == nil {
		t.Error("query failure should return an error, unlike the port lookup")
	}

	s.openDB = func(string) (*sql.DB, error) { return nil, errors.New("refused") }
	if _, err := s.FetchDoors(context.Background(), testCreds()); err == nil {
		t.Error("connect failure should return an error")
	}
}

func TestDSNEncodesCredentials(t *testing.T) {
	s := NewService(config.DiscoveryConfig{Enabled: true, QueryTimeout: 5}, testLogger())

	dsn := s.dsn(Credentials{
		Host:     "dbhost",
		Port:     1433,
		Database: "MyKehila",
		User:     "mysoft",
		Password: "p@ss/word",
	})

	if !strings.HasPrefix(dsn, "sqlserver://") {
		t.Errorf("dsn = %q, want sqlserver scheme", dsn)
	}
	if !strings.Contains(dsn, "dbhost:1433") {
		t.Errorf("dsn = %q, want host:port", dsn)
	}
	if strings.Contains(dsn, "p@ss/word") {
		t.Errorf("password should be URL-encoded in %q", dsn)
	}
	if !strings.Contains(dsn, "database=MyKehila") {
		t.Errorf("dsn = %q, want database parameter", dsn)
	}
}

func TestStringifyOid(t *testing.T) {
	guid := []byte{
		0x33, 0x22, 0x11, 0x00,
		0x55, 0x44,
		0x77, 0x66,
		0x88, 0x99,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
	}

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "D1", "D1"},
		{"int64", int64(42), "42"},
		{"short bytes", []byte("abc"), "abc"},
		{"guid bytes", guid, "00112233-4455-6677-8899-AABBCCDDEEFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringifyOid(tt.in); got != tt.want {
				t.Errorf("stringifyOid(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
