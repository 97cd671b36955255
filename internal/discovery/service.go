package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/onoffautomations/doorcore/internal/infrastructure/config"
	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

// The two read-only discovery queries. The hub's SQL Server schema is
// fixed; these must not be reworded.
const (
	queryHubPort = `SELECT ServerWebServicePort FROM dbo.GlobalControl;`
	queryDoors   = `SELECT Oid AS DoorId, Description AS DoorName, OutputPort FROM dbo.Door ORDER BY Description;`
)

// defaultQueryTimeout bounds each discovery call when config gives none.
const defaultQueryTimeout = 10 * time.Second

// Service runs door discovery against the hub's SQL Server database.
//
// Each fetch opens a short-lived connection, runs one read-only query under
// a fixed timeout, and closes the connection on every exit path. Failures
// never propagate as panics or fatal errors: port lookup degrades to "no
// result" and door listing returns a distinguishable error so the flow can
// re-render its form.
//
// Thread Safety: safe for concurrent use; every call owns its connection.
type Service struct {
	enabled bool
	timeout time.Duration
	logger  *logging.Logger

	// openDB is swappable in tests to avoid a real SQL Server.
	openDB func(dsn string) (*sql.DB, error)
}

// NewService creates a discovery service from configuration.
func NewService(cfg config.DiscoveryConfig, logger *logging.Logger) *Service {
	timeout := time.Duration(cfg.QueryTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Service{
		enabled: cfg.Enabled,
		timeout: timeout,
		logger:  logger,
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("sqlserver", dsn)
		},
	}
}

// Enabled reports whether automatic discovery is available.
//
// The provisioning flow checks this once at entry: when false, mode
// selection is skipped and only the manual path is offered.
func (s *Service) Enabled() bool {
	return s.enabled
}

// FetchHubPort looks up the hub's configured web service port.
//
// Any failure (connection, query, absent row, NULL or zero value) is
// reported as (0, false) rather than an error; callers must fall back to
// the default port. This lookup is advisory, never fatal.
//
// Parameters:
//   - ctx: Parent context
//   - creds: Transient database credentials
//
// Returns:
//   - int: The detected port
//   - bool: false when no usable port was found
func (s *Service) FetchHubPort(ctx context.Context, creds Credentials) (int, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.connect(creds)
	if err != nil {
		s.logger.Error("discovery: port lookup connect failed", "host", creds.Host, "error", err)
		return 0, false
	}
	defer db.Close()

	var port sql.NullInt64
	if err := db.QueryRowContext(ctx, queryHubPort).Scan(&port); err != nil {
		s.logger.Error("discovery: port query failed", "host", creds.Host, "error", err)
		return 0, false
	}

	// A zero or NULL port is treated identically to "no result".
	if !port.Valid || port.Int64 <= 0 {
		return 0, false
	}

	return int(port.Int64), true
}

// FetchDoors lists the doors configured on the hub.
//
// A connection or query failure returns a nil slice and an error, distinct
// from an empty slice, which is a valid "no doors" result.
//
// Parameters:
//   - ctx: Parent context
//   - creds: Transient database credentials
//
// Returns:
//   - []Door: Doors ordered by display name ascending
//   - error: If the database was unreachable or the query failed
func (s *Service) FetchDoors(ctx context.Context, creds Credentials) ([]Door, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.connect(creds)
	if err != nil {
		return nil, fmt.Errorf("connecting to hub database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, queryDoors)
	if err != nil {
		return nil, fmt.Errorf("querying doors: %w", err)
	}
	defer rows.Close()

	doors := []Door{}
	for rows.Next() {
		var doorID any
		var doorName sql.NullString
		var outputPort sql.NullInt64

		if err := rows.Scan(&doorID, &doorName, &outputPort); err != nil {
			return nil, fmt.Errorf("scanning door row: %w", err)
		}

		doors = append(doors, Door{
			DoorID:     stringifyOid(doorID),
			DoorName:   doorName.String,
			OutputPort: int(outputPort.Int64),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating door rows: %w", err)
	}

	return doors, nil
}

// connect opens a fresh single-use connection for one discovery call.
func (s *Service) connect(creds Credentials) (*sql.DB, error) {
	db, err := s.openDB(s.dsn(creds))
	if err != nil {
		return nil, err
	}
	// One query per connection; no pooling wanted.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)
	return db, nil
}

// dsn builds the SQL Server connection URL. The password is URL-encoded via
// url.UserPassword and never appears anywhere else.
func (s *Service) dsn(creds Credentials) string {
	query := url.Values{}
	query.Set("database", creds.Database)
	query.Set("dial timeout", strconv.Itoa(int(s.timeout.Seconds())))

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(creds.User, creds.Password),
		Host:     fmt.Sprintf("%s:%d", creds.Host, creds.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// stringifyOid renders the Oid column as an opaque string key.
//
// The column is a uniqueidentifier on stock installs, which the driver
// yields as a 16-byte value; older schemas use plain string or integer
// keys. All three must round-trip stably into the entry identity.
func stringifyOid(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		if len(val) == 16 {
			return formatGUID(val)
		}
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatGUID renders a SQL Server uniqueidentifier in its canonical
// dashed-hex form. The first three groups are little-endian on the wire.
func formatGUID(b []byte) string {
	return fmt.Sprintf("%02X%02X%02X%02X-%02X%02X-%02X%02X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15])
}
