package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for entry persistence operations.
// This abstraction keeps the provisioning flow testable without a real
// database and mirrors the host-registry contract: lookup by identity,
// create, update.
type Repository interface {
	// GetByID retrieves an entry by its internal identifier.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id string) (*Entry, error)

	// FindByIdentity retrieves an entry by its deduplication key.
	// Returns ErrEntryNotFound if no entry has that identity.
	FindByIdentity(ctx context.Context, identity string) (*Entry, error)

	// List retrieves all entries ordered by title.
	List(ctx context.Context) ([]Entry, error)

	// Create inserts a new entry.
	// Returns ErrInvalidEntry if the entry cannot form a usable identity,
	// ErrEntryExists if the identity is already provisioned.
	Create(ctx context.Context, e *Entry) error

	// Update modifies an existing entry (title, identity, configuration).
	// Returns ErrInvalidEntry for malformed entries, ErrEntryNotFound if
	// the entry does not exist.
	Update(ctx context.Context, e *Entry) error

	// Delete removes an entry by ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `id, identity, title, hub_ip, hub_port, door_id, door_name, output_port, created_at, updated_at`

// GetByID retrieves an entry by its internal identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by id: %w", err)
	}
	return e, nil
}

// FindByIdentity retrieves an entry by its deduplication key.
func (r *SQLiteRepository) FindByIdentity(ctx context.Context, identity string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE identity = ?`, identity)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by identity: %w", err)
	}
	return e, nil
}

// List retrieves all entries ordered by title.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// Create inserts a new entry.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if err := validate(e); err != nil {
		return err
	}

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (
			id, identity, title, hub_ip, hub_port, door_id, door_name,
			output_port, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Identity,
		e.Title,
		e.HubIP,
		e.HubPort,
		e.DoorID,
		e.DoorName,
		e.OutputPort,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEntryExists
		}
		return fmt.Errorf("inserting entry: %w", err)
	}

	return nil
}

// Update modifies an existing entry.
func (r *SQLiteRepository) Update(ctx context.Context, e *Entry) error {
	if err := validate(e); err != nil {
		return err
	}

	e.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE entries SET
			identity = ?, title = ?, hub_ip = ?, hub_port = ?,
			door_id = ?, door_name = ?, output_port = ?, updated_at = ?
		WHERE id = ?`,
		e.Identity,
		e.Title,
		e.HubIP,
		e.HubPort,
		e.DoorID,
		e.DoorName,
		e.OutputPort,
		e.UpdatedAt.Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEntryExists
		}
		return fmt.Errorf("updating entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// Delete removes an entry by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// validate rejects entries that cannot form a usable identity key.
// The provisioning flow validates user input before it gets here; this
// guards direct repository callers.
func validate(e *Entry) error {
	if e.ID == "" || e.Identity == "" {
		return ErrInvalidEntry
	}
	if strings.TrimSpace(e.HubIP) == "" || strings.TrimSpace(e.DoorID) == "" {
		return ErrInvalidEntry
	}
	if e.HubPort < 1 || e.HubPort > 65535 {
		return ErrInvalidEntry
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a row or rows result into an Entry.
func scanEntry(scanner rowScanner) (*Entry, error) {
	var e Entry
	var createdAt, updatedAt string

	err := scanner.Scan(
		&e.ID,
		&e.Identity,
		&e.Title,
		&e.HubIP,
		&e.HubPort,
		&e.DoorID,
		&e.DoorName,
		&e.OutputPort,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &e, nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
