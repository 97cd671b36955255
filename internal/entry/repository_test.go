package entry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the entries schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE entries (
			id TEXT PRIMARY KEY,
			identity TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			hub_ip TEXT NOT NULL,
			hub_port INTEGER NOT NULL,
			door_id TEXT NOT NULL,
			door_name TEXT NOT NULL,
			output_port INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX idx_entries_hub ON entries(hub_ip, hub_port);
	`
	if _, execErr := db.Exec(schema); execErr != nil {
		t.Fatalf("failed to create test schema: %v", execErr)
	}

	return db
}

func testEntry(id, doorID string) *Entry {
	return &Entry{
		ID:       id,
		Identity: Identity("10.0.0.5", 4960, doorID),
		Title:    "Main Door",
		HubIP:    "10.0.0.5",
		HubPort:  4960,
		DoorID:   doorID,
		DoorName: "Main Door",
	}
}

func TestIdentity(t *testing.T) {
	got := Identity("10.0.0.5", 4960, "D1")
	want := "10.0.0.5:4960:D1"
	if got != want {
		t.Errorf("Identity() = %q, want %q", got, want)
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	e := testEntry("e1", "D1")
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Error("Create should stamp timestamps")
	}

	got, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Identity != e.Identity {
		t.Errorf("identity = %q, want %q", got.Identity, e.Identity)
	}
	if got.HubPort != 4960 {
		t.Errorf("hub_port = %d, want 4960", got.HubPort)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetByID error = %v, want ErrEntryNotFound", err)
	}
}

func TestCreateDuplicateIdentity(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testEntry("e1", "D1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(ctx, testEntry("e2", "D1"))
	if !errors.Is(err, ErrEntryExists) {
		t.Errorf("Create duplicate error = %v, want ErrEntryExists", err)
	}
}

func TestCreateRejectsMalformedEntries(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"missing id", func(e *Entry) { e.ID = "" }},
		{"missing identity", func(e *Entry) { e.Identity = "" }},
		{"blank hub ip", func(e *Entry) { e.HubIP = "  " }},
		{"blank door id", func(e *Entry) { e.DoorID = "" }},
		{"port out of range", func(e *Entry) { e.HubPort = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEntry("e1", "D1")
			tt.mutate(e)
			if err := repo.Create(ctx, e); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("Create error = %v, want ErrInvalidEntry", err)
			}
		})
	}
}

func TestUpdateRejectsMalformedEntries(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	e := testEntry("e1", "D1")
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.DoorID = ""
	if err := repo.Update(ctx, e); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Update error = %v, want ErrInvalidEntry", err)
	}
}

func TestFindByIdentity(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testEntry("e1", "D1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByIdentity(ctx, "10.0.0.5:4960:D1")
	if err != nil {
		t.Fatalf("FindByIdentity: %v", err)
	}
	if got.ID != "e1" {
		t.Errorf("id = %q, want e1", got.ID)
	}

	if _, err := repo.FindByIdentity(ctx, "10.0.0.5:4960:D2"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("FindByIdentity missing error = %v, want ErrEntryNotFound", err)
	}
}

func TestListOrderedByTitle(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	a := testEntry("e1", "D1")
	a.Title = "Zeta Door"
	b := testEntry("e2", "D2")
	b.Title = "Alpha Door"

	for _, e := range []*Entry{a, b} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Title != "Alpha Door" || entries[1].Title != "Zeta Door" {
		t.Errorf("unexpected order: %q, %q", entries[0].Title, entries[1].Title)
	}
}

func TestUpdate(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	e := testEntry("e1", "D1")
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.Title = "Renamed"
	e.HubPort = 5000
	e.Identity = Identity(e.HubIP, e.HubPort, e.DoorID)
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Renamed" || got.HubPort != 5000 {
		t.Errorf("update not persisted: %+v", got)
	}
	if got.Identity != "10.0.0.5:5000:D1" {
		t.Errorf("identity = %q, want 10.0.0.5:5000:D1", got.Identity)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.Update(context.Background(), testEntry("ghost", "D9"))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Update missing error = %v, want ErrEntryNotFound", err)
	}
}

func TestUpdateIdentityCollision(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testEntry("e1", "D1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := testEntry("e2", "D2")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Move e2 onto e1's identity
	other.Identity = Identity("10.0.0.5", 4960, "D1")
	if err := repo.Update(ctx, other); !errors.Is(err, ErrEntryExists) {
		t.Errorf("Update collision error = %v, want ErrEntryExists", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testEntry("e1", "D1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "e1"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrEntryNotFound", err)
	}

	if err := repo.Delete(ctx, "e1"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Delete missing error = %v, want ErrEntryNotFound", err)
	}
}
