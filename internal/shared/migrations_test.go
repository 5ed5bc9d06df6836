package shared

import (
	"database/sql"
	"slices"
	"testing"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	for i, m := range migrations {
		if i > 0 && m.Version <= migrations[i-1].Version {
			t.Errorf("migrations not sorted: %d after %d", m.Version, migrations[i-1].Version)
		}
		if m.Name == "" {
			t.Errorf("migration %d has no name", m.Version)
		}
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d is missing a direction", m.Version)
		}
	}

	if migrations[0].Name != "create_songs" {
		t.Errorf("expected create_songs first, got %q", migrations[0].Name)
	}
}

func TestMigrate(t *testing.T) {
	t.Run("applies everything once", func(t *testing.T) {
		db := migratedDB(t)

		applied, err := Migrate(db)
		if err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		all, _ := loadMigrations()
		if len(applied) != len(all) {
			t.Errorf("expected %d applied, got %d", len(all), len(applied))
		}

		again, err := Migrate(db)
		if err != nil {
			t.Fatalf("second migrate failed: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("expected nothing to apply twice, got %v", again)
		}

		for _, table := range []string{"songs", "api_keys"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist: %v", table, err)
			}
		}
	})

	t.Run("status", func(t *testing.T) {
		db := migratedDB(t)

		states, err := MigrationStatus(db)
		if err != nil {
			t.Fatalf("failed to read status: %v", err)
		}
		for _, s := range states {
			if s.Applied {
				t.Errorf("migration %d applied on a fresh database", s.Version)
			}
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		states, _ = MigrationStatus(db)
		for _, s := range states {
			if !s.Applied || s.AppliedAt.IsZero() {
				t.Errorf("migration %d should be applied with a timestamp", s.Version)
			}
		}
	})
}

func TestRollback(t *testing.T) {
	t.Run("latest", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		all, _ := loadMigrations()

		m, err := RollbackMigration(db)
		if err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if m.Version != all[len(all)-1].Version {
			t.Errorf("expected version %d rolled back, got %d", all[len(all)-1].Version, m.Version)
		}

		states, _ := MigrationStatus(db)
		if states[len(states)-1].Applied {
			t.Error("latest migration still marked applied")
		}
	})

	t.Run("to version", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		reverted, err := RollbackTo(db, 0)
		if err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		versions := make([]int, len(reverted))
		for i, m := range reverted {
			versions[i] = m.Version
		}
		if !slices.IsSortedFunc(versions, func(a, b int) int { return b - a }) {
			t.Errorf("expected newest first, got %v", versions)
		}
		if slices.Contains(versions, 0) {
			t.Error("version 0 should stay applied")
		}

		if _, err := db.Exec("SELECT 1 FROM songs LIMIT 1"); err != nil {
			t.Errorf("songs table should survive: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM api_keys LIMIT 1"); err == nil {
			t.Error("api_keys table should be gone")
		}
	})

	t.Run("nothing applied", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RollbackMigration(db); err == nil {
			t.Error("expected an error rolling back an empty database")
		}
	})
}

func TestStatements(t *testing.T) {
	t.Run("Comments", func(t *testing.T) {
		script := `
-- leading comment
CREATE TABLE a (id INTEGER); -- trailing
;
INSERT INTO a VALUES (1);
`
		got := statements(script)
		want := []string{"CREATE TABLE a (id INTEGER)", "INSERT INTO a VALUES (1)"}
		if !slices.Equal(got, want) {
			t.Errorf("statements() = %q, want %q", got, want)
		}
	})

	t.Run("SemicolonInComment", func(t *testing.T) {
		script := `
-- first; second
CREATE TABLE a (
    id INTEGER -- primary; unique
);
`
		got := statements(script)
		want := []string{"CREATE TABLE a (\nid INTEGER\n)"}
		if !slices.Equal(got, want) {
			t.Errorf("statements() = %q, want %q", got, want)
		}

		db := migratedDB(t)
		for _, stmt := range got {
			if _, err := db.Exec(stmt); err != nil {
				t.Errorf("statement %q failed: %v", stmt, err)
			}
		}
	})
}
