package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema step, read from a pair of embedded files named
// "NNNN_<name>_up.sql" and "NNNN_<name>_down.sql".
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// MigrationState reports whether a [Migration] has been applied to a database.
type MigrationState struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

// loadMigrations parses the embedded sql directory, sorted by version.
func loadMigrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFiles, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, file := range names {
		base := strings.TrimSuffix(strings.TrimPrefix(file, "sql/"), ".sql")

		prefix, rest, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		var direction string
		switch {
		case strings.HasSuffix(rest, "_up"):
			rest, direction = strings.TrimSuffix(rest, "_up"), "up"
		case strings.HasSuffix(rest, "_down"):
			rest, direction = strings.TrimSuffix(rest, "_down"), "down"
		default:
			continue
		}

		content, err := migrationFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: rest}
			byVersion[version] = m
		}
		if m.Name != rest {
			return nil, fmt.Errorf("migration %04d has mismatched names %q and %q", version, m.Name, rest)
		}
		if direction == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("incomplete migration %04d_%s", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })

	return migrations, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(db *sql.DB) error {
	_, err := Migrate(db)
	return err
}

// Migrate applies every pending migration in version order and returns the ones it applied.
func Migrate(db *sql.DB) ([]Migration, error) {
	states, err := MigrationStatus(db)
	if err != nil {
		return nil, err
	}

	var applied []Migration
	for _, s := range states {
		if s.Applied {
			continue
		}
		if err := execMigration(db, s.Version, s.Up, true); err != nil {
			return applied, fmt.Errorf("failed to apply migration %04d_%s: %w", s.Version, s.Name, err)
		}
		applied = append(applied, s.Migration)
	}

	return applied, nil
}

// MigrationStatus lists every embedded migration with its applied state, oldest first.
func MigrationStatus(db *sql.DB) ([]MigrationState, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := appliedAt(db)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, len(migrations))
	for i, m := range migrations {
		at, ok := applied[m.Version]
		states[i] = MigrationState{Migration: m, Applied: ok, AppliedAt: at}
	}
	return states, nil
}

// RollbackMigration reverts the most recently applied migration and returns it.
func RollbackMigration(db *sql.DB) (Migration, error) {
	states, err := MigrationStatus(db)
	if err != nil {
		return Migration{}, err
	}

	for i := len(states) - 1; i >= 0; i-- {
		if !states[i].Applied {
			continue
		}
		m := states[i].Migration
		if err := execMigration(db, m.Version, m.Down, false); err != nil {
			return Migration{}, fmt.Errorf("failed to roll back migration %04d_%s: %w", m.Version, m.Name, err)
		}
		return m, nil
	}

	return Migration{}, fmt.Errorf("no migrations to roll back")
}

// RollbackTo reverts applied migrations newer than version, newest first.
func RollbackTo(db *sql.DB, version int) ([]Migration, error) {
	states, err := MigrationStatus(db)
	if err != nil {
		return nil, err
	}

	var reverted []Migration
	for i := len(states) - 1; i >= 0; i-- {
		s := states[i]
		if s.Version <= version || !s.Applied {
			continue
		}
		if err := execMigration(db, s.Version, s.Down, false); err != nil {
			return reverted, fmt.Errorf("failed to roll back migration %04d_%s: %w", s.Version, s.Name, err)
		}
		reverted = append(reverted, s.Migration)
	}

	return reverted, nil
}

// appliedAt returns the applied versions recorded in schema_migrations.
func appliedAt(db *sql.DB) (map[int]time.Time, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := map[int]time.Time{}
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[version] = at
	}

	return applied, rows.Err()
}

// execMigration runs script in one transaction and records (up) or forgets (down) version.
func execMigration(db *sql.DB, version int, script string, up bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	if up {
		_, err = tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", version, time.Now().UTC())
	} else {
		_, err = tx.Exec("DELETE FROM schema_migrations WHERE version = ?", version)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// statements drops "--" comments, then splits script on semicolons, skipping empty statements.
func statements(script string) []string {
	lines := strings.Split(script, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}

	var out []string
	for _, chunk := range strings.Split(strings.Join(lines, "\n"), ";") {
		var kept []string
		for _, line := range strings.Split(chunk, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, "\n"))
		}
	}
	return out
}
