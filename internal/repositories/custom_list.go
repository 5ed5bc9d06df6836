package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

var _ models.Repository[*models.CustomList] = (*CustomListRepository)(nil)

const (
	listColumns = `id, sequence, name, created_at, updated_at`
	msgTaken    = "has already been taken"
)

// CustomListRepository implements models.Repository[*models.CustomList] and stores list entries.
//
// Lists are hard deleted together with their entries.
type CustomListRepository struct {
	db *sql.DB
}

// NewCustomListRepository creates a new CustomListRepository with the given database connection
func NewCustomListRepository(db *sql.DB) *CustomListRepository {
	return &CustomListRepository{db: db}
}

// Create inserts a new list with generated ID and sequence
func (r *CustomListRepository) Create(list *models.CustomList) error {
	if err := list.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "custom_lists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now().UTC()

	_, err = r.db.Exec(
		"INSERT INTO custom_lists (id, sequence, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, sequence, list.Name(), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ValidationErrors{"name": msgTaken}
		}
		return fmt.Errorf("failed to insert custom list: %w", err)
	}

	list.SetID(id)
	list.SetSequence(sequence)
	list.SetCreatedAt(now)
	list.SetUpdatedAt(now)
	return nil
}

// Get retrieves a list by ID
func (r *CustomListRepository) Get(id string) (*models.CustomList, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+listColumns+` FROM custom_lists WHERE id = ?`, id))
}

// GetByName retrieves a list by its name
func (r *CustomListRepository) GetByName(name string) (*models.CustomList, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+listColumns+` FROM custom_lists WHERE name = ?`, name))
}

// Ensure returns the list called name, creating it when it does not exist yet.
func (r *CustomListRepository) Ensure(name string) (*models.CustomList, error) {
	list, err := r.GetByName(name)
	if !errors.Is(err, shared.ErrListNotFound) {
		return list, err
	}

	list = models.NewCustomList(name)
	err = r.Create(list)
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) && verrs["name"] == msgTaken {
		// Created concurrently.
		return r.GetByName(name)
	}
	return list, err
}

// Update renames a list
func (r *CustomListRepository) Update(list *models.CustomList) error {
	if err := list.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.Exec("UPDATE custom_lists SET name = ?, updated_at = ? WHERE id = ?", list.Name(), now, list.ID())
	if err != nil {
		if isUniqueViolation(err) {
			return models.ValidationErrors{"name": msgTaken}
		}
		return fmt.Errorf("failed to update custom list: %w", err)
	}
	if err := expectRows(result, shared.ErrListNotFound, list.ID()); err != nil {
		return err
	}

	list.SetUpdatedAt(now)
	return nil
}

// Delete removes a list and its entries
func (r *CustomListRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM custom_list_entries WHERE list_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete custom list entries: %w", err)
	}
	result, err := tx.Exec("DELETE FROM custom_lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete custom list: %w", err)
	}
	if err := expectRows(result, shared.ErrListNotFound, id); err != nil {
		return err
	}

	return tx.Commit()
}

// List retrieves all lists in creation order. A "name" criterion narrows to one list.
func (r *CustomListRepository) List(criteria map[string]any) ([]*models.CustomList, error) {
	query := `SELECT ` + listColumns + ` FROM custom_lists WHERE 1 = 1`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.CustomList
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lists, nil
}

// Entries returns the song hashes on the list, in the order they were added.
func (r *CustomListRepository) Entries(listID string) ([]string, error) {
	rows, err := r.db.Query(
		"SELECT song_hash FROM custom_list_entries WHERE list_id = ? ORDER BY created_at ASC, song_hash ASC",
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom list entries: %w", err)
	}
	defer rows.Close()

	hashes := []string{}
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan custom list entry: %w", err)
		}
		hashes = append(hashes, hash)
	}

	return hashes, rows.Err()
}

// AddEntry puts hash on the list. It reports false when the hash was already there.
func (r *CustomListRepository) AddEntry(listID, hash string) (bool, error) {
	result, err := r.db.Exec(
		"INSERT OR IGNORE INTO custom_list_entries (list_id, song_hash, created_at) VALUES (?, ?, ?)",
		listID, hash, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert custom list entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows == 1, nil
}

// RemoveEntry takes hash off the list, returning [shared.ErrEntryNotFound] when it was not on it.
func (r *CustomListRepository) RemoveEntry(listID, hash string) error {
	result, err := r.db.Exec("DELETE FROM custom_list_entries WHERE list_id = ? AND song_hash = ?", listID, hash)
	if err != nil {
		return fmt.Errorf("failed to delete custom list entry: %w", err)
	}
	return expectRows(result, shared.ErrEntryNotFound, hash)
}

// scanOne scans a single [sql.Row] into a [models.CustomList]
func (r *CustomListRepository) scanOne(row *sql.Row) (*models.CustomList, error) {
	list, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrListNotFound
	}
	return list, err
}

func scanList(s scanner) (*models.CustomList, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	err := s.Scan(&id, &sequence, &name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan custom list: %w", err)
	}

	list := models.NewCustomList(name)
	list.SetID(id)
	list.SetSequence(sequence)
	list.SetCreatedAt(createdAt)
	list.SetUpdatedAt(updatedAt)
	return list, nil
}

// expectRows wraps notFound with key when result touched no rows.
func expectRows(result sql.Result, notFound error, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, key)
	}
	return nil
}
