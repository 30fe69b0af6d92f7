package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/models"
)

// ErrItemNotFound covers both a missing id and an id owned by another user.
// The two cases are indistinguishable on purpose: lookups are scoped to the
// owner, so a foreign id simply never matches.
var ErrItemNotFound = errors.New("item not found")

// GetItems retrieves all items owned by the given user in insertion order.
func (db *ShoppingDB) GetItems(userID uuid.UUID) ([]models.Item, error) {
	query := `SELECT id, name, quantity, notes, completed, user_id, created_at, updated_at
		FROM items WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := db.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID,
			&it.Name,
			&it.Quantity,
			&it.Notes,
			&it.Completed,
			&it.UserID,
			&it.CreatedAt,
			&it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning items: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// GetItem retrieves a single item within the given user's own collection.
// Ownership is enforced by the lookup itself, not by a post-hoc check.
func (db *ShoppingDB) GetItem(itemID, userID uuid.UUID) (*models.Item, error) {
	query := `SELECT id, name, quantity, notes, completed, user_id, created_at, updated_at
		FROM items WHERE id = $1 AND user_id = $2`
	row := db.DB.QueryRow(query, itemID, userID)

	var it models.Item
	if err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Quantity,
		&it.Notes,
		&it.Completed,
		&it.UserID,
		&it.CreatedAt,
		&it.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error scanning item: %w", err)
	}
	return &it, nil
}

// CreateItem inserts a new item owned by req.UserID.
func (db *ShoppingDB) CreateItem(req *models.Item) (*models.Item, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	itemID := uuid.New()
	now := time.Now().UTC()

	err = db.execQuery(tx, `
		INSERT INTO items (id, name, quantity, notes, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		itemID, req.Name, req.Quantity, req.Notes, req.Completed, req.UserID, now, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := db.CommitTransaction(tx); err != nil {
		return nil, err
	}

	item := *req
	item.ID = itemID
	item.CreatedAt = now
	item.UpdatedAt = now

	return &item, nil
}

// UpdateItem persists the item's mutable fields. The write carries the same
// owner scope as the lookups, so a foreign id updates nothing.
func (db *ShoppingDB) UpdateItem(item *models.Item) (*models.Item, error) {
	now := time.Now().UTC()

	res, err := db.DB.Exec(`
		UPDATE items SET name = $1, quantity = $2, notes = $3, completed = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`,
		item.Name, item.Quantity, item.Notes, item.Completed, now, item.ID, item.UserID)
	if err != nil {
		return nil, fmt.Errorf("error updating item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}

	updated := *item
	updated.UpdatedAt = now
	return &updated, nil
}

// DeleteItem removes a single item within the given user's own collection.
func (db *ShoppingDB) DeleteItem(itemID, userID uuid.UUID) error {
	res, err := db.DB.Exec(`DELETE FROM items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("error deleting item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// PurgeCompletedItems deletes all of the user's completed items in a single
// statement and returns how many were removed. Zero matches is a no-op.
func (db *ShoppingDB) PurgeCompletedItems(userID uuid.UUID) (int64, error) {
	res, err := db.DB.Exec(`DELETE FROM items WHERE user_id = $1 AND completed = TRUE`, userID)
	if err != nil {
		return 0, fmt.Errorf("error purging completed items: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return deleted, nil
}
