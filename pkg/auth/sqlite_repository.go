package auth

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS authorized_users (
	user_id  TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	added_at TEXT NOT NULL
);`

// SQLiteRepository stores users in an SQLite table, keeping insertion order
type SQLiteRepository struct {
	db *sql.DB
}

var _ interfaces.UserRepository = (*SQLiteRepository)(nil)

// OpenSQLiteRepository opens (or creates) the database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open users db: %w", err)
	}
	// one connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("users db %s: %w", p, err)
		}
	}
	if _, err := db.Exec(usersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("users db schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Load returns users in the order they were saved
func (r *SQLiteRepository) Load(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM authorized_users ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Save replaces the stored list in one transaction. Rows for users that
// stay listed keep their original added_at.
func (r *SQLiteRepository) Save(ctx context.Context, users []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	added := make(map[string]string)
	rows, err := tx.QueryContext(ctx, `SELECT user_id, added_at FROM authorized_users`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			rows.Close()
			return err
		}
		added[id] = at
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM authorized_users`); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, id := range users {
		at, ok := added[id]
		if !ok {
			at = now
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authorized_users (user_id, position, added_at) VALUES (?, ?, ?)`,
			id, i, at); err != nil {
			return fmt.Errorf("insert user %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
