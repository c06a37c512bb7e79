package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harrisonrobin/todo/pkg/model"
	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    position INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    priority TEXT NOT NULL,
    timestamp TEXT NOT NULL
);
`

// ExportSQLite writes a snapshot of tasks to the database at path,
// replacing any previous snapshot in that file.
func ExportSQLite(ctx context.Context, tasks []model.Task, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to snapshot db: %w", err)
	}
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, id, name, description, priority, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.ExecContext(ctx, i+1, t.ID(), t.Name, t.Description, t.Priority, t.Timestamp); err != nil {
			return fmt.Errorf("failed to insert task %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// ReadSQLite loads a snapshot written by ExportSQLite, in position order.
func ReadSQLite(ctx context.Context, path string) ([]model.Task, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name, description, priority, timestamp FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.Name, &t.Description, &t.Priority, &t.Timestamp); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
