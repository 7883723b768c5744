package repo

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT
);

CREATE TABLE IF NOT EXISTS exercises (
	id         TEXT PRIMARY KEY NOT NULL,
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	sets       INTEGER NOT NULL,
	reps       INTEGER NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`

// columns added over time; old databases get them via ALTER TABLE
var sqliteColumns = []struct {
	table, column, definition string
}{
	{"sessions", "labels", "TEXT NOT NULL DEFAULT '[]'"},
	{"sessions", "note", "TEXT NOT NULL DEFAULT ''"},
	{"sessions", "source", "TEXT NOT NULL DEFAULT 'live'"},
	{"exercises", "weight_kg", "REAL NOT NULL DEFAULT 0"},
	{"exercises", "rest_seconds", "INTEGER NOT NULL DEFAULT 0"},
	{"exercises", "start_time", "TEXT NOT NULL DEFAULT ''"},
	{"exercises", "end_time", "TEXT NOT NULL DEFAULT ''"},
	{"exercises", "note", "TEXT NOT NULL DEFAULT ''"},
	{"exercises", "created_at", "TEXT NOT NULL DEFAULT ''"},
}

const sqliteIndexes = `
CREATE INDEX IF NOT EXISTS ix_sessions_start_time ON sessions (start_time);
CREATE INDEX IF NOT EXISTS ix_sessions_open ON sessions (end_time) WHERE end_time IS NULL;
CREATE INDEX IF NOT EXISTS ix_exercises_session_id ON exercises (session_id);
CREATE INDEX IF NOT EXISTS ix_exercises_name ON exercises (lower(trim(name)));
`

func initSqliteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	for _, c := range sqliteColumns {
		if err := addColumnIfNotExists(ctx, db, c.table, c.column, c.definition); err != nil {
			return fmt.Errorf("add column %s.%s: %w", c.table, c.column, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteIndexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	return migrateLegacyRows(ctx, db)
}

// migrateLegacyRows folds the old single workout_type label into labels and
// backfills exercise timestamps of rows written before they were tracked.
func migrateLegacyRows(ctx context.Context, db *sql.DB) error {
	hasWorkoutType, err := columnExists(ctx, db, "sessions", "workout_type")
	if err != nil {
		return err
	}
	if hasWorkoutType {
		res, err := db.ExecContext(ctx, `
			UPDATE sessions SET labels = json_array(workout_type)
			WHERE labels = '[]' AND workout_type IS NOT NULL AND trim(workout_type) != '';`,
		)
		if err != nil {
			return fmt.Errorf("migrate workout_type: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Infof("migrated %d legacy workout_type labels", n)
		}
	}

	if _, err := db.ExecContext(ctx, `
		UPDATE exercises SET created_at = (SELECT s.start_time FROM sessions s WHERE s.id = exercises.session_id)
		WHERE created_at = '';`,
	); err != nil {
		return fmt.Errorf("backfill created_at: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE exercises SET start_time = created_at WHERE start_time = '';`); err != nil {
		return fmt.Errorf("backfill start_time: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE exercises SET end_time = start_time WHERE end_time = '';`); err != nil {
		return fmt.Errorf("backfill end_time: %w", err)
	}

	return nil
}

func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, definition string) error {
	exists, err := columnExists(ctx, db, table, column)
	if err != nil || exists {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name, typ    string
			notNull, pk  int
			defaultValue any
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
