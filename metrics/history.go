package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// History keeps past snapshots in a local sqlite database so the
// dashboard can show trends across collection runs.
type History struct{ sql *sql.DB }

// OpenHistory opens or creates the history database and applies PRAGMAs.
func OpenHistory(path string) (*History, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p); err != nil {
			// continue on errors for optional pragmas
		}
	}
	return &History{sql: sqldb}, nil
}

// EnsureSchema creates the history table if missing.
func (h *History) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metrics_history (
            id INTEGER PRIMARY KEY,
            collected_at DATETIME NOT NULL,
            project_count INTEGER NOT NULL,
            total_files INTEGER NOT NULL,
            recent_commits INTEGER NOT NULL,
            payload BLOB NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_collected ON metrics_history(collected_at);`,
	}
	tx, err := h.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Append stores a snapshot and returns its rowid.
func (h *History) Append(ctx context.Context, snapshot *Snapshot) (int64, error) {
	payload, err := snapshot.Marshal()
	if err != nil {
		return 0, err
	}
	res, err := h.sql.ExecContext(ctx, `INSERT INTO metrics_history(collected_at, project_count, total_files, recent_commits, payload)
        VALUES(?, ?, ?, ?, ?)`, snapshot.CollectedAt.UTC(), snapshot.ProjectCount, snapshot.TotalFiles, snapshot.RecentCommits, payload)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Last returns up to limit most recent snapshots, newest first.
func (h *History) Last(ctx context.Context, limit int) ([]*Snapshot, error) {
	rows, err := h.sql.QueryContext(ctx, `SELECT payload FROM metrics_history ORDER BY collected_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		snapshot := &Snapshot{}
		if err := snapshot.Unmarshal(payload); err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Prune removes snapshots collected before the cutoff.
func (h *History) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := h.sql.ExecContext(ctx, `DELETE FROM metrics_history WHERE collected_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (h *History) Close() error { return h.sql.Close() }
