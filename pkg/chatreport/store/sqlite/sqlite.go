package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
)

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	chat_name TEXT NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	selected_words TEXT NOT NULL,
	rankings TEXT NOT NULL,
	hour_distribution TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
CREATE INDEX IF NOT EXISTS idx_reports_chat ON reports(chat_name);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveReport inserts or replaces a report
func (s *sqliteStore) SaveReport(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report id is empty", internalerr.ErrInvalidInput)
	}
	wordsJSON, err := json.Marshal(r.Words)
	if err != nil {
		return err
	}
	rankingsJSON, err := json.Marshal(r.Rankings)
	if err != nil {
		return err
	}
	hoursJSON, err := json.Marshal(r.HourDistribution)
	if err != nil {
		return err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports (id, chat_name, message_count, selected_words, rankings, hour_distribution, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	chat_name=excluded.chat_name,
	message_count=excluded.message_count,
	selected_words=excluded.selected_words,
	rankings=excluded.rankings,
	hour_distribution=excluded.hour_distribution,
	created_at=excluded.created_at;
`, r.ID, r.ChatName, r.MessageCount, string(wordsJSON), string(rankingsJSON), string(hoursJSON),
		created.UTC().Format(timeLayout))
	return err
}

// GetReport retrieves a report by id
func (s *sqliteStore) GetReport(ctx context.Context, id string) (store.Record, error) {
	var (
		r                                  store.Record
		wordsJSON, rankingsJSON, hoursJSON string
		created                            string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, chat_name, message_count, selected_words, rankings, hour_distribution, created_at
FROM reports
WHERE id = ?;
`, id).Scan(&r.ID, &r.ChatName, &r.MessageCount, &wordsJSON, &rankingsJSON, &hoursJSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Record{}, err
	}

	if err := json.Unmarshal([]byte(wordsJSON), &r.Words); err != nil {
		return store.Record{}, fmt.Errorf("report %s words: %w", id, err)
	}
	if err := json.Unmarshal([]byte(rankingsJSON), &r.Rankings); err != nil {
		return store.Record{}, fmt.Errorf("report %s rankings: %w", id, err)
	}
	if err := json.Unmarshal([]byte(hoursJSON), &r.HourDistribution); err != nil {
		return store.Record{}, fmt.Errorf("report %s hours: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return store.Record{}, fmt.Errorf("report %s created_at: %w", id, err)
	}
	return r, nil
}

// ListReports returns one page of report summaries, newest first
func (s *sqliteStore) ListReports(ctx context.Context, opts store.ListOptions) (store.Page, error) {
	opts = opts.Normalize()
	page := store.Page{Reports: []store.Summary{}, Page: opts.Page, PageSize: opts.PageSize}

	where, args := "", []interface{}{}
	if opts.ChatName != "" {
		where = "WHERE chat_name = ?"
		args = append(args, opts.ChatName)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports `+where, args...).Scan(&page.Total); err != nil {
		return store.Page{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, chat_name, message_count, created_at
FROM reports `+where+`
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`, append(args, opts.PageSize, opts.Offset())...)
	if err != nil {
		return store.Page{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var sum store.Summary
		var created string
		if err := rows.Scan(&sum.ID, &sum.ChatName, &sum.MessageCount, &created); err != nil {
			return store.Page{}, err
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return store.Page{}, err
		}
		page.Reports = append(page.Reports, sum)
	}
	return page, rows.Err()
}

// DeleteReport removes a report
func (s *sqliteStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}
