// Package sqlite implements the store contracts on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	cpv         TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	draft_id   TEXT NOT NULL UNIQUE REFERENCES drafts(id),
	engine     TEXT NOT NULL,
	analysis   TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// timeLayout is fixed-width so lexicographic ORDER BY matches chronological
// order; RFC3339Nano trims trailing zeros and breaks that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed draft/analysis store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// NewStore opens (and if needed creates) the database at path and bootstraps
// the schema. WAL mode keeps concurrent readers out of the writer's way.
// The pragmas ride the DSN so every pooled connection gets them.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// CreateDraft inserts a draft.
func (s *Store) CreateDraft(ctx context.Context, draft domain.Draft) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, title, description, cpv, created_at) VALUES (?, ?, ?, ?, ?)`,
		draft.ID, draft.Title, draft.Description, draft.CPV,
		draft.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// GetDraft fetches a draft by ID.
func (s *Store) GetDraft(ctx context.Context, id string) (domain.Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, cpv, created_at FROM drafts WHERE id = ?`, id)
	return scanDraft(row)
}

// ListDrafts returns all drafts, newest first.
func (s *Store) ListDrafts(ctx context.Context) ([]domain.Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, cpv, created_at FROM drafts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// SaveAnalysis writes an analysis record, replacing any previous record for
// the same draft.
func (s *Store) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	payload, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, draft_id, engine, analysis, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(draft_id) DO UPDATE SET
		   id = excluded.id,
		   engine = excluded.engine,
		   analysis = excluded.analysis,
		   created_at = excluded.created_at`,
		rec.ID, rec.DraftID, string(rec.Engine), string(payload),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// GetAnalysis fetches the analysis record for a draft.
func (s *Store) GetAnalysis(ctx context.Context, draftID string) (domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, draft_id, engine, analysis, created_at FROM analyses WHERE draft_id = ?`, draftID)

	var rec domain.AnalysisRecord
	var engine, payload, createdAt string
	if err := row.Scan(&rec.ID, &rec.DraftID, &engine, &payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalysisRecord{}, domain.ErrAnalysisNotFound
		}
		return domain.AnalysisRecord{}, fmt.Errorf("get analysis: %w", err)
	}

	rec.Engine = domain.AnalysisEngine(engine)
	if err := json.Unmarshal([]byte(payload), &rec.Analysis); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("decode analysis: %w", err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("decode analysis timestamp: %w", err)
	}
	rec.CreatedAt = ts
	return rec, nil
}

// Ping checks database availability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady is immediate for an embedded database; it just pings once.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Ping(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (domain.Draft, error) {
	var d domain.Draft
	var createdAt string
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &d.CPV, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Draft{}, domain.ErrDraftNotFound
		}
		return domain.Draft{}, fmt.Errorf("scan draft: %w", err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft timestamp: %w", err)
	}
	d.CreatedAt = ts
	return d, nil
}
