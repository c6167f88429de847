// Package history archives finished research reports in a local SQLite
// database so they can be listed, searched and reopened later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mrz1836/scout/internal/clock"
	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/research"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Record statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
)

// DefaultListLimit caps List and Search when no limit is given.
const DefaultListLimit = 20

// Record is one archived report.
type Record struct {
	ID            string          `json:"id"`
	Topic         string          `json:"topic"`
	Status        string          `json:"status"`
	Summary       string          `json:"summary"`
	KeyFindings   []string        `json:"keyFindings"`
	NotesCount    int             `json:"notesCount"`
	SectionsCount int             `json:"sectionsCount"`
	Report        research.Report `json:"report"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Store is the SQLite-backed archive.
type Store struct {
	db     *sql.DB
	clock  clock.Clock
	logger zerolog.Logger
}

// Open opens (creating if needed) the archive at path. An empty path uses
// ~/.scout/history.db; MemoryPath keeps everything in memory.
func Open(path string, clk clock.Clock, logger zerolog.Logger) (*Store, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, constants.ScoutHome, constants.HistoryDBFileName)
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		clock:  clk,
		logger: logger.With().Str("component", "history").Logger(),
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		status TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		key_findings TEXT NOT NULL DEFAULT '[]',
		notes_count INTEGER NOT NULL DEFAULT 0,
		sections_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_created ON records(created_at);
	CREATE INDEX IF NOT EXISTS idx_records_topic ON records(topic);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives report under a new id.
func (s *Store) Save(ctx context.Context, report research.Report, completed bool) (Record, error) {
	if strings.TrimSpace(report.Topic) == "" {
		return Record{}, fmt.Errorf("failed to archive report: topic %w", scouterrors.ErrEmptyValue)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode report: %w", err)
	}
	findings := report.KeyFindings
	if findings == nil {
		findings = []string{}
	}
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode key findings: %w", err)
	}

	now := s.clock.Now().UTC()
	rec := Record{
		ID:            uuid.NewString(),
		Topic:         report.Topic,
		Status:        StatusPartial,
		Summary:       report.Summary,
		KeyFindings:   findings,
		NotesCount:    len(report.Notes),
		SectionsCount: len(report.Sections),
		Report:        report,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if completed {
		rec.Status = StatusCompleted
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, topic, status, summary, key_findings, notes_count, sections_count, report_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Topic, rec.Status, rec.Summary, string(findingsJSON),
		rec.NotesCount, rec.SectionsCount, string(reportJSON),
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to archive report: %w", err)
	}

	s.logger.Info().Str("id", rec.ID).Str("topic", rec.Topic).Msg("report archived")
	return rec, nil
}

const selectColumns = `id, topic, status, summary, key_findings, notes_count, sections_count, report_json, created_at, updated_at`

// Get returns the record with id, or ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("record %s: %w", id, scouterrors.ErrRecordNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM records ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return collect(rows)
}

// Search returns up to limit records whose topic contains query
// (case-insensitive), newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM records WHERE lower(topic) LIKE ? ESCAPE '\' ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	return collect(rows)
}

// Delete removes the record with id, or returns ErrRecordNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, scouterrors.ErrRecordNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec                      Record
		findingsJSON, reportJSON string
		createdAt, updatedAt     string
	)
	if err := sc.Scan(&rec.ID, &rec.Topic, &rec.Status, &rec.Summary, &findingsJSON,
		&rec.NotesCount, &rec.SectionsCount, &reportJSON, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(findingsJSON), &rec.KeyFindings); err != nil {
		return Record{}, fmt.Errorf("corrupted key findings: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &rec.Report); err != nil {
		return Record{}, fmt.Errorf("corrupted report: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer func() { _ = rows.Close() }()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return out, nil
}

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
