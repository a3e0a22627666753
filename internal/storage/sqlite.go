package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"neurowire/internal/model"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

type runRow struct {
	ID            string `db:"id"`
	CreatedAtUTC  string `db:"created_at_utc"`
	SchemaVersion int    `db:"schema_version"`
	CodecVersion  int    `db:"codec_version"`
	Payload       []byte `db:"payload"`
}

type generationRow struct {
	RunID         string `db:"run_id"`
	Generation    int    `db:"generation"`
	Survivors     int    `db:"survivors"`
	SchemaVersion int    `db:"schema_version"`
	CodecVersion  int    `db:"codec_version"`
	Payload       []byte `db:"payload"`
}

type survivorRow struct {
	RunID      string `db:"run_id"`
	Generation int    `db:"generation"`
	Survivors  int    `db:"survivors"`
	Population int    `db:"population"`
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO runs (id, created_at_utc, schema_version, codec_version, payload)
		VALUES (:id, :created_at_utc, :schema_version, :codec_version, :payload)
		ON CONFLICT(id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, runRow{
		ID:            run.ID,
		CreatedAtUTC:  run.CreatedAtUTC,
		SchemaVersion: run.SchemaVersion,
		CodecVersion:  run.CodecVersion,
		Payload:       payload,
	})
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunRecord{}, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, `SELECT payload FROM runs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	var rows []runRow
	err = db.SelectContext(ctx, &rows, `
		SELECT id, created_at_utc, schema_version, codec_version, payload
		FROM runs
		ORDER BY created_at_utc DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}

	runs := make([]model.RunRecord, 0, len(rows))
	for _, row := range rows {
		run, err := DecodeRun(row.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", row.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, generation model.GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGeneration(generation)
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO generations (run_id, generation, survivors, schema_version, codec_version, payload)
		VALUES (:run_id, :generation, :survivors, :schema_version, :codec_version, :payload)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			survivors = excluded.survivors,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, generationRow{
		RunID:         generation.RunID,
		Generation:    generation.GenerationNumber,
		Survivors:     generation.Survivors,
		SchemaVersion: generation.SchemaVersion,
		CodecVersion:  generation.CodecVersion,
		Payload:       payload,
	})
	return err
}

func (s *SQLiteStore) GetGeneration(ctx context.Context, runID string, number int) (model.GenerationRecord, bool, error) {
	return s.queryGeneration(ctx, runID, `
		SELECT payload FROM generations WHERE run_id = ? AND generation = ?
	`, runID, number)
}

func (s *SQLiteStore) LatestGeneration(ctx context.Context, runID string) (model.GenerationRecord, bool, error) {
	return s.queryGeneration(ctx, runID, `
		SELECT payload FROM generations WHERE run_id = ? ORDER BY generation DESC LIMIT 1
	`, runID)
}

func (s *SQLiteStore) queryGeneration(ctx context.Context, runID, query string, args ...any) (model.GenerationRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.GenerationRecord{}, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GenerationRecord{}, false, nil
		}
		return model.GenerationRecord{}, false, err
	}

	generation, err := DecodeGeneration(payload)
	if err != nil {
		return model.GenerationRecord{}, false, fmt.Errorf("decode generation for run %s: %w", runID, err)
	}
	return generation, true, nil
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, runID string) ([]int, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	numbers := []int{}
	err = db.SelectContext(ctx, &numbers, `SELECT generation FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// SaveSurvivorHistory replaces the stored history of runID.
func (s *SQLiteStore) SaveSurvivorHistory(ctx context.Context, runID string, history []model.SurvivorPoint) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM survivor_history WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear survivor history: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO survivor_history (run_id, generation, survivors, population)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, point := range history {
		if _, err := stmt.ExecContext(ctx, runID, point.Generation, point.Survivors, point.Population); err != nil {
			return fmt.Errorf("insert survivor point %d: %w", point.Generation, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetSurvivorHistory(ctx context.Context, runID string) ([]model.SurvivorPoint, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var rows []survivorRow
	err = db.SelectContext(ctx, &rows, `
		SELECT run_id, generation, survivors, population
		FROM survivor_history
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	history := make([]model.SurvivorPoint, len(rows))
	for i, row := range rows {
		history[i] = model.SurvivorPoint{Generation: row.Generation, Survivors: row.Survivors, Population: row.Population}
	}
	return history, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			survivors INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS survivor_history (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			survivors INTEGER NOT NULL,
			population INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
