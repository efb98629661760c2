package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore 快照文档以 JSONB 存放在 coupling_snapshots 表中
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS coupling_snapshots (
  id UUID PRIMARY KEY,
  repository TEXT NOT NULL DEFAULT '',
  language TEXT NOT NULL DEFAULT '',
  classes INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  document JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coupling_snapshots_created_at ON coupling_snapshots (created_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validID(snap.ID); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	doc, err := json.Marshal(snap.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO coupling_snapshots (id, repository, language, classes, created_at, document)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id)
DO UPDATE SET repository=EXCLUDED.repository,
  language=EXCLUDED.language,
  classes=EXCLUDED.classes,
  created_at=EXCLUDED.created_at,
  document=EXCLUDED.document`,
		snap.ID, snap.Repository, snap.Language, len(snap.Document), snap.CreatedAt, doc)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, repository, language, created_at, document
FROM coupling_snapshots WHERE id = $1`, strings.TrimSpace(id))

	var (
		snap Snapshot
		doc  []byte
	)
	if err := row.Scan(&snap.ID, &snap.Repository, &snap.Language, &snap.CreatedAt, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(doc, &snap.Document); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &snap, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, repository, language, created_at, classes
FROM coupling_snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Repository, &sum.Language, &sum.CreatedAt, &sum.Classes); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
