package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/vector"
)

// SQLiteStore keeps the artifacts as tables in one SQLite database. Save replaces every
// table in a single transaction, so readers of the file see either the old or the new build.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS manifest (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		build_id TEXT NOT NULL,
		strategy TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		built_at TIMESTAMP NOT NULL,
		corpus_root TEXT
	);

	CREATE TABLE IF NOT EXISTS passages (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		source_document TEXT NOT NULL,
		category TEXT NOT NULL,
		category_name TEXT NOT NULL,
		legal_area TEXT NOT NULL,
		document_type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_passages_category ON passages(category);

	CREATE TABLE IF NOT EXISTS vectors (
		passage_id TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vocabulary (
		token TEXT PRIMARY KEY,
		idx INTEGER NOT NULL UNIQUE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored snapshot inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"manifest", "passages", "vectors", "vocabulary"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	m := snap.Manifest
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO manifest (id, build_id, strategy, dimensions, built_at, corpus_root) VALUES (1, ?, ?, ?, ?, ?)`,
		m.BuildID, m.Strategy, m.Dimensions, m.BuiltAt.UTC(), m.CorpusRoot,
	); err != nil {
		return fmt.Errorf("insert manifest: %w", err)
	}

	passageStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO passages (position, id, content, source_document, category, category_name, legal_area, document_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare passages: %w", err)
	}
	defer passageStmt.Close()
	vectorStmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (passage_id, vector) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vectors: %w", err)
	}
	defer vectorStmt.Close()

	for i, p := range snap.Passages {
		if _, err := passageStmt.ExecContext(ctx, i, p.ID, p.Content, p.SourceDocument, string(p.Category), p.CategoryName, p.LegalArea, p.DocumentType); err != nil {
			return fmt.Errorf("insert passage %s: %w", p.ID, err)
		}
		rec := snap.Vectors[i]
		if _, err := vectorStmt.ExecContext(ctx, rec.PassageID, vector.EncodeFloat32s(rec.Vector)); err != nil {
			return fmt.Errorf("insert vector %s: %w", rec.PassageID, err)
		}
	}

	if len(snap.Vocabulary) > 0 {
		vocabStmt, err := tx.PrepareContext(ctx, `INSERT INTO vocabulary (token, idx) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare vocabulary: %w", err)
		}
		defer vocabStmt.Close()
		for tok, idx := range snap.Vocabulary {
			if _, err := vocabStmt.ExecContext(ctx, tok, idx); err != nil {
				return fmt.Errorf("insert token %q: %w", tok, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. An empty manifest table means nothing was saved yet.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	var builtAt time.Time
	var corpusRoot sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT build_id, strategy, dimensions, built_at, corpus_root FROM manifest WHERE id = 1`,
	).Scan(&snap.Manifest.BuildID, &snap.Manifest.Strategy, &snap.Manifest.Dimensions, &builtAt, &corpusRoot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: manifest", models.ErrArtifactMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	snap.Manifest.BuiltAt = builtAt
	snap.Manifest.CorpusRoot = corpusRoot.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.content, p.source_document, p.category, p.category_name, p.legal_area, p.document_type, v.vector
		 FROM passages p LEFT JOIN vectors v ON v.passage_id = p.id
		 ORDER BY p.position`)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.CorpusPassage
		var category string
		var blob []byte
		if err := rows.Scan(&p.ID, &p.Content, &p.SourceDocument, &category, &p.CategoryName, &p.LegalArea, &p.DocumentType, &blob); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		if blob == nil {
			return nil, fmt.Errorf("%w: no vector for passage %q", models.ErrCorruptIndex, p.ID)
		}
		vec, err := vector.DecodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
		}
		p.Category = models.Category(category)
		snap.Passages = append(snap.Passages, p)
		snap.Vectors = append(snap.Vectors, models.VectorRecord{PassageID: p.ID, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if snap.Manifest.Strategy == string(embedding.StrategyTF) {
		snap.Vocabulary, err = s.loadVocabulary(ctx)
		if err != nil {
			return nil, err
		}
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadVocabulary(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, idx FROM vocabulary`)
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close()
	vocab := make(map[string]int)
	for rows.Next() {
		var tok string
		var idx int
		if err := rows.Scan(&tok, &idx); err != nil {
			return nil, fmt.Errorf("scan vocabulary: %w", err)
		}
		vocab[tok] = idx
	}
	return vocab, rows.Err()
}

// Paths returns the database file and its WAL companions when present.
func (s *SQLiteStore) Paths() []string {
	var out []string
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
