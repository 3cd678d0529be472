package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docctx/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

// DatabaseFileName is the name of the database inside the storage directory.
const DatabaseFileName = "metadata.db"

// Store is a SQLite-based metadata index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database in dataDir and applies pending migrations.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: storage directory is required", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrStorageIO, err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStorageIO, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrStorageIO, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, statements string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(statements); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Put stores or replaces a document record. The upsert leaves seq untouched
// so a replaced record keeps its place in insertion order.
func (s *Store) Put(ctx context.Context, doc domain.Document) error {
	if !domain.IsValidDocID(doc.ID) {
		return fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, doc.ID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, path, format, size, ingested_at, content_length, chunk_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			path = excluded.path,
			format = excluded.format,
			size = excluded.size,
			ingested_at = excluded.ingested_at,
			content_length = excluded.content_length,
			chunk_count = excluded.chunk_count
	`, doc.ID, doc.Filename, doc.Path, doc.Format, doc.SizeBytes,
		doc.IngestedAt.UTC().Format(time.RFC3339Nano), doc.ContentLength, doc.ChunkCount)
	if err != nil {
		return fmt.Errorf("%w: saving document: %v", domain.ErrStorageIO, err)
	}
	return nil
}

const selectDocument = `
	SELECT seq, id, filename, path, format, size, ingested_at, content_length, chunk_count
	FROM documents`

// Get retrieves a document record.
func (s *Store) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStorageIO, err)
	}
	return doc, nil
}

// Has reports whether a record exists for id.
func (s *Store) Has(ctx context.Context, id string) bool {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = ?", id).Scan(&one)
	return err == nil
}

// Remove deletes a record.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("%w: deleting document: %v", domain.ErrStorageIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: deleting document: %v", domain.ErrStorageIO, err)
	}
	return n > 0, nil
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocument+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %v", domain.ErrStorageIO, err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStorageIO, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %v", domain.ErrStorageIO, err)
	}
	return docs, nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("%w: clearing documents: %v", domain.ErrStorageIO, err)
	}
	return nil
}

// StorageBytes returns the combined size of the database and its WAL.
func (s *Store) StorageBytes() (int64, error) {
	var total int64
	for _, p := range []string{s.path, s.path + "-wal"} {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
		}
		total += info.Size()
	}
	return total, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var ingestedAt string
	if err := row.Scan(&doc.Sequence, &doc.ID, &doc.Filename, &doc.Path, &doc.Format,
		&doc.SizeBytes, &ingestedAt, &doc.ContentLength, &doc.ChunkCount); err != nil {
		return nil, err
	}
	if ingestedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing ingested_at: %w", err)
		}
		doc.IngestedAt = t
	}
	return &doc, nil
}
