// Package sqlite provides the persistent store backend on modernc.org/sqlite.
// Vectors are stored as JSON text; substring filtering uses lower()+instr so
// it matches the in-memory backend for ASCII case folding.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"ragkb/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS documents (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	slug               TEXT NOT NULL UNIQUE,
	content            TEXT NOT NULL,
	anonymized_content TEXT NOT NULL DEFAULT '',
	category_id        TEXT REFERENCES categories(id) ON DELETE SET NULL,
	active             INTEGER NOT NULL DEFAULT 1,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedded    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	UNIQUE (document_id, idx)
);

CREATE TABLE IF NOT EXISTS embeddings (
	id         TEXT PRIMARY KEY,
	chunk_id   TEXT NOT NULL UNIQUE REFERENCES chunks(id) ON DELETE CASCADE,
	vector     TEXT NOT NULL,
	model_name TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and initializes) a SQLite store at the given path.
// An empty path defaults to ~/.ragkb/knowledge.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".ragkb", "knowledge.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

func (s *Store) SaveCategory(ctx context.Context, c *domain.Category) error {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE name = ? AND id != ?)`, c.Name, c.ID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("category name %q: %w", c.Name, domain.ErrDuplicate)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		slug, err := s.uniqueSlug(ctx, "categories", domain.Slugify(c.Name), c.ID)
		if err != nil {
			return err
		}
		c.Slug = slug
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, slug = excluded.slug, description = excluded.description`,
		c.ID, c.Name, c.Slug, c.Description)
	return dupErr(err)
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListCategoryNames(ctx context.Context) ([]string, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) SaveDocument(ctx context.Context, d *domain.Document) error {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
	} else {
		var created time.Time
		err := s.db.QueryRowContext(ctx, `SELECT created_at FROM documents WHERE id = ?`, d.ID).Scan(&created)
		switch {
		case err == sql.ErrNoRows:
			if d.CreatedAt.IsZero() {
				d.CreatedAt = now
			}
		case err != nil:
			return err
		default:
			d.CreatedAt = created
		}
	}
	d.UpdatedAt = now
	if d.Slug == "" {
		slug, err := s.uniqueSlug(ctx, "documents", domain.Slugify(d.Title), d.ID)
		if err != nil {
			return err
		}
		d.Slug = slug
	}
	var categoryID sql.NullString
	if d.CategoryID != "" {
		categoryID = sql.NullString{String: d.CategoryID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, slug, content, anonymized_content, category_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			slug = excluded.slug,
			content = excluded.content,
			anonymized_content = excluded.anonymized_content,
			category_id = excluded.category_id,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		d.ID, d.Title, d.Slug, d.Content, d.AnonymizedContent, categoryID, d.Active, d.CreatedAt, d.UpdatedAt)
	return dupErr(err)
}

const documentColumns = `id, title, slug, content, anonymized_content, COALESCE(category_id, ''), active, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.Title, &d.Slug, &d.Content, &d.AnonymizedContent,
		&d.CategoryID, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDocumentByTitle(ctx context.Context, title string) (*domain.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE title = ? ORDER BY rowid LIMIT 1`, title))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY rowid`)
}

func (s *Store) FilterDocuments(ctx context.Context, query string) ([]domain.Document, error) {
	q := strings.ToLower(query)
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+` FROM documents d
		WHERE instr(lower(d.title), ?) > 0
		   OR instr(lower(d.content), ?) > 0
		   OR instr(lower(d.anonymized_content), ?) > 0
		   OR EXISTS (SELECT 1 FROM chunks c WHERE c.document_id = d.id AND instr(lower(c.text), ?) > 0)
		ORDER BY d.rowid`, q, q, q, q)
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE id = ?)`, documentID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
		if chunks[i].CreatedAt.IsZero() {
			chunks[i].CreatedAt = now
		}
		chunks[i].DocumentID = documentID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, idx, text, embedded, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			chunks[i].ID, documentID, chunks[i].Index, chunks[i].Text, chunks[i].Embedded, chunks[i].CreatedAt); err != nil {
			return dupErr(err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, idx, text, embedded, created_at FROM chunks WHERE document_id = ? ORDER BY idx`,
		documentID)
}

func (s *Store) ListPendingChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, idx, text, embedded, created_at FROM chunks WHERE document_id = ? AND embedded = 0 ORDER BY idx`,
		documentID)
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Chunk
	for rows.Next() {
		var ch domain.Chunk
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Index, &ch.Text, &ch.Embedded, &ch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (s *Store) MarkChunkEmbedded(ctx context.Context, chunkID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE chunks SET embedded = 1 WHERE id = ?`, chunkID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) SaveEmbedding(ctx context.Context, e *domain.Embedding) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	vec, err := json.Marshal(e.Vector)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (id, chunk_id, vector, model_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.ChunkID, string(vec), e.ModelName, e.CreatedAt)
	return dupErr(err)
}

func (s *Store) ListEmbeddedChunks(ctx context.Context) ([]domain.EmbeddedChunk, error) {
	return s.queryEmbedded(ctx, `
		SELECT c.id, c.document_id, c.idx, c.text, c.embedded, c.created_at, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE c.embedded = 1
		ORDER BY d.rowid, c.idx`)
}

func (s *Store) ListEmbeddedChunksByCategory(ctx context.Context, categoryID string) ([]domain.EmbeddedChunk, error) {
	return s.queryEmbedded(ctx, `
		SELECT c.id, c.document_id, c.idx, c.text, c.embedded, c.created_at, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE c.embedded = 1 AND d.category_id = ?
		ORDER BY d.rowid, c.idx`, categoryID)
}

func (s *Store) queryEmbedded(ctx context.Context, query string, args ...any) ([]domain.EmbeddedChunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.EmbeddedChunk
	for rows.Next() {
		var ec domain.EmbeddedChunk
		var vec string
		if err := rows.Scan(&ec.Chunk.ID, &ec.Chunk.DocumentID, &ec.Chunk.Index, &ec.Chunk.Text,
			&ec.Chunk.Embedded, &ec.Chunk.CreatedAt, &vec); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vec), &ec.Vector); err != nil {
			return nil, fmt.Errorf("decoding vector for chunk %s: %w", ec.Chunk.ID, err)
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}

// uniqueSlug appends a counter suffix until the slug is free in the table.
func (s *Store) uniqueSlug(ctx context.Context, table, base, selfID string) (string, error) {
	if base == "" {
		base = uuid.NewString()[:8]
	}
	slug := base
	for counter := 1; ; counter++ {
		var taken bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE slug = ? AND id != ?)`, slug, selfID).Scan(&taken)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%03d", base, counter)
	}
}

// dupErr maps SQLite uniqueness violations onto domain.ErrDuplicate.
func dupErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%v: %w", err, domain.ErrDuplicate)
	}
	return err
}
