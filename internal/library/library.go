// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps downloaded papers on disk: the PDF bytes, a YAML
// metadata sidecar per paper, and a SQLite catalog with a full-text
// index over the stored metadata so saved papers can be searched without
// touching the network.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scipaper/pkg/types"
)

const (
	pdfDir      = "pdf"
	metadataDir = "metadata"
	dbFile      = "library.db"
)

// Entry is one catalog row: the stored document plus its file locations.
type Entry struct {
	Document *types.Document
	PDFPath  string
	MetaPath string
	AddedAt  time.Time
}

// Library manages the on-disk paper store.
type Library struct {
	db  *sql.DB
	dir string
}

// Open opens or creates the library under dir, creating the catalog
// schema when absent.
func Open(cfg types.LibraryConfig) (*Library, error) {
	for _, sub := range []string{pdfDir, metadataDir} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	l := &Library{db: db, dir: cfg.Dir}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the catalog connection.
func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			key TEXT PRIMARY KEY,
			doi TEXT,
			title TEXT,
			authors TEXT,
			year INTEGER,
			journal TEXT,
			abstract TEXT,
			keywords TEXT,
			pdf_path TEXT,
			meta_path TEXT,
			added_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := l.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, authors, abstract, keywords, content=papers)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, authors, abstract, keywords)
				VALUES (new.rowid, new.title, new.authors, new.abstract, new.keywords);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, authors, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.authors, old.abstract, old.keywords);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, authors, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.authors, old.abstract, old.keywords);
				INSERT INTO papers_fts(rowid, title, authors, abstract, keywords)
				VALUES (new.rowid, new.title, new.authors, new.abstract, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := l.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Key derives the on-disk name for a document: the DOI with path
// separators flattened, or a title slug when the DOI is missing.
func Key(doc *types.Document) string {
	if doc.DOI != "" {
		return sanitize(doc.DOI)
	}
	if doc.Title != "" {
		return sanitize(strings.ToLower(doc.Title))
	}
	return fmt.Sprintf("paper-%d", time.Now().UnixNano())
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// sidecar is the YAML metadata layout stored next to each PDF.
type sidecar struct {
	DOI       string `yaml:"doi,omitempty"`
	URL       string `yaml:"url,omitempty"`
	Year      uint   `yaml:"year,omitempty"`
	Publisher string `yaml:"publisher,omitempty"`
	Volume    string `yaml:"volume,omitempty"`
	Pages     string `yaml:"pages,omitempty"`
	Author    string `yaml:"author,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Journal   string `yaml:"journal,omitempty"`
	ISSN      string `yaml:"issn,omitempty"`
	Keywords  string `yaml:"keywords,omitempty"`
	Abstract  string `yaml:"abstract,omitempty"`
	Backend   string `yaml:"backend,omitempty"`
	AddedAt   string `yaml:"added-at,omitempty"`
}

func toSidecar(doc *types.Document, backendName string, addedAt time.Time) *sidecar {
	return &sidecar{
		DOI:       doc.DOI,
		URL:       doc.URL,
		Year:      doc.Year,
		Publisher: doc.Publisher,
		Volume:    doc.Volume,
		Pages:     doc.Pages,
		Author:    doc.Author,
		Title:     doc.Title,
		Journal:   doc.Journal,
		ISSN:      doc.ISSN,
		Keywords:  doc.Keywords,
		Abstract:  doc.Abstract,
		Backend:   backendName,
		AddedAt:   addedAt.UTC().Format(time.RFC3339),
	}
}

func (sc *sidecar) document() *types.Document {
	doc := types.NewDocument()
	doc.DOI = sc.DOI
	doc.URL = sc.URL
	doc.Year = sc.Year
	doc.Publisher = sc.Publisher
	doc.Volume = sc.Volume
	doc.Pages = sc.Pages
	doc.Author = sc.Author
	doc.Title = sc.Title
	doc.Journal = sc.Journal
	doc.ISSN = sc.ISSN
	doc.Keywords = sc.Keywords
	doc.Abstract = sc.Abstract
	return doc
}

// Save stores the blob's PDF bytes and metadata and upserts the catalog
// row. The blob must carry meta describing the paper.
func (l *Library) Save(ctx context.Context, blob *types.PdfBlob, backendName string) (*Entry, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, fmt.Errorf("empty pdf blob")
	}
	doc := blob.Meta
	if doc == nil {
		doc = types.NewDocument()
	}

	key := Key(doc)
	now := time.Now()
	entry := &Entry{
		Document: doc.Copy(),
		PDFPath:  filepath.Join(l.dir, pdfDir, key+".pdf"),
		MetaPath: filepath.Join(l.dir, metadataDir, key+".yaml"),
		AddedAt:  now,
	}

	if err := os.WriteFile(entry.PDFPath, blob.Data, 0o644); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	meta, err := yaml.Marshal(toSidecar(doc, backendName, now))
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(entry.MetaPath, meta, 0o644); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO papers (key, doi, title, authors, year, journal, abstract, keywords, pdf_path, meta_path, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			doi=excluded.doi, title=excluded.title, authors=excluded.authors,
			year=excluded.year, journal=excluded.journal, abstract=excluded.abstract,
			keywords=excluded.keywords, pdf_path=excluded.pdf_path,
			meta_path=excluded.meta_path, added_at=excluded.added_at`,
		key, doc.DOI, doc.Title, doc.Author, doc.Year, doc.Journal,
		doc.Abstract, doc.Keywords, entry.PDFPath, entry.MetaPath,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting catalog row: %w", err)
	}
	return entry, nil
}

// Get returns the catalog entry for a DOI, or nil when the paper is not
// stored.
func (l *Library) Get(ctx context.Context, doi string) (*Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT meta_path, pdf_path, added_at FROM papers WHERE doi = ? LIMIT 1`, doi)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanEntry(rows)
}

// List returns every catalog entry, newest first.
func (l *Library) List(ctx context.Context) ([]*Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT meta_path, pdf_path, added_at FROM papers ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search runs an FTS query over the stored metadata.
func (l *Library) Search(ctx context.Context, query string) ([]*Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT p.meta_path, p.pdf_path, p.added_at
		 FROM papers_fts f JOIN papers p ON p.rowid = f.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY rank`, query)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var out []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var metaPath, pdfPath, addedAt string
	if err := rows.Scan(&metaPath, &pdfPath, &addedAt); err != nil {
		return nil, fmt.Errorf("scanning catalog row: %w", err)
	}

	entry := &Entry{PDFPath: pdfPath, MetaPath: metaPath}
	entry.AddedAt, _ = time.Parse(time.RFC3339, addedAt)

	data, err := os.ReadFile(metaPath)
	if err != nil {
		// Sidecar lost; the row still names the PDF.
		entry.Document = types.NewDocument()
		return entry, nil
	}
	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing metadata sidecar %s: %w", metaPath, err)
	}
	entry.Document = sc.document()
	return entry, nil
}
