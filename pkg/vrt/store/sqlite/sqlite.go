package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
	"github.com/cognicore/vrttools/pkg/vrt/store"
)

var fieldSep = regexp.MustCompile(`\t+`)

// sqliteStore reads parsed sentences from a parse database.
//
// Schema: doc(yno, dno, nme) names a document by "<dir>/<file>"; sen(yno,
// dno, sno, tok, stt) holds one row per sentence, tok being the token rows
// separated by newlines and stt the parse state.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens an existing parse database read-only.
func OpenSQLite(ctx context.Context, path string) (store.AnnotationStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("parse database %s: %w", path, internalerr.ErrStoreUnavailable)
	}
	dsn, err := fileURI(path, "mode=ro")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("parse database %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}
	return &sqliteStore{db: db}, nil
}

// fileURI builds an SQLite URI filename for path. Characters such as '?',
// '#' and '%' in the path are escaped.
func fileURI(path, query string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: query}
	return u.String(), nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// SentenceParses returns the sentences of the document named key, ordered
// by sentence number.
func (s *sqliteStore) SentenceParses(ctx context.Context, key string) ([]store.Sentence, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT sen.tok, sen.stt
FROM doc, sen
WHERE doc.nme = ? AND sen.yno = doc.yno AND sen.dno = doc.dno
ORDER BY sen.sno;
`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sentences []store.Sentence
	for rows.Next() {
		var tok string
		var stt sql.NullString
		if err := rows.Scan(&tok, &stt); err != nil {
			return nil, err
		}
		sentences = append(sentences, store.Sentence{
			Tokens: splitSentence(tok),
			Status: stt.String,
		})
	}
	return sentences, rows.Err()
}

// splitSentence splits the tok column into token field lists. Runs of tabs
// count as one separator.
func splitSentence(tok string) [][]string {
	tok = strings.TrimSuffix(tok, "\n")
	if tok == "" {
		return nil
	}
	lines := strings.Split(tok, "\n")
	tokens := make([][]string, 0, len(lines))
	for _, line := range lines {
		tokens = append(tokens, fieldSep.Split(line, -1))
	}
	return tokens
}

// joinSentence is the inverse of splitSentence.
func joinSentence(tokens [][]string) string {
	var b strings.Builder
	for _, fields := range tokens {
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// Builder creates and fills a parse database.
type Builder struct {
	*sqliteStore
}

// CreateSQLite opens path for writing, creating the schema if needed. The
// default rollback journal is kept so that the finished file can later be
// opened read-only without side files.
func CreateSQLite(ctx context.Context, path string) (*Builder, error) {
	dsn, err := fileURI(path, "")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Builder{sqliteStore: &sqliteStore{db: db}}, nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS doc (
	yno INTEGER NOT NULL,
	dno INTEGER NOT NULL,
	nme TEXT UNIQUE NOT NULL,
	PRIMARY KEY(yno, dno)
);

CREATE TABLE IF NOT EXISTS sen (
	yno INTEGER NOT NULL,
	dno INTEGER NOT NULL,
	sno INTEGER NOT NULL,
	tok TEXT NOT NULL,
	stt TEXT,
	PRIMARY KEY(yno, dno, sno)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// AddDocument stores the sentences of one document, replacing any earlier
// version stored under the same key.
func (b *Builder) AddDocument(ctx context.Context, d store.Document) error {
	if d.Key == "" {
		return fmt.Errorf("document key: %w", internalerr.ErrInvalidInput)
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var yno, dno int64
	err = tx.QueryRowContext(ctx, `SELECT yno, dno FROM doc WHERE nme = ?`, d.Key).Scan(&yno, &dno)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(dno), 0) + 1 FROM doc WHERE yno = 0`).Scan(&dno); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO doc (yno, dno, nme) VALUES (0, ?, ?)`, dno, d.Key); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM sen WHERE yno = ? AND dno = ?`, yno, dno); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sen (yno, dno, sno, tok, stt) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, sent := range d.Sentences {
		if _, err := stmt.ExecContext(ctx, yno, dno, i+1, joinSentence(sent.Tokens), sent.Status); err != nil {
			return err
		}
	}
	return tx.Commit()
}
