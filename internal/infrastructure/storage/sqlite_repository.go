package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const newsColumns = "title, link, thumbnail_url, source, full_text, title_ru, processed_full_text, status"

// SQLiteRepository persists news rows in the embedded news.db file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.NewsRepository = (*SQLiteRepository)(nil)

// Open prepares a SQLite handle for the given path. A single connection is
// enough: writers are serialized and no connection is held across sleeps.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLiteRepository wires a sql.DB implementation.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InitSchema creates the news table if absent and applies additive column
// migrations for stores created by earlier versions. Existing data survives.
func (r *SQLiteRepository) InitSchema(ctx context.Context) error {
	const create = `
        CREATE TABLE IF NOT EXISTS news (
            title TEXT PRIMARY KEY,
            link TEXT NOT NULL,
            thumbnail_url TEXT,
            source TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'no'
        )`

	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create news table: %w", err)
	}

	for _, column := range []string{"full_text", "title_ru", "processed_full_text"} {
		if err := r.addColumnIfMissing(ctx, column); err != nil {
			return err
		}
	}

	return nil
}

func (r *SQLiteRepository) addColumnIfMissing(ctx context.Context, column string) error {
	rows, err := r.db.QueryContext(ctx, "PRAGMA table_info(news)")
	if err != nil {
		return fmt.Errorf("inspect news table: %w", err)
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("scan column info: %w", err)
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate column info: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE news ADD COLUMN %s TEXT", column)); err != nil {
		return fmt.Errorf("add column %s: %w", column, err)
	}

	return nil
}

// InsertIfNew inserts a fresh row with status 'no'. A duplicate headline is a
// silent no-op; the return value reports whether the insert happened.
func (r *SQLiteRepository) InsertIfNew(ctx context.Context, item domain.NewsItem) (bool, error) {
	query, args, err := sq.Insert("news").
		Options("OR IGNORE").
		Columns("title", "link", "thumbnail_url", "source", "status").
		Values(item.Title, item.Link, nullable(item.ThumbnailURL), item.Source, string(domain.StatusNew)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert news %q: %w", item.Title, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert rows affected: %w", err)
	}

	return affected > 0, nil
}

// SelectUnfetched returns all rows awaiting body extraction.
func (r *SQLiteRepository) SelectUnfetched(ctx context.Context) ([]domain.NewsItem, error) {
	return r.selectByStatus(ctx, domain.StatusNew)
}

// SelectFetched returns all rows awaiting translation.
func (r *SQLiteRepository) SelectFetched(ctx context.Context) ([]domain.NewsItem, error) {
	return r.selectByStatus(ctx, domain.StatusFetched)
}

func (r *SQLiteRepository) selectByStatus(ctx context.Context, status domain.Status) ([]domain.NewsItem, error) {
	query, args, err := sq.Select(newsColumns).
		From("news").
		Where(sq.Eq{"status": string(status)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s news: %w", status, err)
	}
	defer rows.Close()

	var items []domain.NewsItem
	for rows.Next() {
		item, err := scanNewsItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news rows: %w", err)
	}

	return items, nil
}

// SelectOneProcessedRandom returns one processed row chosen uniformly at
// random, or nil when none is ready.
func (r *SQLiteRepository) SelectOneProcessedRandom(ctx context.Context) (*domain.NewsItem, error) {
	query, args, err := sq.Select(newsColumns).
		From("news").
		Where(sq.Eq{"status": string(domain.StatusProcessed)}).
		OrderBy("RANDOM()").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	item, err := scanNewsItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// SetFullText stores the extracted body and advances the row to 'fetched' in
// one statement.
func (r *SQLiteRepository) SetFullText(ctx context.Context, title, text string) error {
	return r.update(ctx, title, domain.StatusNew, map[string]interface{}{
		"full_text": text,
		"status":    string(domain.StatusFetched),
	})
}

// SetFetchFailed marks the row as permanently unextractable.
func (r *SQLiteRepository) SetFetchFailed(ctx context.Context, title string) error {
	return r.update(ctx, title, domain.StatusNew, map[string]interface{}{
		"status": string(domain.StatusFetchFailed),
	})
}

// SetProcessed stores both translated fields and advances the row to
// 'processed' atomically; a crash can never leave one field without the other.
func (r *SQLiteRepository) SetProcessed(ctx context.Context, title, titleRU, bodyRU string) error {
	return r.update(ctx, title, domain.StatusFetched, map[string]interface{}{
		"title_ru":            titleRU,
		"processed_full_text": bodyRU,
		"status":              string(domain.StatusProcessed),
	})
}

// SetPublished marks the row as delivered (or consumed by a pre-send filter).
func (r *SQLiteRepository) SetPublished(ctx context.Context, title string) error {
	return r.update(ctx, title, domain.StatusProcessed, map[string]interface{}{
		"status": string(domain.StatusPublished),
	})
}

// update runs a single-statement transition guarded by the expected current
// status, which keeps the lifecycle strictly forward even if two passes race.
func (r *SQLiteRepository) update(ctx context.Context, title string, from domain.Status, fields map[string]interface{}) error {
	query, args, err := sq.Update("news").
		SetMap(fields).
		Where(sq.Eq{"title": title, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update news %q: %w", title, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("news %q not found in state %s", title, from)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNewsItem(row rowScanner) (domain.NewsItem, error) {
	var (
		item                       domain.NewsItem
		thumbnail, fullText        sql.NullString
		titleRU, processedFullText sql.NullString
		status                     string
	)

	err := row.Scan(&item.Title, &item.Link, &thumbnail, &item.Source, &fullText, &titleRU, &processedFullText, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.NewsItem{}, err
		}
		return domain.NewsItem{}, fmt.Errorf("scan news row: %w", err)
	}

	item.ThumbnailURL = thumbnail.String
	item.FullText = fullText.String
	item.TitleRU = titleRU.String
	item.ProcessedFullText = processedFullText.String
	item.Status = domain.Status(status)
	return item, nil
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
