package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"newsdigest/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "news.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return repo
}

func sampleItem(title string) domain.NewsItem {
	return domain.NewsItem{
		Title:  title,
		Link:   "https://www.wired.com/story/" + title,
		Source: "WIRED Science",
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	for i := 0; i < 3; i++ {
		if err := repo.InitSchema(context.Background()); err != nil {
			t.Fatalf("init schema run %d: %v", i, err)
		}
	}
}

func TestInitSchemaMigratesLegacyTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE news (
		title TEXT PRIMARY KEY,
		link TEXT NOT NULL,
		thumbnail_url TEXT,
		source TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'no'
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO news (title, link, source) VALUES ('old', 'https://example.com', 'CNET')`); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	repo := NewSQLiteRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	rows, err := repo.SelectUnfetched(context.Background())
	if err != nil {
		t.Fatalf("select after migration: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "old" {
		t.Fatalf("legacy row lost during migration: %+v", rows)
	}
	if rows[0].FullText != "" {
		t.Fatalf("expected empty full_text for migrated row, got %q", rows[0].FullText)
	}
}

func TestInsertIfNewDeduplicatesByTitle(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	inserted, err := repo.InsertIfNew(ctx, sampleItem("dup"))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to report true")
	}

	inserted, err = repo.InsertIfNew(ctx, sampleItem("dup"))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate insert to report false")
	}

	rows, err := repo.SelectUnfetched(ctx)
	if err != nil {
		t.Fatalf("select unfetched: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after duplicate insert, got %d", len(rows))
	}
	if rows[0].Status != domain.StatusNew {
		t.Fatalf("expected status no, got %s", rows[0].Status)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertIfNew(ctx, sampleItem("story")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.SetFullText(ctx, "story", "the body"); err != nil {
		t.Fatalf("set full text: %v", err)
	}

	fetched, err := repo.SelectFetched(ctx)
	if err != nil {
		t.Fatalf("select fetched: %v", err)
	}
	if len(fetched) != 1 || fetched[0].FullText != "the body" {
		t.Fatalf("unexpected fetched rows: %+v", fetched)
	}

	if err := repo.SetProcessed(ctx, "story", "история", "тело"); err != nil {
		t.Fatalf("set processed: %v", err)
	}

	item, err := repo.SelectOneProcessedRandom(ctx)
	if err != nil {
		t.Fatalf("select processed: %v", err)
	}
	if item == nil || item.TitleRU != "история" || item.ProcessedFullText != "тело" {
		t.Fatalf("unexpected processed row: %+v", item)
	}

	if err := repo.SetPublished(ctx, "story"); err != nil {
		t.Fatalf("set published: %v", err)
	}

	item, err = repo.SelectOneProcessedRandom(ctx)
	if err != nil {
		t.Fatalf("select after publish: %v", err)
	}
	if item != nil {
		t.Fatalf("expected no processed rows after publish, got %+v", item)
	}
}

func TestTransitionsNeverMoveBackwards(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertIfNew(ctx, sampleItem("guarded")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.SetFullText(ctx, "guarded", "body"); err != nil {
		t.Fatalf("set full text: %v", err)
	}

	// The row is 'fetched' now; a stale extraction result must not rewind it.
	if err := repo.SetFullText(ctx, "guarded", "other body"); err == nil {
		t.Fatal("expected error writing full text to a fetched row")
	}
	if err := repo.SetFetchFailed(ctx, "guarded"); err == nil {
		t.Fatal("expected error failing a fetched row")
	}
	if err := repo.SetPublished(ctx, "guarded"); err == nil {
		t.Fatal("expected error publishing a fetched row")
	}

	fetched, err := repo.SelectFetched(ctx)
	if err != nil {
		t.Fatalf("select fetched: %v", err)
	}
	if len(fetched) != 1 || fetched[0].FullText != "body" {
		t.Fatalf("row mutated by rejected transitions: %+v", fetched)
	}
}

func TestSetFetchFailed(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertIfNew(ctx, sampleItem("broken")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.SetFetchFailed(ctx, "broken"); err != nil {
		t.Fatalf("set fetch failed: %v", err)
	}

	rows, err := repo.SelectUnfetched(ctx)
	if err != nil {
		t.Fatalf("select unfetched: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("failed row still listed as unfetched: %+v", rows)
	}
}

func TestSelectOneProcessedRandomEmpty(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	item, err := repo.SelectOneProcessedRandom(context.Background())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil on empty store, got %+v", item)
	}
}
