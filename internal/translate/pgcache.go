package translate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PGCache keeps translations in the Postgres translations table so they
// survive restarts.
type PGCache struct {
	db *sqlx.DB
}

// NewPGCache wraps an open database handle.
func NewPGCache(db *sqlx.DB) *PGCache {
	return &PGCache{db: db}
}

const (
	pgGetQuery = `UPDATE translations SET last_used_at = now()
WHERE source_hash = $1 AND target_lang = $2
RETURNING translated`

	pgPutQuery = `INSERT INTO translations (source_hash, target_lang, source_text, translated)
VALUES (:source_hash, :target_lang, :source_text, :translated)
ON CONFLICT (source_hash, target_lang)
DO UPDATE SET translated = EXCLUDED.translated, last_used_at = now()`

	pgPruneQuery = `DELETE FROM translations WHERE last_used_at < $1`
)

type translationRow struct {
	SourceHash string `db:"source_hash"`
	TargetLang string `db:"target_lang"`
	SourceText string `db:"source_text"`
	Translated string `db:"translated"`
}

// Get returns the stored translation and refreshes its last use time.
func (c *PGCache) Get(ctx context.Context, text, lang string) (string, bool, error) {
	var out string
	err := c.db.GetContext(ctx, &out, pgGetQuery, sourceHash(text), lang)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("translate: cache get: %w", err)
	}
	return out, true, nil
}

// Put upserts a translation.
func (c *PGCache) Put(ctx context.Context, text, lang, translated string) error {
	_, err := c.db.NamedExecContext(ctx, pgPutQuery, translationRow{
		SourceHash: sourceHash(text),
		TargetLang: lang,
		SourceText: text,
		Translated: translated,
	})
	if err != nil {
		return fmt.Errorf("translate: cache put: %w", err)
	}
	return nil
}

// Prune deletes entries unused for longer than maxAge and reports how many
// rows were removed.
func (c *PGCache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := c.db.ExecContext(ctx, pgPruneQuery, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("translate: cache prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
