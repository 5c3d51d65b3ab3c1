package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thirdwave/contentapi/internal/database"
)

// Engine applies content type definitions to the database: it creates a
// table per content type and adds columns for fields that were defined
// after the table was first created. Columns are never dropped or
// retyped; destructive changes are out of scope for the API server.
type Engine struct {
	db     *database.DB
	prefix string
}

// NewEngine creates a schema engine using the given table name prefix.
func NewEngine(db *database.DB, prefix string) *Engine {
	return &Engine{
		db:     db,
		prefix: prefix,
	}
}

// TableName returns the content table name for a content type slug.
func (e *Engine) TableName(slug string) string {
	return e.prefix + slug
}

// Apply brings the database tables in line with the given content types.
// All statements run in a single transaction so a half-applied set of
// types never survives a failure.
func (e *Engine) Apply(ctx context.Context, types []ContentType) error {
	tx, err := e.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// Rollback is a no-op once the tx has been committed.
		_ = tx.Rollback(ctx)
	}()

	for _, ct := range types {
		table := e.TableName(ct.Slug)

		if _, err := tx.Exec(ctx, CreateTableSQL(table, ct)); err != nil {
			return fmt.Errorf("creating table for %q: %w", ct.Key, err)
		}

		// Existing tables: pick up fields added to the definition later.
		for _, f := range ct.Fields {
			if _, err := tx.Exec(ctx, AddColumnSQL(table, f)); err != nil {
				return fmt.Errorf("adding column %q to %q: %w", f.Name, ct.Key, err)
			}
		}

		if _, err := tx.Exec(ctx, SlugIndexSQL(table)); err != nil {
			return fmt.Errorf("indexing table for %q: %w", ct.Key, err)
		}

		slog.Debug("content table ready", "content_type", ct.Key, "table", table)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("content tables applied", "count", len(types))
	return nil
}
