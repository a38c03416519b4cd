// Package store persists search history.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Search is one recorded search.
type Search struct {
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the search-history persistence interface.
type Store interface {
	RecordSearch(ctx context.Context, term string) (*Search, error)
	RecentSearches(ctx context.Context, limit int) ([]Search, error)
	ClearHistory(ctx context.Context) error

	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures the backing database.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "search_history.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
