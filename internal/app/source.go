package app

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"scoreboard/internal/dataset"
)

// NewDataSource picks the dataset backend named by cfg.DataSource. The
// postgres backend needs an open db; the others ignore it.
func NewDataSource(cfg Config, db *sql.DB) (dataset.Source, error) {
	switch cfg.DataSource {
	case "", "fs":
		return dataset.NewFileSource(cfg.DataDir), nil
	case "http":
		if cfg.DataBaseURL == "" {
			return nil, errors.New("DATA_BASE_URL is required for the http data source")
		}
		return dataset.NewHTTPSource(cfg.DataBaseURL, &http.Client{Timeout: 10 * time.Second}), nil
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres data source needs a database connection")
		}
		return dataset.NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q", cfg.DataSource)
	}
}
