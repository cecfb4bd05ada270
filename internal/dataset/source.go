package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrInvalidName     = errors.New("invalid dataset name")
)

// Source loads a named JSON document such as "scores.json". Every call reads
// fresh data; nothing is cached between calls.
type Source interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// LoadRecords loads a dataset and coerces it into records.
func LoadRecords(ctx context.Context, src Source, name string) ([]Record, error) {
	raw, err := src.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return Coerce(raw), nil
}

type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	if strings.TrimSpace(dir) == "" {
		dir = "./data"
	}
	return &FileSource{dir: dir}
}

func (s *FileSource) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.dir, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", clean, ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}
	return b, nil
}

// HTTPSource fetches datasets from a static file host.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPSource) Load(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	target := s.baseURL + "/" + url.PathEscape(clean)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", clean, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", clean, ErrDatasetNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s load failed (%d)", clean, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}
	return b, nil
}

// PostgresSource reads datasets stored as JSON documents in the datasets
// table: datasets(name text primary key, payload jsonb, updated_at timestamptz).
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Load(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT payload::text
		FROM datasets
		WHERE name = $1
	`, clean).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", clean, ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("query dataset %s: %w", clean, err)
	}
	return payload, nil
}

// Put stores or replaces a dataset document.
func (s *PostgresSource) Put(ctx context.Context, name string, payload []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO datasets (name, payload, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, clean, string(payload))
	if err != nil {
		return fmt.Errorf("upsert dataset %s: %w", clean, err)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return name, nil
}
