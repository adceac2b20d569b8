package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"query-workbench-be/pkg/queryengine"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

type Config struct {
	Path           string // empty or ":memory:" for an in-memory engine
	DatasetStorage string // directory containing registered dataset files
	MaxResultRows  int
}

// Engine executes SQL cells on an embedded DuckDB instance. Registered
// datasets are exposed as views resolved per execution, so a deleted dataset
// simply stops resolving and the query fails as an execution error.
type Engine struct {
	db     *sql.DB
	config Config
}

var _ queryengine.Executor = &Engine{}

func New(cfg Config) (*Engine, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if cfg.MaxResultRows <= 0 {
		cfg.MaxResultRows = 10000
	}

	e := &Engine{db: db, config: cfg}
	if err := e.runBootQueries(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) runBootQueries() error {
	bootQueries := []string{
		"install 'json'",
		"load 'json'",
		"install 'icu'",
		"load 'icu'",
		"install 'parquet'",
		"load 'parquet'",
	}

	for _, q := range bootQueries {
		if _, err := e.db.Exec(q); err != nil {
			return fmt.Errorf("boot query %q failed: %w", q, err)
		}
	}
	return nil
}

// Execute attaches the dataset context as temporary views on a dedicated
// connection, then runs the query on that same connection.
func (e *Engine) Execute(ctx context.Context, query string, datasets []queryengine.Dataset) (*queryengine.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire engine connection: %v", err)
	}
	defer conn.Close()

	for _, ds := range datasets {
		if err := e.attachDataset(ctx, conn, ds); err != nil {
			return nil, err
		}
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %v", err)
	}
	defer rows.Close()

	return e.collectRows(rows)
}

// FetchRows reads up to limit rows of a single dataset. Used by the GraphQL
// backend to resolve row fields.
func (e *Engine) FetchRows(ctx context.Context, ds queryengine.Dataset, limit int) ([]string, [][]interface{}, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire engine connection: %v", err)
	}
	defer conn.Close()

	if err := e.attachDataset(ctx, conn, ds); err != nil {
		return nil, nil, err
	}

	rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", SanitizeName(ds.Name), limit))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset %q: %v", ds.Name, err)
	}
	defer rows.Close()

	result, err := e.collectRows(rows)
	if err != nil {
		return nil, nil, err
	}
	return result.Columns, result.Rows, nil
}

func (e *Engine) attachDataset(ctx context.Context, conn *sql.Conn, ds queryengine.Dataset) error {
	source, err := e.readerFor(ds)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE TEMPORARY VIEW %s AS SELECT * FROM %s", SanitizeName(ds.Name), source)
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to attach dataset %q: %v", ds.Name, err)
	}
	return nil
}

func (e *Engine) readerFor(ds queryengine.Dataset) (string, error) {
	path := filepath.Join(e.config.DatasetStorage, ds.FileName)
	escaped := strings.ReplaceAll(path, "'", "''")

	switch strings.ToLower(ds.Type) {
	case "csv":
		return fmt.Sprintf("read_csv_auto('%s')", escaped), nil
	case "parquet":
		return fmt.Sprintf("read_parquet('%s')", escaped), nil
	case "json", "ndjson":
		return fmt.Sprintf("read_json_auto('%s')", escaped), nil
	default:
		return "", fmt.Errorf("dataset %q has unsupported type %q", ds.Name, ds.Type)
	}
}

func (e *Engine) collectRows(rows *sql.Rows) (*queryengine.Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %v", err)
	}

	result := &queryengine.Result{
		Columns: columns,
		Rows:    make([][]interface{}, 0),
	}

	for rows.Next() {
		if len(result.Rows) >= e.config.MaxResultRows {
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %v", err)
		}

		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %v", err)
	}

	return result, nil
}

// normalizeValue converts driver-native values into JSON-friendly ones.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case []byte:
		return string(value)
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return v
	}
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeName maps a dataset name onto a safe SQL identifier.
func SanitizeName(name string) string {
	sanitized := invalidNameChars.ReplaceAllString(name, "_")
	if sanitized == "" || (sanitized[0] >= '0' && sanitized[0] <= '9') {
		sanitized = "ds_" + sanitized
	}
	return sanitized
}
