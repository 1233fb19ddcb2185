package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/div0rce/gradpath/pkg/audit"
)

const backendSQLite = "sqlite"

const (
	// DriverModernc is the pure-Go driver from modernc.org/sqlite.
	DriverModernc = "sqlite"

	// DriverMattn is the cgo driver from github.com/mattn/go-sqlite3.
	DriverMattn = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver, DriverModernc or DriverMattn.
	// Default: DriverModernc
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audits.db",
		Driver:       DriverModernc,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// dsn builds the connection string. The two drivers spell their pragmas
// differently, and busy_timeout must reach every pooled connection.
func (c *SQLiteConfig) dsn() (string, error) {
	ms := c.BusyTimeout.Milliseconds()
	switch c.Driver {
	case DriverModernc, "":
		dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", c.Path, ms)
		if c.WALMode {
			dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		}
		return dsn, nil
	case DriverMattn:
		dsn := fmt.Sprintf("%s?_busy_timeout=%d", c.Path, ms)
		if c.WALMode {
			dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", c.Driver)
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and initializes its schema.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit.storage.sqlite")

	dsn, err := config.dsn()
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "open", err)
	}
	driver := config.Driver
	if driver == "" {
		driver = DriverModernc
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize creates the schema and checks its version.
func (s *SQLiteStorage) initialize() error {
	if err := s.db.Ping(); err != nil {
		return audit.NewStorageError(backendSQLite, "ping", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(backendSQLite, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UTC().UnixNano()); err != nil {
		return audit.NewStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return audit.NewStorageError(backendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store persists an audit. An existing audit with the same ID is replaced.
func (s *SQLiteStorage) Store(ctx context.Context, a *audit.Audit) error {
	if err := s.checkOpen("store"); err != nil {
		return err
	}

	summary, err := json.Marshal(a.Summary)
	if err != nil {
		return audit.NewStorageError(backendSQLite, "store", err)
	}
	requirements, err := json.Marshal(a.Requirements)
	if err != nil {
		return audit.NewStorageError(backendSQLite, "store", err)
	}

	var readiness any
	ready := false
	if a.Readiness != nil {
		data, err := json.Marshal(a.Readiness)
		if err != nil {
			return audit.NewStorageError(backendSQLite, "store", err)
		}
		readiness = string(data)
		ready = a.Readiness.OK
	}

	_, err = s.db.ExecContext(ctx, insertAudit,
		a.ID, a.PlanID, a.RequirementSetID, a.ProgramVersion, a.ComputedAt.UTC().UnixNano(),
		ready, a.HasUnsupportedRules, string(summary), string(requirements), readiness,
	)
	if err != nil {
		return audit.NewStorageError(backendSQLite, "store", err)
	}

	s.logger.Debug("audit stored", "audit_id", a.ID, "plan_id", a.PlanID)
	return nil
}

// Get returns the audit with the given ID.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*audit.Audit, error) {
	if err := s.checkOpen("get"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM audits WHERE id = ?", id)
	a, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, audit.ErrNotFound
	}
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "get", err)
	}
	return a, nil
}

// Latest returns the newest audit of a plan.
func (s *SQLiteStorage) Latest(ctx context.Context, planID string) (*audit.Audit, error) {
	if err := s.checkOpen("latest"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM audits WHERE plan_id = ? ORDER BY computed_at DESC, id DESC LIMIT 1", planID)
	a, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, audit.ErrNotFound
	}
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "latest", err)
	}
	return a, nil
}

// List returns audits matching the query, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Audit, error) {
	if query == nil {
		query = &audit.Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOpen("list"); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(query)
	sqlQuery := "SELECT " + selectColumns + " FROM audits"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY computed_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, query.EffectiveLimit(), query.Offset)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "list", err)
	}
	defer rows.Close()

	audits := []*audit.Audit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, audit.NewStorageError(backendSQLite, "scan", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(backendSQLite, "list", err)
	}
	return audits, nil
}

// Count returns the number of audits matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}
	if err := s.checkOpen("count"); err != nil {
		return 0, err
	}

	where, args := buildWhereClause(query)
	sqlQuery := "SELECT COUNT(*) FROM audits"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError(backendSQLite, "count", err)
	}
	return count, nil
}

// DeleteBefore removes audits computed before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.checkOpen("delete"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM audits WHERE computed_at < ?", cutoff.UTC().UnixNano())
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete", err)
	}
	return count, nil
}

// DeleteOldest removes all but the newest keep audits.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		return 0, audit.NewStorageError(backendSQLite, "delete_oldest", fmt.Errorf("keep must be >= 0, got %d", keep))
	}
	if err := s.checkOpen("delete_oldest"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, deleteOldest, keep)
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_oldest", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_oldest", err)
	}
	return count, nil
}

// Close closes the database. Further calls fail.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return audit.NewStorageError(backendSQLite, "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

func (s *SQLiteStorage) checkOpen(operation string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return audit.NewStorageError(backendSQLite, operation, errClosed)
	}
	return nil
}

// buildWhereClause returns the conditions (without "WHERE") and arguments
// for the query filters.
func buildWhereClause(query *audit.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.PlanID != "" {
		conditions = append(conditions, "plan_id = ?")
		args = append(args, query.PlanID)
	}
	if query.RequirementSetID != "" {
		conditions = append(conditions, "requirement_set_id = ?")
		args = append(args, query.RequirementSetID)
	}
	if query.Since != nil {
		conditions = append(conditions, "computed_at >= ?")
		args = append(args, query.Since.UTC().UnixNano())
	}
	if query.Until != nil {
		conditions = append(conditions, "computed_at < ?")
		args = append(args, query.Until.UTC().UnixNano())
	}

	return strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*audit.Audit, error) {
	var (
		a            audit.Audit
		computedAt   int64
		summary      string
		requirements string
		readiness    sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.PlanID, &a.RequirementSetID, &a.ProgramVersion, &computedAt,
		&a.HasUnsupportedRules, &summary, &requirements, &readiness,
	)
	if err != nil {
		return nil, err
	}

	a.ComputedAt = time.Unix(0, computedAt).UTC()
	if err := json.Unmarshal([]byte(summary), &a.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if err := json.Unmarshal([]byte(requirements), &a.Requirements); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}
	if readiness.Valid {
		a.Readiness = &audit.ReadyCheck{}
		if err := json.Unmarshal([]byte(readiness.String), a.Readiness); err != nil {
			return nil, fmt.Errorf("decode readiness: %w", err)
		}
	}
	return &a, nil
}
