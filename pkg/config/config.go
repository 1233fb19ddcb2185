package config

import "time"

// Config is the root configuration structure for gradpath.
// It covers requirement-set loading, the evaluation engine, audit storage
// and telemetry.
type Config struct {
	// Requirements controls where requirement sets are loaded from and how
	// strictly they are checked.
	Requirements RequirementsConfig `yaml:"requirements" envPrefix:"REQUIREMENTS_"`

	// Engine contains evaluator tuning.
	Engine EngineConfig `yaml:"engine" envPrefix:"ENGINE_"`

	// Audit contains audit storage and retention configuration.
	Audit AuditConfig `yaml:"audit" envPrefix:"AUDIT_"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`

	// Server configures the operational HTTP endpoint of long-running
	// commands.
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
}

// ServerConfig configures the operational HTTP endpoint that serves
// /metrics, /healthz and /readyz while "gradpath watch" runs.
type ServerConfig struct {
	// ListenAddress is the address to listen on, e.g. "127.0.0.1:9464".
	// Default: "" (disabled)
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`

	// ReadTimeout bounds reading a request.
	// Default: 5s
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`

	// WriteTimeout bounds writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// RequirementsConfig contains requirement-set loading configuration.
type RequirementsConfig struct {
	// Dir is the directory scanned for requirement-set files.
	// Default: "./requirements"
	Dir string `yaml:"dir" env:"DIR"`

	// Extensions lists the file extensions treated as requirement sets.
	// Default: [".yaml", ".yml", ".json"]
	Extensions []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// MaxFileSize is the largest accepted file in bytes.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size" env:"MAX_FILE_SIZE"`

	// Strict rejects a set when any rule fails validation instead of
	// quarantining the offending rule as unsupported.
	// Default: false
	Strict bool `yaml:"strict" env:"STRICT"`

	// SchemaValidation checks rule documents against the wire JSON Schema.
	// Default: false
	SchemaValidation bool `yaml:"schema_validation" env:"SCHEMA_VALIDATION"`

	// Watch reloads the registry when files change.
	// Default: false
	Watch bool `yaml:"watch" env:"WATCH"`

	// DebounceDelay groups bursts of file events into one reload.
	// Default: 100ms
	DebounceDelay time.Duration `yaml:"debounce_delay" env:"DEBOUNCE_DELAY"`
}

// EngineConfig contains evaluator configuration.
type EngineConfig struct {
	// ParallelMinChildren evaluates the children of a node concurrently
	// when it has at least this many. 0 disables parallel evaluation.
	// Default: 0
	ParallelMinChildren int `yaml:"parallel_min_children" env:"PARALLEL_MIN_CHILDREN"`
}

// AuditConfig contains audit persistence configuration.
type AuditConfig struct {
	// Backend selects the audit store.
	// Options: "sqlite", "memory", "none"
	// Default: "sqlite"
	Backend string `yaml:"backend" env:"BACKEND"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite" envPrefix:"SQLITE_"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention" envPrefix:"RETENTION_"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audits.db"
	Path string `yaml:"path" env:"PATH"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (mattn/go-sqlite3, cgo), "sqlite" (modernc.org/sqlite)
	// Default: "sqlite"
	Driver string `yaml:"driver" env:"DRIVER"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode" env:"WAL_MODE"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`
}

// RetentionConfig contains audit retention configuration.
type RetentionConfig struct {
	// Days is the number of days to keep audits.
	// 0 keeps audits forever.
	// Default: 365
	Days int `yaml:"days" env:"DAYS"`

	// MaxRecords is the maximum number of audits to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records" env:"MAX_RECORDS"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule" env:"PRUNE_SCHEDULE"`

	// ArchivePath is a directory that receives a JSON export of pruned
	// audits. Empty disables archiving.
	ArchivePath string `yaml:"archive_path" env:"ARCHIVE_PATH"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Namespace is the metric name prefix.
	// Default: "gradpath"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem is the metric subsystem name.
	// Default: "" (none)
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// TextfilePath is where the registry is written in Prometheus text
	// format when the command exits. Empty disables the dump.
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`

	// EvaluationDurationBuckets defines histogram buckets for rule
	// evaluation duration (seconds).
	// Default: exponential from 10µs to ~80ms
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets" env:"EVALUATION_DURATION_BUCKETS" envSeparator:","`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler" env:"SAMPLER"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// Exporter determines the span exporter.
	// Options: "otlp", "none"
	// Default: "otlp"
	Exporter string `yaml:"exporter" env:"EXPORTER"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// ServiceName is the service name attached to spans.
	// Default: "gradpath"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}
