// Package config provides configuration management for gradpath.
//
// Configuration is read from an optional YAML file, completed with
// defaults, overridden from the environment and validated.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("gradpath.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("gradpath.yaml")
//
// An empty path skips the file and starts from the defaults.
//
// # Environment Variable Overrides
//
// Overrides are parsed with github.com/caarlos0/env and follow the naming
// convention GRADPATH_SECTION_FIELD:
//
//   - GRADPATH_REQUIREMENTS_DIR overrides requirements.dir
//   - GRADPATH_AUDIT_SQLITE_DRIVER overrides audit.sqlite.driver
//   - GRADPATH_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	requirements:
//	  dir: "./requirements"
//	  schema_validation: true
//
//	audit:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/audits.db"
//	    driver: "sqlite"
//	  retention:
//	    days: 365
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
//	server:
//	  listen_address: "127.0.0.1:9464"
package config
