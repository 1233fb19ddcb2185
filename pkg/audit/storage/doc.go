// Package storage provides audit storage backends.
//
// # Backends
//
//   - SQLiteStorage: persistent storage on either the pure-Go
//     modernc.org/sqlite driver ("sqlite") or the cgo mattn/go-sqlite3
//     driver ("sqlite3"), with WAL mode and a versioned schema
//   - MemoryStorage: in-memory map for tests and one-off runs
//
// Both order audits newest first by computation time, then by ID.
//
// # Usage
//
//	store, err := storage.New(&cfg.Audit, logger)
//	if err != nil {
//	    return err
//	}
//	if store != nil {
//	    defer store.Close()
//	}
package storage
