// Package database provides SQLite connectivity for Spoolbridge.
//
// The bridge keeps exactly one local table of consequence — the
// append-only activity log — so this package stays deliberately small:
//   - Single-file database with WAL mode for concurrent reads
//   - Embedded schema migrations applied at startup
//   - Health check for the startup probe in cmd/spoolbridge
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows the dashboard to read activity while the sync
//     engine appends records
//   - Busy timeout prevents lock contention errors
//   - A single writer connection matches SQLite's locking model
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations live under migrations/ at the repository root and are
// embedded into the binary by migrations/embed.go. They are
// additive-only so that a rollback of the binary never meets a schema
// it cannot read:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Never DROP or RENAME columns
//   - Each migration file has both .up.sql and .down.sql
package database
