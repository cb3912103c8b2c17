// Package sqlite keeps the query history in history.db under the
// configuration directory (~/.insectopedia/history.db by default).
//
// The driver is modernc.org/sqlite, so the binary builds without cgo. The
// schema comes from the embedded migrations package and each applied
// version is recorded in schema_migrations. The database runs in WAL mode
// with a busy timeout, which lets a running server and a CLI command share
// one file.
package sqlite
