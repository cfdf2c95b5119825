// Package history keeps a SQLite ledger of packaging builds.
//
// One row is written per build, successful or not. The schema is embedded
// and versioned; a database created by a different schema version is
// rejected with ErrSchemaMismatch rather than migrated. Callers treat the
// ledger as best effort: a history failure never fails a build.
package history
