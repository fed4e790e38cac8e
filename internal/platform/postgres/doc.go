// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store accepts a store.DBTX, so the same implementation
// works against a connection pool or inside a caller-managed transaction.
//
// All implementations translate driver-level errors into the sentinel errors
// defined in the store package, so callers never depend on pgx or
// database/sql error types.
package postgres
