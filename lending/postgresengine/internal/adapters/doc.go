// Package adapters provide database adapter implementations for the PostgreSQL loan store.
//
// The loan store works with pgxpool.Pool, sql.DB and sqlx.DB. Each adapter presents the same
// read-only DBAdapter interface so the store builds its SQL once and runs it on any of them.
package adapters
