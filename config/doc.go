// Package config loads the configuration of the lending report tooling and builds the
// infrastructure clients from it.
//
// Configuration is read from a YAML file, then overridden by LENDING_* environment variables,
// then validated. Builders turn the sections into PostgreSQL connections (pgx.Pool, sql.DB,
// sqlx.DB), Redis client options and OpenTelemetry providers.
package config
