// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It also owns the embedded schema
// migrations, applied with goose.
package postgres
