// Package postgres provides PostgreSQL implementations of the store
// interfaces built on GORM over the pgx database/sql driver. It also owns
// the embedded goose migrations that create the schema the stores expect.
package postgres
