package repositories

import (
	"context"
	"time"
)

// SchemaRepository exposes database diagnostics and maintenance DDL
type SchemaRepository interface {
	// Ping runs a trivial query
	Ping(ctx context.Context) error

	// Now returns the database clock
	Now(ctx context.Context) (time.Time, error)

	// TableExists checks information_schema for schema.table
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// CountRows counts the rows of a fully qualified table
	CountRows(ctx context.Context, qualifiedTable string) (int64, error)

	// ListTables lists the tables of a schema ordered by name
	ListTables(ctx context.Context, schema string) ([]string, error)

	// EnsureResponsavelColumn adds id_responsavel to pendencia_sinalizada if missing
	EnsureResponsavelColumn(ctx context.Context) error

	// EnsureResponsavelForeignKey adds the assignee foreign key if missing
	EnsureResponsavelForeignKey(ctx context.Context) error
}
