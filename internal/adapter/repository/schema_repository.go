package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/repositories"
)

const responsavelFKName = "fk_pendencia_responsavel"

// schemaRepository implements the SchemaRepository interface
type schemaRepository struct {
	db *gorm.DB
}

// NewSchemaRepository creates a new schema repository
func NewSchemaRepository(db *gorm.DB) repositories.SchemaRepository {
	return &schemaRepository{db: db}
}

func (r *schemaRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

func (r *schemaRepository) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	err := r.db.WithContext(ctx).Raw("SELECT NOW()").Scan(&now).Error
	return now, err
}

func (r *schemaRepository) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = ? AND table_name = ?
		)`, schema, table).Scan(&exists).Error
	return exists, err
}

// CountRows counts the rows of qualifiedTable. The name is quoted by gorm's
// Table, callers must still only pass known table names.
func (r *schemaRepository) CountRows(ctx context.Context, qualifiedTable string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(qualifiedTable).Count(&n).Error
	return n, err
}

func (r *schemaRepository) ListTables(ctx context.Context, schema string) ([]string, error) {
	var tables []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name`, schema).Scan(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *schemaRepository) EnsureResponsavelColumn(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS id_responsavel BIGINT",
		entities.Pendencia{}.TableName(),
	)).Error
}

// EnsureResponsavelForeignKey adds the FK only when pg_constraint does not
// already list it; postgres has no ADD CONSTRAINT IF NOT EXISTS.
func (r *schemaRepository) EnsureResponsavelForeignKey(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists bool
		if err := tx.Raw(
			"SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)",
			responsavelFKName,
		).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			return nil
		}
		return tx.Exec(fmt.Sprintf(
			"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (id_responsavel) REFERENCES %s (id_profissional)",
			entities.Pendencia{}.TableName(),
			responsavelFKName,
			entities.Profissional{}.TableName(),
		)).Error
	})
}
