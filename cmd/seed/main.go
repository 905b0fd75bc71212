package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/infrastructure/database"
	"github.com/bebel/pendencias/internal/infrastructure/fixtures"
	"github.com/bebel/pendencias/pkg/config"
)

// serial columns moved past the explicit ids inserted below
var sequences = []struct{ table, column string }{
	{entities.Pessoa{}.TableName(), "id_pessoa"},
	{entities.Conversa{}.TableName(), "id_conversa"},
	{entities.Profissional{}.TableName(), "id_profissional"},
	{entities.Pendencia{}.TableName(), "id_pendencia_sinalizada"},
}

func main() {
	reset := flag.Bool("reset", false, "delete existing pendências before seeding")
	flag.Parse()

	log.Println("🚀 Seeding sample data...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if _, err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d := fixtures.Sample()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if *reset {
			log.Println("🗑️  Removing existing pendências...")
			if err := tx.Exec("DELETE FROM " + entities.Pendencia{}.TableName()).Error; err != nil {
				return fmt.Errorf("reset pendencias: %w", err)
			}
		}
		return seed(tx, d)
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Seeded %d pessoas, %d conversas, %d profissionais, %d pendências",
		len(d.Pessoas), len(d.Conversas), len(d.Profissionais), len(d.Registros))
}

// seed inserts the dataset keeping existing rows with the same ids
func seed(tx *gorm.DB, d *fixtures.Dataset) error {
	keep := clause.OnConflict{DoNothing: true}
	if err := tx.Clauses(keep).Create(&d.Pessoas).Error; err != nil {
		return fmt.Errorf("insert pessoas: %w", err)
	}
	if err := tx.Clauses(keep).Create(&d.Conversas).Error; err != nil {
		return fmt.Errorf("insert conversas: %w", err)
	}
	if err := tx.Clauses(keep).Create(&d.Profissionais).Error; err != nil {
		return fmt.Errorf("insert profissionais: %w", err)
	}
	if err := tx.Clauses(keep).Create(&d.Registros).Error; err != nil {
		return fmt.Errorf("insert pendencias: %w", err)
	}

	for _, s := range sequences {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 1))",
			s.table, s.column, s.column, s.table,
		)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("advance sequence %s: %w", s.table, err)
		}
	}
	return nil
}
