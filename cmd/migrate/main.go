package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bebel/pendencias/internal/infrastructure/database"
	"github.com/bebel/pendencias/pkg/config"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [-max n] up|down|status\n")
	flag.PrintDefaults()
}

func main() {
	limit := flag.Int("max", 0, "maximum migrations to apply or roll back (0 = all for up, 1 for down)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	switch flag.Arg(0) {
	case "up":
		if _, err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	case "down":
		n := *limit
		if n == 0 {
			n = 1
		}
		if _, err := database.Rollback(db, n); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
	case "status":
		statuses, err := database.Status(db)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.AppliedAt != nil {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%-40s %s\n", s.ID, applied)
		}
	default:
		usage()
		os.Exit(2)
	}
}
