package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/garjemarathi/community-agent/internal/config"
	"github.com/garjemarathi/community-agent/internal/database"
	"github.com/garjemarathi/community-agent/internal/services"
	"gorm.io/gorm"
)

func main() {
	var (
		force   = flag.Bool("force", false, "re-extract even if the snapshot already exists")
		useDB   = flag.Bool("db", false, "also persist extracted data to Postgres")
		formIDs = flag.String("forms", "", "comma-separated form ids to extract")
	)
	flag.Parse()

	// 1. Load Environment Variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	// 2. Skip extraction when the snapshot is already there
	if _, err := os.Stat(cfg.DataFile); err == nil && !*force {
		log.Printf("✅ Using existing data from %s (pass -force to re-extract)", cfg.DataFile)
		return
	}

	if cfg.AlmaShinesKey == "" || cfg.AlmaShinesSecret == "" {
		log.Fatal("Please set ALMASHINES_API_KEY and ALMASHINES_API_SECRET (create a .env file with your credentials)")
	}

	// 3. Optional database target
	var db *gorm.DB
	if *useDB {
		db, err = database.Connect(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
	}

	// 4. Run the extraction
	extractor := services.NewExtractService(db, cfg.AlmaShinesURL, cfg.AlmaShinesKey, cfg.AlmaShinesSecret)

	if err := extractor.ExtractAll(context.Background(), parseFormIDs(*formIDs)); err != nil {
		log.Fatal("Extraction failed:", err)
	}

	if db != nil {
		if err := extractor.Persist(); err != nil {
			log.Fatal("Failed to persist extracted data:", err)
		}
	}

	if err := extractor.SaveSnapshot(cfg.DataFile); err != nil {
		log.Fatal("Failed to save snapshot:", err)
	}
}

func parseFormIDs(raw string) []int {
	if raw == "" {
		return nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			log.Fatalf("Invalid form id %q", part)
		}
		ids = append(ids, id)
	}
	return ids
}
