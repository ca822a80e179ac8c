package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/FreeMEM/DPMS/internal/config"
	"github.com/FreeMEM/DPMS/internal/db"
	"github.com/FreeMEM/DPMS/internal/voting"
)

// gencodes generates a batch of attendance codes for an edition and
// prints them as CSV, for printing onto entry tickets.
func main() {
	editionID := flag.Uint("edition", 0, "edition id to generate codes for")
	quantity := flag.Int("quantity", 100, "number of codes to generate")
	prefix := flag.String("prefix", "", "code prefix, derived from the edition name when empty")
	out := flag.String("out", "", "output file, stdout when empty")
	flag.Parse()

	if *editionID == 0 {
		log.Fatal("-edition is required")
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	store := db.NewGormStore(conn)
	votes := voting.NewService(store, cfg.CodeBatchMax, cfg.VoteCommentMaxLength)

	codes, err := votes.GenerateCodes(uint(*editionID), *quantity, *prefix)
	if err != nil {
		log.Fatalf("code generation failed: %v", err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("create output file: %v", err)
		}
		defer f.Close()
		w = f
	}

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"code", "edition_id"})
	for _, c := range codes {
		_ = cw.Write([]string{c.Code, strconv.FormatUint(uint64(c.EditionID), 10)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	log.Printf("generated %d codes for edition %d", len(codes), *editionID)
}
