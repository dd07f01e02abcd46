package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/mfreeman451/toolwatch/pkg/api"
	"github.com/mfreeman451/toolwatch/pkg/config"
	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/ingest"
	"github.com/mfreeman451/toolwatch/pkg/lifecycle"
)

// cmd/toolwatch/main.go

var errNoListenAddr = errors.New("listen_addr is required")

type Config struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	DBPath     string `json:"db_path" yaml:"db_path"`
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errNoListenAddr
	}

	if c.DBPath == "" {
		c.DBPath = "/var/lib/toolwatch/toolwatch.db"
	}

	return nil
}

func main() {
	configPath := flag.String("config", "/etc/toolwatch/toolwatch.json", "Path to config file")
	importPath := flag.String("import", "", "Import a CSV report and exit")
	flag.Parse()

	var cfg Config
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if *importPath != "" {
		summary, err := ingest.New(store).ImportFile(*importPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}

		log.Printf("Imported %d row(s) for %s (%d skipped)",
			summary.Imported, summary.Day.Format("2006-01-02"), summary.Skipped)

		return
	}

	apiServer := api.NewAPIServer(store)

	err = lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "toolwatch",
		Handler:     apiServer.Router(),
	})
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
