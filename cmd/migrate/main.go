package main

import (
	"flag"
	"log"

	"github.com/noah-isme/dept-timetable-api/pkg/config"
	"github.com/noah-isme/dept-timetable-api/pkg/database"
)

func main() {
	flag.Usage = func() {
		log.Printf("usage: migrate [up|down|status|redo|version|up-to N|down-to N]")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(db.DB, command, args...); err != nil {
		log.Fatalf("%v", err)
	}
}
