package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/noah-isme/dept-timetable-api/internal/repository"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
	"github.com/noah-isme/dept-timetable-api/pkg/config"
	"github.com/noah-isme/dept-timetable-api/pkg/database"
)

type report struct {
	Timetables int                 `json:"timetables"`
	Critical   int                 `json:"critical"`
	Warnings   int                 `json:"warnings"`
	Findings   []scheduler.Finding `json:"findings"`
}

func main() {
	var (
		format  string
		timeout time.Duration
		strict  bool
	)

	flag.StringVar(&format, "format", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Database timeout")
	flag.BoolVar(&strict, "strict", false, "Exit non-zero on warnings as well")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	all, err := repository.NewTimetableRepository(db).ListAll(ctx, nil)
	if err != nil {
		log.Fatalf("failed to load timetables: %v", err)
	}

	rep := buildReport(len(all), scheduler.Audit(all))
	if err := writeReport(os.Stdout, rep, format); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	if rep.Critical > 0 || (strict && rep.Warnings > 0) {
		os.Exit(1)
	}
}

func buildReport(timetables int, findings []scheduler.Finding) report {
	rep := report{Timetables: timetables, Findings: findings}
	if rep.Findings == nil {
		rep.Findings = []scheduler.Finding{}
	}
	for _, f := range findings {
		if f.Critical {
			rep.Critical++
		} else {
			rep.Warnings++
		}
	}
	return rep
}

func writeReport(w io.Writer, rep report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "text":
		for _, f := range rep.Findings {
			level := "WARN"
			if f.Critical {
				level = "FAIL"
			}
			if _, err := fmt.Fprintf(w, "[%s] %s %s (%s)\n  %s\n", level, f.Kind, f.Class, f.TimetableID, f.Detail); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "Timetables: %d, Critical: %d, Warnings: %d\n", rep.Timetables, rep.Critical, rep.Warnings)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
